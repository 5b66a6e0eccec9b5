package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arnavshah/storeplan-api/pkg/auth"
)

func newKeygenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keygen USER",
		Short: "Print an HMAC API key for a user ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Auth.APIMasterSecret == "" {
				return errors.New("API_MASTER_SECRET is not configured")
			}
			key := auth.New(a.cfg.Auth, a.log).GenerateHMACKey(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Generated Key for %s:\n%s\n", args[0], key)
			return nil
		},
	}
}
