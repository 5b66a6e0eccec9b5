package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arnavshah/storeplan-api/pkg/tools"
)

func (a *app) service() *tools.Service {
	return tools.NewService(tools.WithLogger(a.log))
}

// save writes the artifact into dir and prints a summary line
func save(cmd *cobra.Command, art *tools.Artifact, dir string) error {
	path, err := art.Save(dir)
	if err != nil {
		return fmt.Errorf("saving %s: %w", art.FileName, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: wrote %s (%d rows, run %s)\n", art.Tool, path, art.Stats.RowsOut, art.RunID)
	if art.Stats.Fairness != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "fairness score: %.1f\n", *art.Stats.Fairness)
	}
	if art.Tool == tools.ToolLookup {
		fmt.Fprintf(cmd.OutOrStdout(), "matched: %d, unmatched: %d\n", art.Stats.Matched, art.Stats.Unmatched)
	}
	return nil
}

func newConcatCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "concat FILE...",
		Short: "Merge CSV, XLS, XLSX and PDF files into one workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]tools.Source, len(args))
			for i, p := range args {
				files[i] = tools.FileSource(p)
			}
			art, err := a.service().Concatenate(cmd.Context(), files)
			if err != nil {
				return err
			}
			return save(cmd, art, out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", ".", "output directory")
	return cmd
}

func newPJPCmd(a *app) *cobra.Command {
	var out, month string
	cmd := &cobra.Command{
		Use:   "pjp FILE",
		Short: "Generate the monthly route plan",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			art, err := a.service().GeneratePJP(cmd.Context(), fileArg(args), month)
			if err != nil {
				return err
			}
			return save(cmd, art, out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", ".", "output directory")
	cmd.Flags().StringVarP(&month, "month", "m", "", "month as YYYY-MM")
	return cmd
}

func newFloaterCmd(a *app) *cobra.Command {
	var out, month string
	cmd := &cobra.Command{
		Use:   "floater FILE",
		Short: "Generate both floater schedules",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			art, err := a.service().GenerateFloaters(cmd.Context(), fileArg(args), month)
			if err != nil {
				return err
			}
			return save(cmd, art, out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", ".", "output directory")
	cmd.Flags().StringVarP(&month, "month", "m", "", "month as YYYY-MM")
	return cmd
}

func newLookupCmd(a *app) *cobra.Command {
	var out, catalogue, soh string
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Match an SOH file against a catalogue by description",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			art, err := a.service().Lookup(cmd.Context(), pathSource(catalogue), pathSource(soh))
			if err != nil {
				return err
			}
			return save(cmd, art, out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", ".", "output directory")
	cmd.Flags().StringVar(&catalogue, "catalogue", "", "catalogue file")
	cmd.Flags().StringVar(&soh, "soh", "", "stock-on-hand file")
	return cmd
}

// fileArg leaves the source empty when no file was given so the tool
// reports the missing input itself
func fileArg(args []string) tools.Source {
	if len(args) == 0 {
		return tools.Source{}
	}
	return tools.FileSource(args[0])
}

func pathSource(path string) tools.Source {
	if path == "" {
		return tools.Source{}
	}
	return tools.FileSource(path)
}
