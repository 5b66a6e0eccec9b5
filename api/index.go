package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/storeplan-api/pkg/config"
	"github.com/arnavshah/storeplan-api/pkg/logger"
	"github.com/arnavshah/storeplan-api/pkg/server"
)

var (
	r       *gin.Engine
	initErr error
)

func init() {
	// .env is only present with vercel dev
	config.LoadDotEnv()

	cfg, err := config.Load("")
	if err != nil {
		initErr = err
		return
	}
	cfg.Server.Mode = gin.ReleaseMode

	r, initErr = server.Build(cfg)
	if initErr != nil {
		logger.New("vercel").Errorf("startup failed: %v", initErr)
	}
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	if initErr != nil {
		http.Error(w, `{"status":"error","message":"service unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	r.ServeHTTP(w, req)
}
