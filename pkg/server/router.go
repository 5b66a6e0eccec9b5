package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/storeplan-api/pkg/auth"
	"github.com/arnavshah/storeplan-api/pkg/config"
	"github.com/arnavshah/storeplan-api/pkg/database"
	"github.com/arnavshah/storeplan-api/pkg/handlers"
	"github.com/arnavshah/storeplan-api/pkg/logger"
	"github.com/arnavshah/storeplan-api/pkg/metrics"
	"github.com/arnavshah/storeplan-api/pkg/tools"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Build wires the database, auth, metrics and tool service into a router
func Build(cfg *config.Config) (*gin.Engine, error) {
	gin.SetMode(cfg.Server.Mode)
	logger.SetLevel(cfg.Logging.Level)
	log := logger.New("server")

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	a := auth.New(cfg.Auth, log)
	if err := a.EnsureAdminExists(db); err != nil {
		return nil, fmt.Errorf("creating admin user: %w", err)
	}

	m := metrics.NewPrometheus()
	svc := tools.NewService(
		tools.WithLogger(logger.New("tools")),
		tools.WithMetrics(m),
	)

	h := &handlers.Handler{DB: db, Tools: svc, Auth: a, Config: cfg, Log: log}
	return NewRouter(h, m), nil
}

// NewRouter registers every route. m may be nil to skip /metrics.
func NewRouter(h *handlers.Handler, m *metrics.Prometheus) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(h.Log), gin.Recovery())
	r.MaxMultipartMemory = int64(h.Config.Server.MaxUploadMB) << 20

	r.StaticFS("/static", h.GetStaticFS())
	r.GET("/", h.Index)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Store Planning Tools API",
			"version": Version,
		})
	})
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	r.POST("/admin/login", h.Login)
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	api := r.Group("/api")
	api.GET("/usage", h.APIKeyMiddleware(), h.GetMyUsage)

	toolRoutes := api.Group("/tools")
	toolRoutes.Use(LimitBody(int64(h.Config.Server.MaxUploadMB)<<20), h.ToolKeyMiddleware())
	{
		toolRoutes.POST("/concat", h.Concat)
		toolRoutes.POST("/pjp", h.PJP)
		toolRoutes.POST("/floater", h.Floater)
		toolRoutes.POST("/lookup", h.Lookup)
		toolRoutes.POST("/validate", h.ValidateInput)
	}

	return r
}

// RequestLogger logs one line per request through the service logger
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		line := "%s %s %d %s"
		args := []any{c.Request.Method, c.Request.URL.Path, status, time.Since(start)}
		switch {
		case status >= http.StatusInternalServerError:
			log.Errorf(line, args...)
		case status >= http.StatusBadRequest:
			log.Warnf(line, args...)
		default:
			log.Infof(line, args...)
		}
	}
}

// LimitBody caps request bodies at n bytes
func LimitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

// Run serves handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, log logger.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("server starting on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Infof("shutting down")
	return srv.Shutdown(shutdownCtx)
}
