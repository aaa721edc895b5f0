package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/notebook-backend/internal/http/handlers"
	httpMW "github.com/yungbote/notebook-backend/internal/http/middleware"
	"github.com/yungbote/notebook-backend/internal/observability"
	"github.com/yungbote/notebook-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	CORSOrigins    []string
	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler      *httpH.HealthHandler
	NotebookHandler    *httpH.NotebookHandler
	PageHandler        *httpH.PageHandler
	PageVersionHandler *httpH.PageVersionHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		// Notebooks
		if cfg.NotebookHandler != nil {
			api.POST("/notebooks", cfg.NotebookHandler.Create)
			api.GET("/notebooks", cfg.NotebookHandler.List)
			api.GET("/notebooks/:id", cfg.NotebookHandler.Get)
			api.PATCH("/notebooks/:id", cfg.NotebookHandler.Update)
			api.DELETE("/notebooks/:id", cfg.NotebookHandler.Delete)
			api.GET("/notebooks/:id/pages", cfg.NotebookHandler.ListPages)
			api.GET("/notebooks/:id/tree", cfg.NotebookHandler.Tree)
		}

		// Pages
		if cfg.PageHandler != nil {
			api.POST("/notebooks/:id/pages", cfg.PageHandler.Create)
			api.GET("/pages/:id", cfg.PageHandler.Get)
			api.PATCH("/pages/:id", cfg.PageHandler.Update)
			api.DELETE("/pages/:id", cfg.PageHandler.Delete)
			api.POST("/pages/:id/move", cfg.PageHandler.Move)
			api.POST("/pages/:id/move/plan", cfg.PageHandler.PlanMove)
		}

		// Versions
		if cfg.PageVersionHandler != nil {
			api.GET("/pages/:id/versions", cfg.PageVersionHandler.List)
			api.POST("/pages/:id/versions/prune", cfg.PageVersionHandler.Prune)
			api.GET("/pages/:id/versions/:versionId", cfg.PageVersionHandler.Get)
			api.POST("/pages/:id/versions/:versionId/restore", cfg.PageVersionHandler.Restore)
			api.GET("/pages/:id/diff", cfg.PageVersionHandler.Diff)
		}
	}

	return r
}
