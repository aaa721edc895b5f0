package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/notebook-backend/internal/http"
	httpH "github.com/yungbote/notebook-backend/internal/http/handlers"
	httpMW "github.com/yungbote/notebook-backend/internal/http/middleware"
	"github.com/yungbote/notebook-backend/internal/observability"
	"github.com/yungbote/notebook-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health      *httpH.HealthHandler
	Notebook    *httpH.NotebookHandler
	Page        *httpH.PageHandler
	PageVersion *httpH.PageVersionHandler
}

func wireHandlers(log *logger.Logger, services Services, db httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(db),
		Notebook:    httpH.NewNotebookHandler(services.Notebook, services.Page),
		Page:        httpH.NewPageHandler(services.Page),
		PageVersion: httpH.NewPageVersionHandler(services.Page),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:                log,
		Metrics:            metrics,
		ServiceName:        cfg.OtelServiceName,
		CORSOrigins:        cfg.CORSAllowedOrigins,
		AuthMiddleware:     middleware.Auth,
		HealthHandler:      handlers.Health,
		NotebookHandler:    handlers.Notebook,
		PageHandler:        handlers.Page,
		PageVersionHandler: handlers.PageVersion,
	})
}
