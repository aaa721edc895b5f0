package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/notebook-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/notebook-backend/internal/domain/aggregates"
	"github.com/yungbote/notebook-backend/internal/observability"
	"github.com/yungbote/notebook-backend/internal/platform/logger"
	"github.com/yungbote/notebook-backend/internal/realtime/bus"
	"github.com/yungbote/notebook-backend/internal/services"
)

type Services struct {
	PageAggregate domainagg.PageAggregate

	Auth     services.AuthService
	Notebook services.NotebookService
	Page     services.PageService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, events bus.Bus, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	pageAgg := aggregates.NewPageAggregate(aggregates.PageAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:    db,
			Log:   log,
			Hooks: aggregates.NewObservabilityHooks(metrics),
		},
		Notebooks: repos.Notebook,
		Pages:     repos.Page,
		Versions:  repos.PageVersion,
	})
	return Services{
		PageAggregate: pageAgg,
		Auth:          services.NewAuthService(log, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Notebook:      services.NewNotebookService(log, repos.Notebook, pageAgg),
		Page: services.NewPageService(
			log,
			repos.Notebook,
			repos.Page,
			repos.PageVersion,
			pageAgg,
			events,
			metrics,
			cfg.VersionRetentionKeepLatest,
		),
	}
}
