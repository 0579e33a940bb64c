// Package app wires configuration, storage and services into the runnable server
// and hosts the command-line entry points.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/ibp/config"
	"github.com/d60-Lab/ibp/internal/api"
	"github.com/d60-Lab/ibp/internal/api/handler"
	"github.com/d60-Lab/ibp/internal/model"
	"github.com/d60-Lab/ibp/internal/provider"
	"github.com/d60-Lab/ibp/internal/repository"
	"github.com/d60-Lab/ibp/internal/service"
	"github.com/d60-Lab/ibp/internal/session"
	"github.com/d60-Lab/ibp/internal/view"
	"github.com/d60-Lab/ibp/internal/warnings"
	"github.com/d60-Lab/ibp/pkg/logger"
)

// Container 显式构造的依赖集合
type Container struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client // nil when redis.addr is empty
	Engine *gin.Engine
	Units  service.UnitService

	stopAlerts func(context.Context) error
}

// Build constructs every repository, service and the HTTP engine. It owns the
// redis client it opens; the caller owns db.
func Build(ctx context.Context, cfg *config.Config, db *gorm.DB) (*Container, error) {
	c := &Container{Config: cfg, DB: db}
	if cfg.Redis.Addr != "" {
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			_ = c.Redis.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
	}

	views, err := view.New()
	if err != nil {
		return nil, err
	}

	inmateRepo := repository.NewInmateRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	th := warnings.FromConfig(cfg.Warnings)

	inmates := service.NewInmateService(inmateRepo, unitRepo, c.providers())
	auth := service.NewAuthService(cfg, repository.NewUserRepository(db))
	c.Units = service.NewUnitService(unitRepo)

	var notifier service.AlertNotifier
	store := session.Store(session.NewMemoryStore())
	if c.Redis != nil {
		async := service.NewAsyncNotifier(service.NewRedisNotifier(c.Redis, cfg.Redis.AlertChannel), 0)
		c.stopAlerts = async.Start(2)
		notifier = async
		store = session.NewRedisStore(c.Redis)
	}

	h := handler.New(handler.Deps{
		Inmates:         inmates,
		Requests:        service.NewRequestService(requestRepo, inmateRepo, th),
		Comments:        service.NewCommentService(repository.NewCommentRepository(db), inmateRepo),
		Alerts:          service.NewAlertService(repository.NewAlertRepository(db), inmateRepo, notifier),
		Units:           c.Units,
		Shipping:        service.NewShippingService(requestRepo, repository.NewShipmentRepository(db), inmates),
		Auth:            auth,
		Metrics:         service.NewMetricsService(repository.NewMetricsRepository(db), cfg.MetricsCutoff()),
		Views:           views,
		Thresholds:      th,
		ReturnAddress:   cfg.Address,
		UnitAddressName: cfg.Shipping.UnitAddressName,
	})

	c.Engine = api.NewServer(api.Deps{
		Config:   cfg,
		DB:       db,
		Handler:  h,
		Views:    views,
		Sessions: session.NewManager(store, cfg.Session),
		Users:    auth,
	})
	return c, nil
}

// providers builds one HTTP provider per configured jurisdiction, cached in
// redis when it is available.
func (c *Container) providers() provider.Set {
	cfg := c.Config.Provider
	urls := []struct{ jurisdiction, url string }{
		{model.JurisdictionTexas, cfg.TexasURL},
		{model.JurisdictionFederal, cfg.FederalURL},
	}

	var set provider.Set
	for _, u := range urls {
		if u.url == "" {
			logger.Warn("provider not configured", zap.String("jurisdiction", u.jurisdiction))
			continue
		}
		var p provider.Provider = provider.NewHTTPProvider(u.jurisdiction, u.url, cfg.Timeout)
		if c.Redis != nil && c.Config.Redis.ProviderCacheTTL > 0 {
			p = provider.NewCachedProvider(p, c.Redis, c.Config.Redis.ProviderCacheTTL)
		}
		set = append(set, p)
	}
	return set
}

// Close releases what Build opened, delivering queued alerts first.
func (c *Container) Close() error {
	if c.stopAlerts != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.stopAlerts(ctx); err != nil {
			logger.Warn("alert queue stop", zap.Error(err))
		}
	}
	if c.Redis != nil {
		return c.Redis.Close()
	}
	return nil
}
