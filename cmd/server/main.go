package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/robfig/cron/v3"

	"github.com/finexus/tradedesk/internal/auth"
	"github.com/finexus/tradedesk/internal/config"
	httpapi "github.com/finexus/tradedesk/internal/http"
	"github.com/finexus/tradedesk/internal/ledger"
	"github.com/finexus/tradedesk/internal/logger"
	"github.com/finexus/tradedesk/internal/pricing"
	"github.com/finexus/tradedesk/internal/repository"
	"github.com/finexus/tradedesk/internal/repository/memory"
	"github.com/finexus/tradedesk/internal/repository/postgres"
	"github.com/finexus/tradedesk/internal/service"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Environment)
	ctx := context.Background()

	var store repository.Store
	if cfg.UseInMemoryStore {
		log.Warn("DATABASE_URL not set, using in-memory store. Data will reset on restart.")
		store = memory.New()
	} else {
		db, err := sql.Open("postgres", cfg.DBURL)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to postgres")
		}
		if err := db.Ping(); err != nil {
			log.WithError(err).Fatal("postgres ping failed")
		}
		defer db.Close()
		pg := postgres.New(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.WithError(err).Fatal("schema setup failed")
		}
		store = pg
		log.Info("connected to postgres")
	}

	taxCfg := ledger.TaxConfig{
		TermThresholdDays: cfg.TermThresholdDays,
		ShortTermRate:     cfg.ShortTermRate,
		LongTermRate:      cfg.LongTermRate,
	}

	quotes := pricing.NewSimulator(cfg.PriceTTL)
	marketSvc := service.NewMarketService(store, quotes, log)
	if err := marketSvc.Seed(ctx); err != nil {
		log.WithError(err).Fatal("stock catalog seed failed")
	}

	svcs := httpapi.Services{
		Accounts:  service.NewAccountService(store, cfg.StartingCashBalance, log),
		Trading:   service.NewTradingService(store, log),
		Portfolio: service.NewPortfolioService(store, taxCfg, log),
		Market:    marketSvc,
		News:      service.NewNewsService(),
		Recommendations: service.NewRecommendationService(
			store, service.DefaultRecommendationConfig(cfg.TermThresholdDays), log),
		Admin: store,
	}

	admin := &httpapi.AdminAuth{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Tokens:   auth.NewTokenStore(cfg.AdminTokenTTL),
	}
	if !admin.Enabled() {
		log.Warn("ADMIN_PASSWORD not set, admin endpoints disabled")
	}

	if cfg.RefreshSchedule != "" {
		cronLog := logger.Component(log, "scheduler")
		scheduler := cron.New()
		_, err := scheduler.AddFunc(cfg.RefreshSchedule, func() {
			if _, err := marketSvc.Refresh(context.Background()); err != nil {
				cronLog.WithError(err).Warn("scheduled market refresh failed")
			}
		})
		if err != nil {
			log.WithError(err).Fatal("invalid MARKET_REFRESH_SCHEDULE")
		}
		scheduler.Start()
		defer scheduler.Stop()
		cronLog.WithField("schedule", cfg.RefreshSchedule).Info("market refresh scheduled")
	}

	router := httpapi.Router(svcs, admin, log)

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Infof("tradedesk API listening on %s", addr)
	if err := router.Run(addr); err != nil {
		log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}
