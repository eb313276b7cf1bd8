package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Spok95/school-discipline/internal/auth"
	"github.com/Spok95/school-discipline/internal/cache"
	"github.com/Spok95/school-discipline/internal/config"
	"github.com/Spok95/school-discipline/internal/db"
	"github.com/Spok95/school-discipline/internal/httpapi"
	"github.com/Spok95/school-discipline/internal/jobs"
	"github.com/Spok95/school-discipline/internal/logging"
	"github.com/Spok95/school-discipline/internal/notify"
	"github.com/Spok95/school-discipline/internal/observability"
	"github.com/Spok95/school-discipline/internal/rules"
	"github.com/Spok95/school-discipline/internal/service"
	"github.com/Spok95/school-discipline/internal/week"
)

func main() {
	// Загрузка переменных окружения
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env, cfg.Release)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Closer()
	logger := lg.Base

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, cfg.Release)
	if err != nil {
		logger.Warn("sentry disabled", zap.Error(err))
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer func() { _ = database.Close() }()

	if err := db.Migrate(ctx, database); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	store := db.NewStore(database)
	if seeded, err := store.SeedRulesIfEmpty(ctx, rules.Catalog()); err != nil {
		logger.Fatal("seed rules", zap.Error(err))
	} else if seeded {
		logger.Info("rules seeded", zap.Int("count", len(rules.Catalog())))
	}
	if len(cfg.SeedGrades) > 0 && cfg.SeedClassesPerGrade > 0 {
		if err := store.SeedClasses(ctx, cfg.SeedGrades, cfg.SeedClassesPerGrade); err != nil {
			logger.Fatal("seed classes", zap.Error(err))
		}
	}

	// кеш рейтингов: только если задан REDIS_ADDR
	var rankCache cache.Rankings = cache.Nop{}
	if cfg.RedisAddr != "" {
		rc := cache.NewRedis(cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword), cfg.RedisTTL, lg.Named("cache"))
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rc.Ping(pingCtx); err != nil {
			logger.Warn("redis unavailable, ranking cache off", zap.Error(err))
		} else {
			rankCache = rc
			defer func() { _ = rc.Close() }()
		}
		cancel()
	}

	weeks := week.NewResolver(cfg.Location, cfg.TermMonth, cfg.TermDay)
	tokens := auth.NewTokens(cfg.AuthSecret, cfg.AuthTokenTTL, lg.Named("auth"))

	records := service.NewRecords(store, weeks, rankCache, lg.Named("records"))
	rankings := service.NewRankings(store, weeks, rankCache, lg.Named("rankings")).WithSchoolName(cfg.SchoolName)
	users := service.NewUsers(store, tokens, lg.Named("users"))

	if err := users.Bootstrap(ctx, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword); err != nil {
		logger.Fatal("bootstrap admin", zap.Error(err))
	}

	tg, err := notify.NewTelegram(cfg.BotToken, cfg.AnnounceChatIDs, lg.Named("telegram"))
	if err != nil {
		logger.Warn("telegram announcer disabled", zap.Error(err))
	}

	runner := jobs.New(ctx, lg.Named("jobs"))
	runner.Every(cfg.FinalizeEvery, "finalize_weeks", true,
		jobs.FinalizeWeeks(rankings, cfg.FinalizeGrace, tg, lg.Named("finalize")))
	runner.Every(time.Hour, "school_year_watch", true,
		jobs.SchoolYearWatch(weeks, tg, time.Now))

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(httpapi.Deps{
		Log:      lg.Named("http"),
		Tokens:   tokens,
		Records:  records,
		Rankings: rankings,
		Users:    users,
		Rules:    service.NewRules(store, lg.Named("rules")),
		Roster:   service.NewRoster(store, rankCache, lg.Named("roster")),
		Ping:     store.Ping,
	})
	served, err := httpapi.Start(ctx, cfg.HTTPAddr, router, logger)
	if err != nil {
		logger.Fatal("http", zap.Error(err))
	}

	logger.Info("server started",
		zap.String("env", cfg.Env),
		zap.String("release", cfg.Release),
		zap.Bool("cache", cfg.RedisAddr != ""),
		zap.Bool("announcer", tg != nil),
	)
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case <-served:
		logger.Error("http server stopped unexpectedly")
		stop()
	}
	// БД закрывается (defer) только после того, как http.Server дообслужил запросы
	<-served
}
