package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/api"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/api/handlers"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/api/ws"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/config"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/cron"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/logging"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/metrics"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/pubsub"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/repositories"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/services"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const tokenLifetime = 24 * time.Hour

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logging.Setup(cfg.LogLevel)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.OpenDB(cfg.DBDriver, cfg.DSN)
	if err != nil {
		return fmt.Errorf("DB not initialized: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	userRepo := repositories.NewUserRepository(db)
	meetupRepo := repositories.NewMeetupRepository(db)
	msgRepo := repositories.NewMessageRepository(db)

	participants := services.NewParticipantService(meetupRepo, userRepo, utils.NewMembershipCache(), m)
	meetups := services.NewMeetupService(meetupRepo, userRepo, participants, cfg.CompletionGrace)
	messages := services.NewMessageService(msgRepo, userRepo, participants, m)

	hub := ws.NewHub(m)
	relay := ws.NewRelay(hub, messages, participants, m, ws.RelayConfig{AllowedOrigins: cfg.AllowedOrigins})
	participants.OnRelease(relay.Evict)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RedisAddr != "" {
		rdb, err := pubsub.Dial(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer rdb.Close()
		bus := pubsub.NewRedisBus(rdb, pubsub.DefaultChannel)
		relay.SetBus(bus)
		go func() {
			if err := bus.Run(ctx, relay, nil); err != nil {
				slog.Error("redis bus stopped", "error", err)
			}
		}()
	}

	scheduler, err := cron.StartCronJobs(meetups)
	if err != nil {
		return fmt.Errorf("cron: %w", err)
	}
	defer scheduler.Stop()

	h := &handlers.Handlers{
		Users:        services.NewUserService(userRepo),
		Meetups:      meetups,
		Participants: participants,
		Messages:     messages,
		Relay:        relay,
		Tokens:       utils.NewTokenManager(cfg.JWTSecret, tokenLifetime),
		Started:      time.Now(),
	}
	router := api.NewRouter(h, api.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		AuthCache:      utils.NewAuthCache(),
		Gatherer:       reg,
	})

	return api.Serve(ctx, cfg.Addr(), router, hub.Shutdown)
}
