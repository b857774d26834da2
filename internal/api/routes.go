package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/api/handlers"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/api/middleware"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	AllowedOrigins []string
	AuthCache      *cache.Cache
	Gatherer       prometheus.Gatherer
}

func NewRouter(h *handlers.Handlers, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CheckCORS(cfg.AllowedOrigins))

	r.GET("/api/health", h.Health)
	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	r.POST("/api/users", h.CreateUser)

	auth := middleware.Auth(h.Tokens, cfg.AuthCache)
	api := r.Group("/api", auth)
	{
		api.GET("/users/me", h.GetMe)
		api.PATCH("/users/me", h.UpdateMe)
		api.GET("/users/:id", h.GetUser)

		api.GET("/meetups/ws", h.MeetupWebSocket)
		api.POST("/meetups", h.CreateMeetup)
		api.GET("/meetups", h.ListMeetups)
		api.GET("/meetups/mine", h.ListMyMeetups)
		api.GET("/meetups/:id", h.GetMeetup)
		api.PATCH("/meetups/:id", h.UpdateMeetup)
		api.POST("/meetups/:id/cancel", h.CancelMeetup)

		api.POST("/meetups/:id/join", h.JoinMeetup)
		api.POST("/meetups/:id/leave", h.LeaveMeetup)
		api.GET("/meetups/:id/participants", h.ListParticipants)
		api.DELETE("/meetups/:id/participants/:userId", h.RemoveParticipant)

		members := api.Group("/meetups/:id/messages", middleware.MeetupMember(h.Participants))
		members.GET("", h.GetMessages)
		members.POST("", h.PostMessage)
	}
	return r
}

// Serve runs the server until ctx is cancelled, then shuts it down.
// beforeShutdown runs first so hijacked websocket connections can be closed.
func Serve(ctx context.Context, addr string, handler http.Handler, beforeShutdown func()) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	if beforeShutdown != nil {
		beforeShutdown()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("server exited properly")
	return nil
}
