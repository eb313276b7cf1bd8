// Package httpapi exposes the services over HTTP with gin.
//
// Three endpoints keep their historical plain-text contract (/addRecord, /setUserClaims,
// /syncRules); everything else lives under /api and speaks JSON.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Spok95/school-discipline/internal/auth"
	"github.com/Spok95/school-discipline/internal/metrics"
	"github.com/Spok95/school-discipline/internal/service"
)

type Deps struct {
	Log      *zap.Logger
	Tokens   *auth.Tokens
	Records  *service.Records
	Rankings *service.Rankings
	Users    *service.Users
	Rules    *service.Rules
	Roster   *service.Roster
	Ping     func(ctx context.Context) error
}

type handlers struct {
	Deps
}

func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	h := &handlers{Deps: d}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(requestID(), recoverer(d.Log), accessLog(d.Log), observe(), authenticate(d.Tokens))

	r.GET("/healthz", h.healthz)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.Any("/addRecord", h.addRecord)
	r.Any("/setUserClaims", h.setUserClaims)
	r.Any("/syncRules", h.syncRules)

	r.POST("/auth/token", h.login)
	r.POST("/auth/refresh", requireSession(), h.refresh)

	api := r.Group("/api", requireSession())
	{
		api.GET("/me", h.me)
		api.GET("/weeks/current", h.currentWeek)

		api.GET("/rules", h.listRules)

		api.GET("/classes", h.listClasses)
		api.POST("/classes", h.createClass)
		api.GET("/classes/:id/students", h.listStudents)
		api.POST("/students", h.createStudent)

		api.GET("/records", h.listRecords)
		api.POST("/records", h.createRecord)
		api.GET("/records/:id", h.getRecord)
		api.POST("/records/:id/corrections", h.createCorrection)

		api.GET("/rankings/:week", h.weeklyRanking)
		api.POST("/rankings/:week/finalize", h.finalize)
		api.GET("/rankings/:week/export", h.exportRanking)

		api.GET("/users", h.listUsers)
		api.POST("/users", h.createUser)
		api.PUT("/users/:id/claims", h.putClaims)
	}
	return r
}

func (h *handlers) healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 800*time.Millisecond)
	defer cancel()
	t0 := time.Now()
	if h.Ping != nil {
		if err := h.Ping(ctx); err != nil {
			c.String(http.StatusServiceUnavailable, "db not ok: "+err.Error())
			return
		}
	}
	metrics.ObserveDBPing(time.Since(t0))
	c.String(http.StatusOK, "ok")
}

const shutdownTimeout = 3 * time.Second

// Start listens on addr and serves handler until ctx is done. The returned channel is
// closed once the server has stopped and in-flight requests have finished (or
// shutdownTimeout ran out); close the database only after that.
func Start(ctx context.Context, addr string, handler http.Handler, log *zap.Logger) (<-chan struct{}, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info("http listening", zap.String("addr", ln.Addr().String()))
	return serve(ctx, srv, ln, log), nil
}

func serve(ctx context.Context, srv *http.Server, ln net.Listener, log *zap.Logger) <-chan struct{} {
	served := make(chan struct{})
	go func() {
		defer close(served)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server", zap.Error(err))
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-served:
			return
		case <-ctx.Done():
		}
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			log.Warn("http shutdown", zap.Error(err))
		}
		<-served
	}()
	return done
}
