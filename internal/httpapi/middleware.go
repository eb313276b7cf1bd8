package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Spok95/school-discipline/internal/apperr"
	"github.com/Spok95/school-discipline/internal/auth"
	"github.com/Spok95/school-discipline/internal/ctxutil"
	"github.com/Spok95/school-discipline/internal/ids"
	"github.com/Spok95/school-discipline/internal/metrics"
	"github.com/Spok95/school-discipline/internal/observability"
)

const (
	headerRequestID = "X-Request-ID"
	keySession      = "session"
	keyAuthErr      = "authErr"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" || len(id) > 64 {
			id = ids.New()
		}
		c.Header(headerRequestID, id)
		c.Request = c.Request.WithContext(ctxutil.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func accessLog(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		rid, _ := ctxutil.RequestID(c.Request.Context())
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", rid),
		}
		if s := sessionOf(c); s != nil {
			fields = append(fields, zap.String("sub", s.Subject))
		}
		switch {
		case c.Writer.Status() >= 500:
			log.Error("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

func observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveRequest(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}

func recoverer(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("panic: %v", r)
				log.Error("panic recovered", zap.Error(err), zap.String("path", c.Request.URL.Path), zap.Stack("stack"))
				observability.CaptureCtxErr(c.Request.Context(), err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: "internal error"})
			}
		}()
		c.Next()
	}
}

// authenticate builds the per-request session when a bearer token is present. It never
// rejects: each route decides what a missing or bad token means for it.
func authenticate(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || tokens == nil {
			c.Next()
			return
		}
		raw, err := auth.BearerToken(header)
		if err == nil {
			var sess *auth.Session
			if sess, err = tokens.Verify(raw); err == nil {
				c.Set(keySession, sess)
				ctx := ctxutil.WithSubject(c.Request.Context(), sess.Subject)
				c.Request = c.Request.WithContext(ctx)
			}
		}
		if err != nil {
			c.Set(keyAuthErr, err)
		}
		c.Next()
	}
}

func requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionOf(c) == nil {
			respondErr(c, apperr.ErrUnauthenticated)
			c.Abort()
			return
		}
		c.Next()
	}
}

func sessionOf(c *gin.Context) *auth.Session {
	v, ok := c.Get(keySession)
	if !ok {
		return nil
	}
	s, _ := v.(*auth.Session)
	return s
}
