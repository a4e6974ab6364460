package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/factuurly/signing-api/internal/handlers"
	"github.com/factuurly/signing-api/internal/httpx"
	"github.com/factuurly/signing-api/internal/ratelimit"
	"github.com/factuurly/signing-api/internal/signing"
)

// Options tune the outer middleware; zero values disable the throttle.
type Options struct {
	GlobalRPS   int
	GlobalBurst int
}

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, limiter ratelimit.Store, log *slog.Logger, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(withLogging(log))
	r.Use(withRecover(log))
	r.Use(throttle(opts.GlobalRPS, opts.GlobalBurst))

	// --- Health endpoints ---
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		// Lightweight DB check (SELECT 1) – no detailed errors in the body
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public signing endpoints (token-gated, unauthenticated)
	sh := handlers.NewSigningHandler(db, signing.NewGuard(db, limiter), signing.NewProcessor(db), log)
	sh.Register(r)

	return r
}

func withLogging(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		})
	}
}

func withRecover(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("panic in handler", "panic", rec, "path", r.URL.Path)
					httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// throttle is a coarse whole-service limiter, separate from the per-token
// budget the signing guard enforces. Disabled when rps <= 0.
func throttle(rps, burst int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				httpx.JSONError(w, http.StatusTooManyRequests, "too_many_requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
