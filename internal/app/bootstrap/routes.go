// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	adminfeature "github.com/convenehq/convene/internal/app/features/admin"
	authfeature "github.com/convenehq/convene/internal/app/features/auth"
	eventsfeature "github.com/convenehq/convene/internal/app/features/events"
	healthfeature "github.com/convenehq/convene/internal/app/features/health"
	messagesfeature "github.com/convenehq/convene/internal/app/features/messages"
	statsfeature "github.com/convenehq/convene/internal/app/features/stats"
	commentstore "github.com/convenehq/convene/internal/app/store/comments"
	eventstore "github.com/convenehq/convene/internal/app/store/events"
	messagestore "github.com/convenehq/convene/internal/app/store/messages"
	taskstore "github.com/convenehq/convene/internal/app/store/tasks"
	userstore "github.com/convenehq/convene/internal/app/store/users"
	votestore "github.com/convenehq/convene/internal/app/store/votes"
	"github.com/convenehq/convene/internal/app/system/auth"
	"github.com/convenehq/convene/internal/app/system/requestid"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// Convene builds the token manager from app config, wires the user
// fetcher so every request resolves a fresh user record, and mounts
// the JSON API feature routers under /api plus the health endpoint.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	tokens, err := auth.NewTokenManager(appCfg.TokenSecret, appCfg.TokenTTL, logger)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase

	// The fetcher makes role changes, approvals, and deletions take
	// effect on the next request rather than at token expiry.
	tokens.SetUserFetcher(userstore.NewFetcher(db))

	users := userstore.New(db)
	events := eventstore.New(db)
	votes := votestore.New(db)
	tasks := taskstore.New(db)
	comments := commentstore.New(db)
	messages := messagestore.New(db)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requestLogger(logger))
	r.Use(tokens.LoadTokenUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Route("/api", func(api chi.Router) {
		authHandler := authfeature.NewHandler(users, tokens, logger)
		api.Mount("/auth", authfeature.Routes(authHandler))

		adminHandler := adminfeature.NewHandler(users, events, logger)
		api.Mount("/admin", adminfeature.Routes(adminHandler))

		eventsHandler := eventsfeature.NewHandler(events, votes, tasks, comments, users, logger)
		api.Mount("/events", eventsfeature.Routes(eventsHandler))

		messagesHandler := messagesfeature.NewHandler(messages, users, logger)
		api.Mount("/messages", messagesfeature.Routes(messagesHandler))

		statsHandler := statsfeature.NewHandler(events, tasks, logger)
		api.Mount("/stats", statsfeature.Routes(statsHandler))
	})

	return r, nil
}

// requestLogger emits one structured line per request with the id the
// requestid middleware assigned.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			logger.Info("http request",
				zap.String("request_id", requestid.FromContext(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sw.status),
				zap.Duration("duration", time.Since(start)))
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
