package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/curalink/internal/config"
	"github.com/kailas-cloud/curalink/internal/db"
	dbRedis "github.com/kailas-cloud/curalink/internal/db/redis"
	"github.com/kailas-cloud/curalink/internal/domain"
	logpkg "github.com/kailas-cloud/curalink/internal/logger"
	"github.com/kailas-cloud/curalink/internal/metrics"
	budgetrepo "github.com/kailas-cloud/curalink/internal/repository/budget"
	conversationrepo "github.com/kailas-cloud/curalink/internal/repository/conversation"
	"github.com/kailas-cloud/curalink/internal/repository/tokencache"
	archiveTransport "github.com/kailas-cloud/curalink/internal/transport/archive"
	chiTransport "github.com/kailas-cloud/curalink/internal/transport/chi"
	"github.com/kailas-cloud/curalink/internal/transport/keycloak"
	openaiChat "github.com/kailas-cloud/curalink/internal/transport/openai"
	archiveconfuc "github.com/kailas-cloud/curalink/internal/usecase/archiveconf"
	assistantuc "github.com/kailas-cloud/curalink/internal/usecase/assistant"
	dashboarduc "github.com/kailas-cloud/curalink/internal/usecase/dashboard"
	healthuc "github.com/kailas-cloud/curalink/internal/usecase/health"
	institutionuc "github.com/kailas-cloud/curalink/internal/usecase/institution"
	"github.com/kailas-cloud/curalink/internal/usecase/llm"
	searchuc "github.com/kailas-cloud/curalink/internal/usecase/search"
	usageuc "github.com/kailas-cloud/curalink/internal/usecase/usage"
	"github.com/kailas-cloud/curalink/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting curalink gateway",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("archives", archiveIDs(cfg.Archives)),
		zap.String("default_archive", cfg.DefaultArchive),
		zap.Bool("database", cfg.Database.Enabled()),
		zap.Bool("assistant", cfg.Assistant.Configured()),
	)

	metrics.RegisterHTTPMetrics()
	metrics.RegisterArchiveMetrics()
	metrics.RegisterAssistantMetrics()

	ctx := context.Background()

	// Optional cache store. Without it tokens are fetched per request
	// and conversations and budget counters live only in memory.
	var store db.Store
	if cfg.Database.Enabled() {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer s.Close()

		if err := s.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database",
			zap.String("driver", cfg.Database.Driver),
			zap.Strings("addrs", cfg.Database.Addrs),
		)
		store = s
	}

	tokens := buildTokenSource(cfg, store, logger)

	executor, err := archiveTransport.NewExecutor(archiveTransport.Config{
		Archives:   archives(cfg.Archives),
		Default:    cfg.DefaultArchive,
		Timeout:    time.Duration(cfg.Query.TimeoutSec) * time.Second,
		Tokens:     tokens,
		HTTPClient: newHTTPClient(0, cfg.Query.InsecureSkipVerify),
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("Failed to create archive executor", zap.Error(err))
	}

	institutions := institutionuc.New(
		executor,
		time.Duration(cfg.Cache.InstitutionsTTLSec)*time.Second,
		metrics.InstitutionCacheTotal,
		logger,
	)

	chat := buildChatModel(ctx, cfg, store, logger)

	// Pass nil interfaces (not typed nil pointers!) for absent components.
	var conversations assistantuc.Conversations
	if store != nil {
		conversations = conversationrepo.New(store, time.Duration(cfg.Cache.ConversationTTLSec)*time.Second)
	}
	var model domain.ChatModel
	var assistantChecker healthuc.AssistantChecker
	var budget usageuc.BudgetReader
	if chat != nil {
		model = chat
		assistantChecker = chat.checker
		budget = chat.budget
	}
	var dbPinger healthuc.DBPinger
	if store != nil {
		dbPinger = store
	}

	server := chiTransport.NewServer(chiTransport.Services{
		Archives:     executor,
		Search:       searchuc.New(executor),
		Institutions: institutions,
		Dashboard:    dashboarduc.New(executor, institutions, logger),
		Assistant: assistantuc.New(executor, institutions, assistantuc.Config{
			Model:         model,
			Conversations: conversations,
			MaxHistory:    cfg.Assistant.MaxHistory,
			Logger:        logger,
		}),
		ArchiveConfig: archiveconfuc.New(executor),
		Usage:         usageuc.New(budget),
		Health:        healthuc.New(executor, dbPinger, assistantChecker),
	}, logger)

	handler := server.Handler(
		jsonRecoverer(logger),
		chiMiddleware.RequestID,
		wideEventMiddleware(logger),
		chiTransport.CORSMiddleware(cfg.CORS.AllowedOrigins),
		chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys),
		metrics.Middleware(metrics.RouteLabels{
			ServiceParam: chiTransport.ServiceParam,
			Default:      cfg.DefaultArchive,
			Archives:     archiveIDs(cfg.Archives),
			FanoutHeader: chiTransport.HeaderArchiveRequests,
		}),
	)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func archiveIDs(cfgs []config.ArchiveConfig) []string {
	ids := make([]string, 0, len(cfgs))
	for _, a := range cfgs {
		ids = append(ids, a.ID)
	}
	return ids
}

func archives(cfgs []config.ArchiveConfig) []archiveTransport.Archive {
	out := make([]archiveTransport.Archive, 0, len(cfgs))
	for _, a := range cfgs {
		out = append(out, archiveTransport.Archive{
			ID:           a.ID,
			Description:  a.Description,
			URL:          a.URL,
			Path:         a.Path,
			ConfigPath:   a.ConfigPath,
			AuthRequired: a.AuthRequired,
		})
	}
	return out
}

// newHTTPClient builds a client for the archive and identity provider.
// Archives commonly run with self-signed certificates.
func newHTTPClient(timeout time.Duration, insecure bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via query.insecure_skip_verify
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// buildTokenSource assembles the token chain: Keycloak -> Cached.
// Returns nil when no identity provider is configured.
func buildTokenSource(cfg config.Config, store db.Store, logger *zap.Logger) domain.TokenSource {
	if cfg.Identity.URL == "" {
		return nil
	}
	provider := keycloak.NewProvider(&keycloak.Config{
		BaseURL:  cfg.Identity.URL,
		Realm:    cfg.Identity.Realm,
		ClientID: cfg.Identity.ClientID,
		Username: cfg.Identity.Username,
		Password: cfg.Identity.Password,
		Logger:   logger,
	}, newHTTPClient(time.Duration(cfg.Identity.TimeoutSec)*time.Second, cfg.Query.InsecureSkipVerify))

	if store == nil || !cfg.Cache.TokenCache {
		return provider
	}
	logger.Info("Token cache enabled")
	return tokencache.New(provider, store, cfg.Identity.Username, metrics.TokenCacheTotal, logger)
}

// chatModel pairs the decorated chat model with the raw client's health check.
type chatModel struct {
	*llm.InstrumentedChatModel
	checker healthuc.AssistantChecker
	budget  *llm.BudgetTracker
}

// buildChatModel assembles the chat chain: OpenAI-compatible client -> Instrumented (budget).
// Returns nil when the assistant is not configured.
func buildChatModel(ctx context.Context, cfg config.Config, store db.Store, logger *zap.Logger) *chatModel {
	ac := cfg.Assistant
	if !ac.Configured() {
		logger.Info("Assistant not configured, smart search disabled")
		return nil
	}

	base := openaiChat.NewChatClient(&openaiChat.Config{
		APIKey:      ac.APIKey,
		BaseURL:     ac.BaseURL,
		Model:       ac.Model,
		Temperature: ac.Temperature,
		MaxTokens:   ac.MaxTokens,
		Provider:    ac.Provider,
		Timeout:     ac.Timeout(),
		Logger:      logger,
	})

	// Zero limits still count tokens for the usage report.
	action := llm.BudgetActionWarn
	if ac.Budget.Action == "reject" {
		action = llm.BudgetActionReject
	}
	budget := llm.NewBudgetTracker(
		ac.Provider, ac.Budget.DailyTokenLimit, ac.Budget.MonthlyTokenLimit, action, logger,
	)
	if store != nil {
		// Loads current counters from the store.
		budget.WithStore(ctx, budgetrepo.New(store, budgetrepo.DefaultDailyTTL, budgetrepo.DefaultMonthlyTTL))
	}

	logger.Info("Assistant configured",
		zap.String("provider", ac.Provider),
		zap.String("model", ac.Model),
		zap.Int64("daily_token_limit", ac.Budget.DailyTokenLimit),
		zap.Int64("monthly_token_limit", ac.Budget.MonthlyTokenLimit),
	)
	return &chatModel{
		InstrumentedChatModel: llm.NewInstrumentedChatModel(base, ac.Provider, budget, logger),
		checker:               base,
		budget:                budget,
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
				zap.String("archive_requests", ww.Header().Get(chiTransport.HeaderArchiveRequests)),
			)
		})
	}
}
