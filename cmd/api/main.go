package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/YasminCastro/malucas-awards-v2/api/routes"
	"github.com/YasminCastro/malucas-awards-v2/internal/config"
	"github.com/YasminCastro/malucas-awards-v2/internal/handlers"
	"github.com/YasminCastro/malucas-awards-v2/internal/logging"
	"github.com/YasminCastro/malucas-awards-v2/internal/metrics"
	"github.com/YasminCastro/malucas-awards-v2/internal/repositories"
	"github.com/YasminCastro/malucas-awards-v2/internal/repositories/memory"
	mongorepo "github.com/YasminCastro/malucas-awards-v2/internal/repositories/mongodb"
	"github.com/YasminCastro/malucas-awards-v2/internal/services"
	"github.com/YasminCastro/malucas-awards-v2/pkg/cache"
	"github.com/YasminCastro/malucas-awards-v2/pkg/jwt"
	"github.com/YasminCastro/malucas-awards-v2/pkg/mongodb"
	"github.com/gin-gonic/gin"
)

// stores groups the repositories behind the services
type stores struct {
	users       repositories.UserRepository
	categories  repositories.CategoryRepository
	votes       repositories.VoteRepository
	settings    repositories.SettingsRepository
	suggestions repositories.CategorySuggestionRepository
	close       func(context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logging.NewLogger(cfg.LogLevel)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open store", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := st.close(context.Background()); err != nil {
			log.Error("error disconnecting from store", "error", err)
		}
	}()

	m := metrics.New()
	c := cache.New(cache.WithObserver(m))
	c.StartJanitor(ctx, cfg.Cache.SweepInterval)

	tokens, err := jwt.NewTokenService(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	if err != nil {
		log.Error("failed to create token service", "error", err)
		os.Exit(1)
	}

	gate := services.NewPhaseGate(st.settings, c, cfg.Cache.SettingsTTL, m)
	if current, err := gate.Fresh(ctx); err == nil {
		m.SetPhase(current.Phase)
	}

	userService := services.NewUserService(st.users, c, cfg.Cache.UsersTTL, log)
	categoryService := services.NewCategoryService(st.categories, gate, c, cfg.Cache.CategoriesTTL, log)
	voteService := services.NewVoteService(st.votes, c, log, m)
	resultsService := services.NewResultsService(st.votes, st.categories, c, cfg.Cache.ResultsTTL)
	settingsService := services.NewSettingsService(gate)
	suggestionService := services.NewSuggestionService(st.suggestions, c, cfg.Cache.SuggestionsTTL)
	authService := services.NewAuthService(userService, gate, tokens)

	deps := routes.HandlerDependencies{
		AuthHandler: handlers.NewAuthHandler(authService, userService, handlers.SessionCookie{
			Name:   cfg.JWT.Cookie,
			TTL:    tokens.TTL(),
			Secure: cfg.Server.SecureCookies,
		}, log),
		UserHandler:       handlers.NewUserHandler(userService, log),
		CategoryHandler:   handlers.NewCategoryHandler(categoryService, log),
		VoteHandler:       handlers.NewVoteHandler(gate, voteService, categoryService, log),
		ResultsHandler:    handlers.NewResultsHandler(gate, resultsService, log),
		SettingsHandler:   handlers.NewSettingsHandler(settingsService, gate, log),
		SuggestionHandler: handlers.NewSuggestionHandler(suggestionService, log),
		Authenticator:     authService,
		AdminChecker:      userService,
		Metrics:           m,
		Logger:            log,
	}
	router := routes.SetupRouter(cfg, deps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("server starting", "port", cfg.Server.Port, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exiting")
}

func openStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*stores, error) {
	if cfg.Storage.Driver == "memory" {
		log.Warn("using the in-memory store, data is lost on restart")
		return &stores{
			users:       memory.NewUserRepository(),
			categories:  memory.NewCategoryRepository(),
			votes:       memory.NewVoteRepository(),
			settings:    memory.NewSettingsRepository(),
			suggestions: memory.NewCategorySuggestionRepository(),
			close:       func(context.Context) error { return nil },
		}, nil
	}

	client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI, cfg.MongoDB.ConnectTimeout)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.MongoDB.Database)

	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	transactional, err := useTransactions(ctx, cfg.MongoDB.Transactions, client)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	if !transactional {
		log.Warn("multi-document transactions unavailable, ballots are replaced without a transaction; results may briefly count a ballot mid-replace")
	}

	return &stores{
		users:       mongorepo.NewUserRepository(db),
		categories:  mongorepo.NewCategoryRepository(db),
		votes:       mongorepo.NewVoteRepository(db, transactional),
		settings:    mongorepo.NewSettingsRepository(db),
		suggestions: mongorepo.NewCategorySuggestionRepository(db),
		close:       client.Disconnect,
	}, nil
}

func useTransactions(ctx context.Context, mode string, client *mongodb.Client) (bool, error) {
	switch mode {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return client.SupportsTransactions(ctx)
}
