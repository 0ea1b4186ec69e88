package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/markgregr/todoAgent_REST_server/internal/clients/llm"
	"github.com/markgregr/todoAgent_REST_server/internal/config"
	"github.com/markgregr/todoAgent_REST_server/internal/rest/handlers"
	"github.com/markgregr/todoAgent_REST_server/internal/rest/middleware"
	agentsvc "github.com/markgregr/todoAgent_REST_server/internal/services/agent"
	authsvc "github.com/markgregr/todoAgent_REST_server/internal/services/auth"
	taskssvc "github.com/markgregr/todoAgent_REST_server/internal/services/tasks"
	"github.com/markgregr/todoAgent_REST_server/internal/storage/postgres"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	log    *logrus.Logger
	server *http.Server
	pool   *pgxpool.Pool

	// Done closes after the server has shut down and the pool is released.
	Done chan struct{}
}

// New wires the whole application: database pool, repositories, services
// and HTTP handlers. Every dependency is passed explicitly so tests can
// assemble the same graph from fakes.
func New(cfg *config.Config, log *logrus.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("app: connect database: %w", err)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("app: migrate database: %w", err)
	}

	users := postgres.NewUserRepository(pool)
	taskStore := postgres.NewTaskRepository(pool)
	conversations := postgres.NewConversationRepository(pool)

	auth, err := authsvc.New(log, users, cfg.JWT.Secret, cfg.JWT.Algorithm, cfg.JWT.TokenTTL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("app: init auth service: %w", err)
	}
	taskService := taskssvc.New(log, taskStore)
	dispatcher := agentsvc.NewDispatcher(log, taskService)

	var completer agentsvc.Completer
	if cfg.LLM.APIKey != "" {
		completer = llm.New(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
	} else {
		log.Warn("GOOGLE_API_KEY is not set, chat runs in demo mode")
	}
	agent := agentsvc.New(log, conversations, dispatcher, completer)

	router := newRouter(cfg, log, auth, taskService, agent)

	return &App{
		log: log,
		server: &http.Server{
			Addr:    ":" + cfg.HTTPPort,
			Handler: router,
		},
		pool: pool,
		Done: make(chan struct{}),
	}, nil
}

func newRouter(cfg *config.Config, log *logrus.Logger, auth *authsvc.Service, taskService *taskssvc.Service, agent *agentsvc.Service) *gin.Engine {
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authenticate := middleware.Authenticate(auth)

	handlers.NewHealthHandler().EnrichRoutes(router)
	handlers.NewAuthHandler(auth, log).EnrichRoutes(router)
	handlers.NewTaskHandler(taskService, log).EnrichRoutes(router, authenticate)
	handlers.NewChatHandler(agent, log).EnrichRoutes(router, authenticate)

	return router
}

// Run starts the HTTP server and installs a SIGINT/SIGTERM handler that
// drains in-flight requests before closing Done.
func (a *App) Run() {
	go func() {
		a.log.WithField("addr", a.server.Addr).Info("HTTP server started")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop

		a.log.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := a.server.Shutdown(ctx); err != nil {
			a.log.WithError(err).Error("HTTP server shutdown failed")
		}
		a.pool.Close()
		close(a.Done)
	}()
}
