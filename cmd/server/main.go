// Command server runs the diagnostic and hybrid-session HTTP API.
package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"

	"github.com/sensoryx/medagent/api"
	"github.com/sensoryx/medagent/config"
	"github.com/sensoryx/medagent/diagnosis"
	"github.com/sensoryx/medagent/gateway"
	"github.com/sensoryx/medagent/hybrid"
	"github.com/sensoryx/medagent/hybrid/postgres"
	"github.com/sensoryx/medagent/logging"
	"github.com/sensoryx/medagent/model"
	anthropicmodel "github.com/sensoryx/medagent/model/anthropic"
	openaimodel "github.com/sensoryx/medagent/model/openai"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, os.Stdout)

	gen := newGenerator(cfg, logger)
	gw := gateway.NewStaticGateway()

	store, cleanup, err := newStore(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	orch := diagnosis.New(gen, gw, func(o *diagnosis.Options) {
		o.Logger = logger
	})
	mgr := hybrid.NewManager(store, hybrid.NewDiagnosisAnalyzer(orch), gw, func(o *hybrid.Options) {
		o.Logger = logger
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"status":"ok"}`)
	})
	api.RegisterRoutes(r, api.NewHandler(orch, mgr, logger))

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("server listening", "addr", addr, "model", gen.Info().Name, "provider", gen.Info().Provider)
	return http.ListenAndServe(addr, r)
}

// newGenerator picks the language model backend. An unset or unknown provider
// falls back to the degraded deterministic generator so the service stays up
// without credentials.
func newGenerator(cfg *config.Config, logger logging.Logger) model.Generator {
	switch cfg.Provider {
	case model.ProviderOpenAI:
		return openaimodel.New(func(o *openaimodel.Options) {
			if cfg.OpenAIModel != "" {
				o.Model = cfg.OpenAIModel
			}
		})
	case model.ProviderAnthropic:
		return anthropicmodel.New(func(o *anthropicmodel.Options) {
			if cfg.AnthropicModel != "" {
				o.Model = anthropic.Model(cfg.AnthropicModel)
			}
		})
	default:
		if cfg.Provider != model.ProviderFallback {
			logger.Warn("unknown model provider, using fallback", "provider", cfg.Provider)
		}
		return model.NewFallbackGenerator()
	}
}

// newStore selects the session store: PostgreSQL when a database URL is
// configured, in-memory otherwise.
func newStore(cfg *config.Config, logger logging.Logger) (hybrid.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Info("using in-memory session store")
		return hybrid.NewInMemoryStore(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	store, err := postgres.New(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	logger.Info("using postgres session store")
	return store, func() { db.Close() }, nil
}
