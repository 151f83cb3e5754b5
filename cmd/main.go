package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/davidbz/hearth/internal/catalog"
	"github.com/davidbz/hearth/internal/config"
	"github.com/davidbz/hearth/internal/contextstore"
	"github.com/davidbz/hearth/internal/domain"
	"github.com/davidbz/hearth/internal/embedding"
	embeddingopenai "github.com/davidbz/hearth/internal/embedding/openai"
	"github.com/davidbz/hearth/internal/http"
	"github.com/davidbz/hearth/internal/http/middleware"
	"github.com/davidbz/hearth/internal/observability"
	"github.com/davidbz/hearth/internal/provider"
	"github.com/davidbz/hearth/internal/provider/anthropic"
	"github.com/davidbz/hearth/internal/provider/gemini"
	"github.com/davidbz/hearth/internal/provider/llamacpp"
	"github.com/davidbz/hearth/internal/provider/lmstudio"
	"github.com/davidbz/hearth/internal/provider/mistral"
	"github.com/davidbz/hearth/internal/provider/ollama"
	provideropenai "github.com/davidbz/hearth/internal/provider/openai"
	"github.com/davidbz/hearth/internal/router"
)

const shutdownTimeout = 10 * time.Second

func main() {
	container := buildContainer()

	err := container.Invoke(func(server *http.Server, table *llamacpp.ProcessTable, _ *zap.Logger) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		select {
		case err := <-errCh:
			if err != nil {
				log.Fatalf("Server failed to start: %v", err)
			}
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Printf("Shutdown error: %v", err)
			}
			// Terminate any in-flight local model runners.
			table.Shutdown()
		}
	})
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

func buildContainer() *dig.Container {
	container := dig.New()

	provide := func(constructor interface{}) {
		if err := container.Provide(constructor); err != nil {
			log.Fatalf("Failed to build container: %v", err)
		}
	}

	// Configuration
	provide(config.Load)
	provide(config.ParseDependenciesConfig)

	// Observability
	provide(observability.InitLogger)
	provide(observability.NewEventBus)

	// Configuration store and capability catalog
	provide(provider.NewStore)
	provide(func(store *provider.Store) domain.ConfigStore { return store })
	provide(catalog.New)

	// Local process registry
	provide(llamacpp.NewProcessTable)

	// One adapter per configured backend
	provide(func(store *provider.Store, table *llamacpp.ProcessTable) map[domain.Backend]domain.Adapter {
		adapters := make(map[domain.Backend]domain.Adapter)
		for _, backend := range store.Configured() {
			cfg, _ := store.Get(backend)
			switch backend {
			case domain.BackendOpenAI:
				adapters[backend] = provideropenai.NewAdapter(cfg)
			case domain.BackendAnthropic:
				adapters[backend] = anthropic.NewAdapter(cfg)
			case domain.BackendGemini:
				adapters[backend] = gemini.NewAdapter(cfg)
			case domain.BackendMistral:
				adapters[backend] = mistral.NewAdapter(cfg)
			case domain.BackendOllama:
				adapters[backend] = ollama.NewAdapter(cfg)
			case domain.BackendLMStudio:
				adapters[backend] = lmstudio.NewAdapter(cfg)
			case domain.BackendLlamaCpp:
				adapters[backend] = llamacpp.NewAdapter(cfg, table)
			}
		}
		return adapters
	})

	// Router
	provide(router.New)

	// Embedding sub-service
	provide(func(store *provider.Store, embCfg *config.EmbeddingConfig) (*embedding.Service, error) {
		generators := make(map[domain.Backend]domain.EmbeddingGenerator)
		if cfg, ok := store.Get(domain.BackendOpenAI); ok {
			generator, err := embeddingopenai.NewGenerator(cfg, embCfg.Model)
			if err != nil {
				return nil, err
			}
			generators[domain.BackendOpenAI] = generator
		}
		return embedding.NewService(generators), nil
	})

	// Multi-turn context store (optional, requires Redis)
	provide(func(redisCfg *config.RedisConfig) domain.ContextStore {
		if redisCfg.Addr == "" {
			return nil
		}
		client := redis.NewClient(&redis.Options{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		})
		return contextstore.New(client, time.Duration(redisCfg.ContextTTL)*time.Second)
	})

	// HTTP Layer
	provide(middleware.BuildMiddlewareChain)
	provide(http.NewHandler)
	provide(http.NewServer)

	return container
}
