package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/mmoralesp95/Proyecto-IA/config"
	"github.com/mmoralesp95/Proyecto-IA/modules/activity"
	"github.com/mmoralesp95/Proyecto-IA/modules/api"
	"github.com/mmoralesp95/Proyecto-IA/modules/backlog"
	"github.com/mmoralesp95/Proyecto-IA/modules/drafting"
	"github.com/mmoralesp95/Proyecto-IA/storage"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Backlog Assistant - Tasks and User Stories ===")

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// The backend is owned by the backlog module, which closes it on Stop.
	backend, err := storage.Open(context.Background(), cfg.StorageOptions())
	if err != nil {
		log.Fatalf("Failed to open %s storage: %v", cfg.Storage.Backend, err)
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Order: independent modules first, then modules with dependencies
	modules := []mono.Module{
		activity.NewModule(),          // Event consumer (subscribes to backlog events)
		drafting.NewModule(cfg.LLM()), // AI drafting collaborator
		backlog.NewModule(backend),    // Core domain (owns storage, emits events)
		api.NewModule(cfg.API()),      // Driving adapter (depends on the three above)
	}
	for _, m := range modules {
		if err := app.Register(m); err != nil {
			log.Fatalf("Failed to register %s module: %v", m.Name(), err)
		}
	}

	if err := app.Start(context.Background()); err != nil {
		_ = backend.Close()
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Printf("  Storage backend: %s", cfg.Storage.Backend)
	if cfg.LLM().Configured() {
		log.Printf("  AI deployment: %s", cfg.AI.Deployment)
	} else {
		log.Println("  AI deployment: not configured (AI endpoints answer 503)")
	}
	log.Println("")
	log.Printf("HTTP Endpoints (http://localhost:%d):", cfg.Server.Port)
	log.Println("  GET    /tasks                       - List tasks")
	log.Println("  POST   /tasks                       - Create a task")
	log.Println("  GET    /tasks/:id                   - Get a task")
	log.Println("  PUT    /tasks/:id                   - Update a task (partial)")
	log.Println("  DELETE /tasks/:id                   - Delete a task")
	log.Println("  GET    /user-stories                - User story page")
	log.Println("  POST   /user-stories                - Draft a user story from a prompt")
	log.Println("  PUT    /user-stories/:id            - Update a user story")
	log.Println("  GET    /user-stories/:id/tasks      - Tasks of a user story")
	log.Println("  POST   /user-stories/:id/tasks      - Generate tasks for a user story")
	log.Println("  POST   /user-stories/:id/delete     - Delete a user story and its tasks")
	log.Println("  POST   /ai/tasks/describe           - Describe a task")
	log.Println("  POST   /ai/tasks/categorize         - Categorize a task")
	log.Println("  POST   /ai/tasks/estimate           - Estimate effort hours")
	log.Println("  POST   /ai/tasks/audit              - Risk analysis and mitigation")
	log.Println("  GET    /activity                    - Recent backlog activity")
	log.Println("  GET    /health                      - Health check")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
