package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"studybudy-quiz-service/internal/auth"
	"studybudy-quiz-service/internal/config"
	"studybudy-quiz-service/internal/domain"
	"studybudy-quiz-service/internal/infra/memory"
	pgstore "studybudy-quiz-service/internal/infra/postgres"
	redisinfra "studybudy-quiz-service/internal/infra/redis"
	"studybudy-quiz-service/internal/quiz"
	transport "studybudy-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.PlanLoader = memory.NewStaticPlanLoader(samplePlans())
	if pool != nil {
		loader = pgstore.NewPlanLoader(pool)
	}

	planTTL := config.TTLDuration(cfg.Plan.TTL, 10*time.Minute)
	var plans quiz.PlanRepository
	if redisClient != nil {
		plans = redisinfra.NewPlanRepository(redisClient, loader, planTTL)
	} else {
		plans = memory.NewPlanRepository(loader, planTTL)
	}

	var attempts quiz.AttemptStore = memory.NewAttemptStore()
	if pool != nil {
		attempts = pgstore.NewAttemptStore(pool)
	}
	if redisClient != nil {
		attempts = redisinfra.NewAttemptCache(redisClient, attempts, redisTTL)
	}

	secret := cfg.Auth.Secret
	if secret == "" {
		secret = "studybudy-dev-secret"
		log.Printf("auth secret not configured; using insecure dev secret")
	}
	verifier := auth.NewJWTVerifier(secret)

	service := quiz.NewService(plans, attempts)
	api := transport.NewAPI(plans, attempts, verifier)
	wsHandler := transport.NewWSHandler(service, verifier)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	api.Register(mux)
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting studybudy quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// samplePlans provides a minimal demo plan; Postgres replaces this loader in production.
func samplePlans() map[string]domain.Plan {
	return map[string]domain.Plan{
		"plan-1": {
			ID:      "plan-1",
			Subject: "Mathematics",
			Level:   "Beginner",
			Summary: "Foundations of arithmetic and geometry.",
			Roadmap: []domain.RoadmapWeek{
				{Week: 1, Topic: "Arithmetic", Goal: "Master the four operations"},
				{Week: 2, Topic: "Geometry basics", Goal: "Recognize common shapes"},
			},
			Questions: []domain.QuizQuestion{
				{
					Prompt:  "What is 2 + 2?",
					Options: []string{"3", "4", "5"},
					Answer:  "B",
				},
				{
					Prompt:  "How many sides does a triangle have?",
					Options: []string{"3", "4"},
					Answer:  "A",
				},
			},
		},
	}
}
