package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gamertech/tradein-backend/internal/infra/database"
	"github.com/gamertech/tradein-backend/internal/infra/http/handlers"
	appmiddleware "github.com/gamertech/tradein-backend/internal/infra/http/middleware"
	"github.com/gamertech/tradein-backend/internal/infra/pricing"
	"github.com/gamertech/tradein-backend/internal/infra/queue"
	"github.com/gamertech/tradein-backend/internal/usecase"
)

func main() {
	godotenv.Load()

	// Price catalog. A broken sheet aborts startup — a quoting service
	// with no prices has nothing to serve.
	csvText, err := pricing.SourceFromEnv()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	catalog, err := pricing.Load(csvText)
	if err != nil {
		log.Fatalf("❌ Price sheet rejected: %v", err)
	}
	prices := pricing.NewStore(catalog)
	log.Printf("✅ Loaded pricing rows: %d", prices.Size())

	// Lead storage. Degraded, not fatal: quoting still works if the lead
	// store is down, captures just land on the queue until an instance
	// with a database drains them.
	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Printf("⚠️ Database unavailable, lead persistence degraded: %v", err)
		db = nil
	} else {
		defer db.Close()
		if err := database.InitLeadSchema(context.Background(), db); err != nil {
			log.Printf("❌ Lead table init failed: %v", err)
		} else {
			log.Println("✅ Lead table ready (gtq_leads)")
		}
	}

	rabbitMQ, err := queue.NewRabbitMQ(
		envOr("RABBITMQ_USER", "guest"),
		envOr("RABBITMQ_PASS", "guest"),
		envOr("RABBITMQ_HOST", "localhost"),
		envOr("RABBITMQ_PORT", "5672"),
	)
	if err != nil {
		log.Fatalf("❌ RabbitMQ connection failed: %v", err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)

	// Worker: drains the lead queue and does the actual upserts, so the
	// HTTP handlers can acknowledge before anything touches Postgres.
	// Without a database the queue just buffers the captures.
	if db != nil {
		leadWorker := queue.NewWorker(rabbitMQ.Ch, database.NewLeadRepository(db))
		go leadWorker.Start(queue.QueueName)
	} else {
		log.Println("⚠️ Lead queue worker not started: no database")
	}

	// UseCases
	recordLeadUC := usecase.NewRecordLeadUseCase(producer)

	// Handlers
	quoteHandler := handlers.NewQuoteHandler(prices)
	leadHandler := handlers.NewLeadHandler(recordLeadUC)
	adminHandler := handlers.NewAdminHandler(prices, pricing.SourceFromEnv, os.Getenv("GTQ_ADMIN_KEY"))
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn, prices)

	// Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(appmiddleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
	}))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("GTQ backend is running ✅"))
	})
	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/quote", quoteHandler.Handle)
	r.Post("/api/leads/quote", leadHandler.HandleBrowsing)
	r.Post("/api/leads/lock", leadHandler.HandleLockIn)
	r.Post("/admin/prices/reload", adminHandler.HandleReloadPrices)

	port := ":" + envOr("PORT", "8790")
	log.Printf("🔥 GTQ backend running on port %s", port)
	http.ListenAndServe(port, r)
}

func allowedOrigins() []string {
	raw := envOr("GTQ_ALLOWED_ORIGINS", "https://gamertech.ca,https://www.gamertech.ca")

	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
