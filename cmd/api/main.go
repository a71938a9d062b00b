package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pasarhub/marketplace-orders/internal/config"
	"github.com/pasarhub/marketplace-orders/internal/httpx"
	kafkax "github.com/pasarhub/marketplace-orders/internal/kafka"
	"github.com/pasarhub/marketplace-orders/internal/market"
	"github.com/pasarhub/marketplace-orders/internal/metrics"
	"github.com/pasarhub/marketplace-orders/internal/postgres"
	"github.com/pasarhub/marketplace-orders/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	pCreated := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrdersCreated, 1024)
	pCreated.Start(ctx)
	pCancelled := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrderCancelled, 1024)
	pCancelled.Start(ctx)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrderStatus, 1024)
	pStatus.Start(ctx)

	repo := &market.Repo{DB: db}
	m := metrics.NewServerMetrics("api")
	router := httpx.NewRouter(m)

	oh := &httpx.OrdersHandler{
		Repo:       repo,
		Redis:      rdb,
		Created:    pCreated,
		Cancelled:  pCancelled,
		Service:    cfg.ServiceName,
		Production: cfg.Production(),
	}
	oh.Register(router)

	vh := &httpx.VendorOrdersHandler{
		Repo:       repo,
		Status:     pStatus,
		Cancelled:  pCancelled,
		Service:    cfg.ServiceName,
		Production: cfg.Production(),
	}
	vh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	// flush queued events, then stop the producer loops
	pCreated.Close()
	pCancelled.Close()
	pStatus.Close()
	cancel()
	pCreated.WaitClosed()
	pCancelled.WaitClosed()
	pStatus.WaitClosed()
}
