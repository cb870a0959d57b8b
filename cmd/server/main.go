package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moneybag/config"
	"moneybag/internal/database"
	"moneybag/internal/router"
	"moneybag/pkg/moneybag"
)

func main() {
	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	httpClient := moneybag.NewHTTPClient(cfg.Moneybag.Timeout, cfg.Moneybag.MaxRetries, cfg.Moneybag.Debug)
	gateway, err := moneybag.NewClient(cfg.Moneybag.APIKey, moneybag.Environment(cfg.Moneybag.Environment), httpClient)
	if err != nil {
		log.Fatalf("moneybag: %v", err)
	}
	log.Printf("[Moneybag] gateway client ready, env=%s", cfg.Moneybag.Environment)

	engine := router.Setup(cfg, db, gateway)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	log.Println("server stopped")
}
