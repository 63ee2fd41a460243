package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/craftline/pricedeskgo/internal/cache"
	"github.com/craftline/pricedeskgo/internal/config"
	"github.com/craftline/pricedeskgo/internal/database"
	"github.com/craftline/pricedeskgo/internal/handlers"
	"github.com/craftline/pricedeskgo/internal/models"
	"github.com/craftline/pricedeskgo/internal/storage"
	"github.com/craftline/pricedeskgo/internal/store"
	syncpkg "github.com/craftline/pricedeskgo/internal/sync"
	"github.com/craftline/pricedeskgo/internal/utils"
	"github.com/craftline/pricedeskgo/internal/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("🔐 Resolution context: %s", cfg.Context)

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-Migrate Schema
	log.Println("🚀 Synchronizing database schema...")
	err = db.AutoMigrate(
		&models.UserAuth{},
		&models.Document{},
		&models.KVEntry{},
		&models.SyncMetadata{},
	)
	if err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	// 4. Build the sync engine: stores, cache, retry, resolver, orchestrator
	syncCfg := config.LoadSyncConfig()

	primary := store.NewGormStore(db)
	snapshot, err := store.NewSnapshotStore(cfg.SnapshotDir)
	if err != nil {
		log.Fatalf("Failed to open snapshot store: %v", err)
	}

	var fallback store.Datastore
	if syncCfg.FallbackURL != "" {
		fallback = store.NewRESTClient(
			syncCfg.FallbackURL,
			os.Getenv("FALLBACK_AUTH_TOKEN"),
			time.Duration(syncCfg.FallbackTimeoutSec)*time.Second,
		)
		log.Printf("🌐 REST fallback configured: %s", syncCfg.FallbackURL)
	}

	dataCache := cache.New(cache.WithTimeout(syncCfg.CacheTimeout()))
	retry := &syncpkg.Executor{
		MaxAttempts: syncCfg.MaxAttempts,
		BaseDelay:   syncCfg.BaseDelay(),
		MaxDelay:    syncCfg.MaxDelay(),
	}

	resolver := syncpkg.NewResolver(syncpkg.ResolverDeps{
		Mode:           cfg.Context,
		Cache:          dataCache,
		Primary:        primary,
		Fallback:       fallback,
		Snapshot:       snapshot,
		SnapshotWriter: snapshot,
		Retry:          retry,
	})
	orch := syncpkg.NewOrchestrator(resolver, dataCache, syncCfg)

	// 5. Storage shim and instance identity
	shim := storage.New(store.NewGormKV(db), snapshot, retry)
	instanceID, err := utils.LoadOrGenerateInstanceID(context.Background(), shim)
	if err != nil {
		log.Printf("⚠️ Instance identity: %v", err)
	} else {
		log.Printf("🆔 Instance: %s", instanceID)
	}

	// 6. WebSocket hub, fed by collection change notifications
	hub := websocket.NewHub()
	go hub.Run()
	for _, name := range append(models.PrimaryCollections(), models.DerivedCollections()...) {
		orch.OnDataChange(name, func(n string, records []models.Record) {
			hub.NotifyDataChanged(n, len(records))
		})
	}

	// 7. Initial data load. A failed critical load still starts the server;
	// reads return empty until a refresh succeeds.
	log.Println("🔄 Loading collections...")
	if err := orch.LoadAll(context.Background()); err != nil {
		log.Printf("⚠️ Initial load: %v", err)
	}

	// 8. Set up HTTP router
	router := handlers.NewRouter(db, cfg, orch, resolver, shim, hub)

	// 9. Start server with graceful shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		log.Printf("🚀 Server starting on port %s [%s]\n", cfg.Port, cfg.Context)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	orch.Stop()

	log.Println("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
