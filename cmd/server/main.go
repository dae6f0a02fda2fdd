/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the canteen ordering backend. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load environment configuration (.env honored)
  2. Parse command-line flags (flags override environment)
  3. Open the selected store (sqlite | mongo | memory)
  4. Wire engine, notifier, auth, image hosting
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default from PORT, else 8080)
  -store   Store driver: sqlite, mongo, or memory
  -db      SQLite database path (use ":memory:" for throwaway runs)

ENVIRONMENT:
  JWT_SECRET     (required) session token signing secret
  PORT           HTTP port
  LOG_LEVEL      debug | info | warn | error
  STORE_DRIVER   sqlite | mongo | memory
  SQLITE_PATH    SQLite database path
  MONGO_URI      MongoDB connection string (required for mongo driver)
  MONGO_DB       MongoDB database name
  IMGBB_API_KEY  image hosting key; uploads disabled when empty

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close store
  4. Exit

SEE ALSO:
  - api/server.go: router configuration
  - config/config.go: environment loading
  - store/sqlite, store/mongo: store implementations
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/canteen-engine/api"
	"github.com/warp/canteen-engine/auth"
	"github.com/warp/canteen-engine/canteen"
	memstore "github.com/warp/canteen-engine/canteen/store"
	"github.com/warp/canteen-engine/config"
	"github.com/warp/canteen-engine/imagehost"
	"github.com/warp/canteen-engine/logging"
	mongostore "github.com/warp/canteen-engine/store/mongo"
	"github.com/warp/canteen-engine/store/sqlite"
	"github.com/warp/canteen-engine/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	port := flag.Int("port", cfg.Port, "HTTP server port")
	driver := flag.String("store", cfg.StoreDriver, "store driver: sqlite, mongo, or memory")
	dbPath := flag.String("db", cfg.SQLitePath, "SQLite database path")
	flag.Parse()

	log := logging.New(cfg.LogLevel)

	// Store selection
	var store canteen.TxStore
	var closeStore func()
	switch *driver {
	case "sqlite":
		s, err := sqlite.New(*dbPath)
		if err != nil {
			log.Error("failed to open sqlite store", "path", *dbPath, "error", err)
			os.Exit(1)
		}
		store = s
		closeStore = func() { s.Close() }
	case "mongo":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		s, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
		cancel()
		if err != nil {
			log.Error("failed to connect to mongodb", "error", err)
			os.Exit(1)
		}
		store = s
		closeStore = func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.Close(ctx)
		}
	case "memory":
		store = memstore.NewMemory()
		closeStore = func() {}
	default:
		log.Error("unknown store driver", "driver", *driver)
		os.Exit(1)
	}
	defer closeStore()

	// Wiring
	notifier := canteen.NewStoreNotifier(store, log)
	engine := wallet.NewEngine(store, notifier, log)
	tokens := auth.NewTokens(cfg.JWTSecret)
	images := imagehost.New(cfg.ImgBBKey)

	handler := api.NewHandler(store, engine, tokens, images, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", *port, "store", *driver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
