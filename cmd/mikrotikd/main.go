package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"mikrotik-manager/config"
	"mikrotik-manager/internal/api"
	"mikrotik-manager/internal/auth"
	"mikrotik-manager/internal/billing"
	"mikrotik-manager/internal/db"
	"mikrotik-manager/internal/devices"
	"mikrotik-manager/internal/monitor"
	"mikrotik-manager/internal/notification"
	"mikrotik-manager/internal/store"
	"mikrotik-manager/internal/view"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var logger = log.New(os.Stdout, "mikrotikd ", log.LstdFlags)

var rootCmd = &cobra.Command{
	Use:   "mikrotikd",
	Short: "Mikrotik router manager backend",
	Long:  "HTTP API for managing Mikrotik routers, subscriptions and invoices, with a background reachability monitor",
	// Default to serve command if no subcommand provided
	Run: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and device monitor",
	Run:   runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	Run:   runMigrate,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mikrotikd %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadConfig reads .env and then the YAML file named by CONFIG_PATH.
func loadConfig() *config.Config {
	if err := godotenv.Load(); err != nil {
		logger.Println("Warning: .env file not found, using environment variables")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)
	return cfg
}

func runMigrate(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	gormDB, err := db.Open(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to open database: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}
	logger.Println("database schema is up to date")
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	gateway := auth.NewGateway(appStore, cfg.Auth)
	deviceSvc := devices.NewService(appStore)
	billingSvc := billing.NewService(appStore)

	views := view.NewRegistry(deviceSvc, billingSvc, time.Duration(cfg.Server.ViewStateTTLMinutes)*time.Minute)
	gateway.SubscribeToAuthChanges(views.HandleAuthEvent)

	var webpushOptions *webpush.Options
	var alerts monitor.Dispatcher
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions)
		pool.Start(ctx)
		alerts = pool
	} else {
		logger.Println("VAPID keys are not configured; offline alerts are disabled")
	}

	monitorSvc := monitor.NewService(cfg.Monitor, appStore, deviceSvc, alerts)
	go monitorSvc.Run(ctx)

	handler := api.NewHandler(api.Deps{
		Store:   appStore,
		Gateway: gateway,
		Devices: deviceSvc,
		Billing: billingSvc,
		Views:   views,
		Plans:   cfg.Plans,
		WebPush: webpushOptions,
	})
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewRouter(handler, cfg.Server),
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
