package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bounty-board/chain"
	"bounty-board/config"
	"bounty-board/handlers"
	"bounty-board/logger"
	"bounty-board/metrics"
	"bounty-board/models"
	"bounty-board/pricing"
	"bounty-board/services"
	"bounty-board/settlement"
	"bounty-board/verification"
	"bounty-board/workers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading environment variables directly")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("configuration error: ", err)
	}

	zlog := logger.NewZapLogger(cfg.LogLevel)
	recorder := metrics.NewPrometheusRecorder()

	// TranslateError surfaces the funding-tx unique index violation as
	// gorm.ErrDuplicatedKey, which the gate maps to a 409.
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}

	if err := db.AutoMigrate(
		&models.Bounty{},
		&models.Submission{},
		&models.Profile{},
		&models.Reconciliation{},
	); err != nil {
		log.Fatal("failed to migrate database: ", err)
	}

	store := services.NewGormStore(db)

	rpc, err := chain.Dial(cfg.RPCURL)
	if err != nil {
		log.Fatal("failed to connect to chain RPC: ", err)
	}
	defer rpc.Close()

	calc, err := pricing.NewCalculator(cfg)
	if err != nil {
		log.Fatal("pricing configuration error: ", err)
	}

	verifier := verification.NewVerifier(rpc, zlog, recorder, cfg.PayTimeout)

	if cfg.PlatformPrivateKey == "" {
		log.Fatal("PLATFORM_WALLET_PRIVATE_KEY environment variable not set")
	}
	wallet, err := chain.NewWallet(cfg.PlatformPrivateKey, cfg.ChainID, rpc)
	if err != nil {
		log.Fatal("custodial wallet error: ", err)
	}

	executor := settlement.NewExecutor(store, wallet, zlog, recorder)

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, " + handlers.PaymentHeader,
	}))

	h := handlers.New(store, calc, verifier, executor, zlog)
	handlers.SetupRoutes(app, h)

	reconciler := workers.NewReconciler(store, zlog)
	sched, err := reconciler.Start(cfg.ReconcileInterval)
	if err != nil {
		log.Fatal("failed to start reconciliation worker: ", err)
	}
	defer func() { _ = sched.Shutdown() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			log.Printf("server error: %v", err)
		}
	}()

	zlog.Info("bounty board running", map[string]any{
		"addr":    cfg.ListenAddr,
		"network": cfg.Network,
		"wallet":  wallet.Address().Hex(),
	})

	<-ctx.Done()
	log.Println("shutting down server...")
	_ = app.Shutdown()
}
