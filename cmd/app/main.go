package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"brokersim/configs"
	"brokersim/internal/database"
	delivery "brokersim/internal/delivery/http"
	"brokersim/internal/infra"
	"brokersim/internal/repository"
	"brokersim/internal/service"
	"brokersim/internal/usecase"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Load configuration
	cfg := configs.Load()

	startingCash, err := decimal.NewFromString(cfg.Trading.StartingCash)
	if err != nil {
		log.Fatalf("Invalid STARTING_CASH %q: %v", cfg.Trading.StartingCash, err)
	}

	ctx := context.Background()

	// Initialize database
	db, err := infra.NewDatabase(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)

	// Initialize services
	oracle := service.NewQuoteService(cfg.Quotes.BaseURL)
	portfolioService := service.NewPortfolioService(ledgerRepo)
	valuationService := service.NewValuationService(portfolioService, ledgerRepo, oracle)
	historyService := service.NewHistoryService(ledgerRepo)
	auditService := service.NewAuditService(userRepo, ledgerRepo)

	// Initialize trade executor
	executor := usecase.NewTradeExecutor(ledgerRepo, portfolioService, oracle)

	// Initialize ledger audit scheduler
	scheduler := infra.NewScheduler(auditService)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start audit scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Initialize HTTP server
	e := echo.New()
	e.HideBanner = true

	delivery.SetupRoutes(e, &delivery.RouterConfig{
		AuthHandler:      delivery.NewAuthHandler(userRepo, startingCash),
		PortfolioHandler: delivery.NewPortfolioHandler(valuationService, historyService, executor, oracle),
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Brokersim starting on %s", addr)
	log.Printf("Environment: %s", cfg.Server.Env)
	log.Printf("Starting cash for new users: $%s", startingCash.StringFixed(2))

	// Run server in goroutine
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("[OK] Server exited gracefully")
}
