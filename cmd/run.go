package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"coffer/bot"
	"coffer/config"
	"coffer/database"
	"coffer/events"
	"coffer/repository"
	"coffer/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting coffer bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	log.Println("Initializing event bus...")
	eventBus := events.NewBus()
	log.Println("Event bus initialized successfully")

	// Initialize unit of work factory
	log.Println("Initializing unit of work factory...")
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	log.Println("Unit of work factory initialized successfully")

	// Initialize services
	log.Println("Initializing services...")
	currencyService := service.NewCurrencyService(uowFactory)
	ledgerService := service.NewLedgerService(uowFactory)
	rewardService := service.NewRewardService(uowFactory, cfg.WorkMinReward, cfg.WorkMaxReward, nil)
	characterService := service.NewCharacterService(uowFactory)
	guildSettingsService := service.NewGuildSettingsService(uowFactory)
	backupService := service.NewBackupService(uowFactory)
	log.Println("Services initialized successfully")

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	botConfig := bot.Config{
		Token: cfg.DiscordToken,
	}
	discordBot, err := bot.New(botConfig, currencyService, ledgerService, rewardService, characterService, guildSettingsService, backupService, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Start background workers
	stopDigest := discordBot.StartDailyDigestWorker(cfg.DigestHour)

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")

	// Stop background workers before tearing down the session
	stopDigest()

	// Close Discord bot connection
	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
