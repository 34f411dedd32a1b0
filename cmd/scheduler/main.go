package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/ExpertosTI/presta-pro-sub000/internal/app"
	"github.com/ExpertosTI/presta-pro-sub000/internal/config"
	"github.com/ExpertosTI/presta-pro-sub000/internal/logging"
)

const jobTimeout = 5 * time.Minute

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.Logging)
	logger.Info("Starting lending scheduler...")

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize application: %v", err)
	}
	defer application.Close()

	// Initialize cron scheduler
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(cfg.GetLocation()),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)

	// Schedule tasks
	if err := setupCronJobs(c, cfg, application, logger); err != nil {
		logger.Fatalf("Failed to schedule jobs: %v", err)
	}

	// Start the scheduler
	c.Start()
	logger.Info("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down scheduler...")
	<-c.Stop().Done()
	logger.Info("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, application *app.App, logger *logrus.Logger) error {
	// Flags delinquent loans and publishes loan.delinquent events
	if _, err := c.AddFunc(cfg.Scheduler.DelinquencySpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		flagged, err := application.Service.SweepDelinquencies(ctx)
		if err != nil {
			logger.WithError(err).Error("delinquency sweep failed")
			return
		}
		logger.WithField("flagged", flagged).Info("delinquency sweep finished")
	}); err != nil {
		return err
	}

	// Fills the outstanding cache before collectors start their routes
	if _, err := c.AddFunc(cfg.Scheduler.RouteWarmupSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		warmed, err := application.Service.WarmOutstandingCache(ctx)
		if err != nil {
			logger.WithError(err).Error("outstanding cache warmup failed")
			return
		}
		logger.WithField("loans", warmed).Info("outstanding cache warmed")
	}); err != nil {
		return err
	}

	logger.Info("Cron jobs scheduled successfully")
	return nil
}
