package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"gridwatch/src/config"
	"gridwatch/src/logger"
	"gridwatch/src/pipeline"
	"gridwatch/src/server"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single pass over all zones and exit")
	flag.Parse()

	// Load config from YAML file, .env and environment
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		logger.NewLogger(nil, "gridwatch").Critical("Error loading config: %v", err)
	}

	// Setup logger
	appLogger := logger.NewLogger(conf, conf.Name)

	// Setup Components
	db, err := setupDatabase(conf.MConfig)
	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
	}
	defer db.Close()

	networkManager := setupNetwork(conf.MConfig)

	source, err := setupSource(conf.MConfig, networkManager)
	if err != nil {
		appLogger.Critical("Failed to init data source: %v", err)
	}

	pipe := pipeline.NewPipeline(conf.MConfig, conf.ZoneCodes(), source, db, logger.NewLogger(conf, "Pipeline"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// One-shot mode: no server, exit status reflects storage failures
	if *once {
		scheduler := pipeline.NewScheduler(conf.MConfig, pipe, db, nil, appLogger)
		report, err := scheduler.RunOnce(ctx)
		for zone, price := range report.ZonePrices {
			appLogger.Info("%s: %.2f €/MWh", zone, price)
		}
		if err != nil {
			db.Close()
			os.Exit(1)
		}
		return
	}

	// Start Server
	srv := server.NewFastAPIServer(conf.MConfig, db, logger.NewLogger(conf, "Server"))
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
			stop()
		}
	}()

	// Main Loop
	scheduler := pipeline.NewScheduler(conf.MConfig, pipe, db, srv, logger.NewLogger(conf, "Scheduler"))
	if err := scheduler.Start(ctx); err != nil {
		appLogger.Critical("Failed to start scheduler: %v", err)
	}

	<-ctx.Done()
	appLogger.Info("Shutting down...")

	scheduler.Stop()
	if err := srv.Stop(); err != nil {
		appLogger.Warning("Server shutdown: %v", err)
	}
	appLogger.Info("Shutdown complete.")
}
