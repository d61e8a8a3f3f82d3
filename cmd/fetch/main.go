package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"gridwatch/src/config"
	"gridwatch/src/data_source/entsoe"
	"gridwatch/src/logger"
	"gridwatch/src/models"
	"gridwatch/src/network"
)

// fetch prints one zone's day-ahead prices or generation forecast as JSON
// without touching the store. Useful to check credentials and zone codes.
func main() {
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	zoneFlag := flag.String("zone", "SE3", "bidding zone, e.g. SE3 or SE-SE3")
	dateFlag := flag.String("date", "", "UTC day as YYYY-MM-DD (default today)")
	kind := flag.String("kind", "prices", "prices or generation")
	flag.Parse()

	conf, err := config.NewConfig(*configPath)
	if err != nil {
		logger.NewLogger(nil, "fetch").Critical("Error loading config: %v", err)
	}
	appLogger := logger.NewLoggerWithOutput(conf, "fetch", os.Stderr)

	zone, err := models.ParseZoneCode(*zoneFlag)
	if err != nil {
		appLogger.Critical("%v", err)
	}

	ref := time.Now().UTC()
	if *dateFlag != "" {
		if ref, err = time.Parse("2006-01-02", *dateFlag); err != nil {
			appLogger.Critical("Invalid date %q: %v", *dateFlag, err)
		}
	}

	netMgr := network.NewAsyncNetworkManager(conf.MConfig, appLogger)
	client, err := entsoe.NewClient(conf.MConfig, netMgr, appLogger)
	if err != nil {
		appLogger.Critical("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*conf.Network.RequestTimeoutDuration()+5*time.Second)
	defer cancel()

	var out interface{}
	switch *kind {
	case "prices":
		out = client.FetchDayAheadPrices(ctx, zone, ref)
	case "generation":
		points, err := client.FetchGenerationForecast(ctx, zone, ref)
		if err != nil {
			appLogger.Critical("Generation forecast failed: %v", err)
		}
		out = points
	default:
		appLogger.Critical("Unknown kind %q (want prices or generation)", *kind)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		appLogger.Critical("Encode: %v", err)
	}
}
