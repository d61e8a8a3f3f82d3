package main

import (
	"gridwatch/src/data_source/entsoe"
	"gridwatch/src/interfaces"
	"gridwatch/src/logger"
	"gridwatch/src/models"
	"gridwatch/src/network"
	"gridwatch/src/storage"
)

// -----------------------------------------------------------------------------

// setupDatabase opens and migrates the store named by storage.db_type
func setupDatabase(config *models.MConfig) (interfaces.IPriceStore, error) {
	dbLogger := logger.NewLogger(config, "Storage")

	db, err := storage.NewStore(config, dbLogger)
	if err != nil {
		return nil, err
	}
	if err := db.Initialize(); err != nil {
		return nil, err
	}
	return db, nil
}

// -----------------------------------------------------------------------------

// setupNetwork initializes the network manager
func setupNetwork(config *models.MConfig) interfaces.INetworkManager {
	networkLogger := logger.NewLogger(config, "NetworkManager")
	return network.NewAsyncNetworkManager(config, networkLogger)
}

// -----------------------------------------------------------------------------

// setupSource builds the market-data client; a missing credential fails here,
// before any request is made.
func setupSource(config *models.MConfig, networkManager interfaces.INetworkManager) (*entsoe.Client, error) {
	sourceLogger := logger.NewLogger(config, "Entsoe")
	return entsoe.NewClient(config, networkManager, sourceLogger)
}
