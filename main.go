// Package main is the entry point for the courseload CLI.
package main

import (
	"github.com/huangsam/courseload/cmd"
	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/internal/iocache"
)

func main() {
	defer iocache.CloseStores()

	cmd.SetStoreManager(iocache.Manager)

	if err := cmd.Execute(); err != nil {
		iocache.CloseStores()
		contract.LogFatal("Error starting CLI", err)
	}

	if err := cmd.StopProfiling(); err != nil {
		contract.LogWarn("Failed to stop profiling", err)
	}
}
