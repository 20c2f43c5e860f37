// main is the entry point for the drawbias CLI.
package main

import (
	"github.com/huangsam/drawbias/cmd"
	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/internal/iocache"
)

func main() {
	defer iocache.CloseStores()
	cmd.SetStoreManager(iocache.Manager)
	if err := cmd.Execute(); err != nil {
		iocache.CloseStores()
		contract.LogFatal("Error starting CLI", err)
	}
}
