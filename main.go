// main is the entry point of the benchboard CLI.
package main

import (
	"errors"
	"io/fs"

	"github.com/benchboard/benchboard/cmd"
	"github.com/benchboard/benchboard/internal/contract"
	"github.com/benchboard/benchboard/internal/iocache"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; values there feed the BENCHBOARD_ env lookup
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		contract.LogWarn("Failed to load .env file", err)
	}

	err := cmd.Execute()
	iocache.CloseStores()
	if err != nil {
		contract.LogFatal("benchboard failed", err)
	}
}
