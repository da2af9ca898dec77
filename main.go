package main

import (
	"os"

	"go-coordinator/core/logger"
	"go-coordinator/core/server"
)

func main() {
	if err := server.Run(); err != nil {
		logger.Error("Server:Run:Error", "error", err)
		os.Exit(1)
	}
}
