// cmd/rough/main.go
package main

import (
	"context"
	"os"

	"rough/internal/logger"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		logger.New().Error("operation failed", logger.Error(err))
		os.Exit(1)
	}
}
