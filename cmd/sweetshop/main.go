package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sweetshop/sweetshop-api/internal/cli"
)

// @title                       Sweet Shop API
// @version                     1.0
// @description                 Inventory service for a sweet shop: catalogue, purchases and restocking.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "sweetshop: %v\n", err)
		stop()
		os.Exit(1)
	}
}
