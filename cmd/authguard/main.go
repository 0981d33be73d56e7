package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/authguard/internal/cli"
	"github.com/dmitrijs2005/authguard/internal/config"
	"github.com/dmitrijs2005/authguard/internal/server"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}
	defer app.Close()

	if err := app.Startup(ctx); err != nil {
		log.Printf("startup error: %v", err)
		return
	}

	cli.NewApp(app).Run(ctx)
}
