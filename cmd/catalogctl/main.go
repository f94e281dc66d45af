package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/assetcatalog/internal/client/cli"
	"github.com/dmitrijs2005/assetcatalog/internal/client/config"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg, os.Stdout)

	if err != nil {
		log.Fatalf("%v", err)
	}

	err = app.Run(ctx, cli.CommandArgs(os.Args[1:]))
	_ = app.Close()

	if err != nil {
		if errors.Is(err, cli.ErrUsage) {
			log.Printf("%v", err)
			os.Exit(2)
		}
		log.Fatalf("%v", err)
	}

}
