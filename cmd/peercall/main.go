package main

import (
	"context"
	"log"
	"os"

	"github.com/mkoval-dev/peercall/internal/buildinfo"
	"github.com/mkoval-dev/peercall/internal/cli"
	"github.com/mkoval-dev/peercall/internal/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
