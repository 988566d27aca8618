// Package main starts the dev upstream REST process lifecycle.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	devapicmd "github.com/louisbranch/yardconsole/internal/cmd/devapi"
	entrypoint "github.com/louisbranch/yardconsole/internal/platform/cmd"
)

func main() {
	log.SetPrefix(entrypoint.LogPrefix(entrypoint.ServiceDevAPI))
	cfg, err := devapicmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	ctx, stop := entrypoint.SignalContext(context.Background())
	defer stop()

	if err := devapicmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
