// Package main starts the yard console process lifecycle.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	admincmd "github.com/louisbranch/yardconsole/internal/cmd/admin"
	entrypoint "github.com/louisbranch/yardconsole/internal/platform/cmd"
)

func main() {
	log.SetPrefix(entrypoint.LogPrefix(entrypoint.ServiceAdmin))
	cfg, err := admincmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	ctx, stop := entrypoint.SignalContext(context.Background())
	defer stop()

	if err := admincmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
