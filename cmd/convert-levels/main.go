// Package main converts a directory of XML level files to YAML.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cory-johannsen/periphery/internal/config"
	"github.com/cory-johannsen/periphery/internal/importer"
	"github.com/cory-johannsen/periphery/internal/observability"
)

func main() {
	src := flag.String("src", "content/levels", "directory of XML level files, relative to the working directory")
	out := flag.String("out", "", "output directory for YAML level files (required)")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		os.Exit(1)
	}

	logger, err := observability.NewLogger(config.LoggingConfig{Level: *logLevel, Format: "console"})
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	written, err := importer.New(os.DirFS("."), logger).Run(*src, *out)
	if err != nil {
		log.Fatalf("converting levels: %v", err)
	}
	fmt.Fprintf(os.Stdout, "converted %d level(s) into %s\n", len(written), *out)
}
