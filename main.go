package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"ytstat/internal/di"
	"ytstat/internal/structures"
)

func main() {
	// YOUTUBE_API_KEY_N may live in a local .env; real environment wins.
	_ = godotenv.Load()

	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the YAML config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "also log to the console")
	flag.StringVar(&flags.RunOnce, "once", "", "run a single collection cycle in the given mode and exit")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "ytstat: %s\n", err)
		os.Exit(1)
	}
}
