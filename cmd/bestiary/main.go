// Package main is the entry point for the bestiary server and CLI
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/bestiary/internal/config"
)

var (
	cfg *config.Config

	upstreamURL     string
	upstreamTimeout time.Duration
	maxConcurrency  int
	logLevel        string
)

var rootCmd = &cobra.Command{
	Use:   "bestiary",
	Short: "D&D 5e monster compendium",
	Long: `Bestiary loads every monster from the D&D 5e SRD API, then serves filtered views,
stat blocks and cursor navigation over HTTP or straight to the terminal.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&upstreamURL, "upstream-url", "", "D&D 5e API base URL (env BESTIARY_UPSTREAM_URL)")
	flags.DurationVar(&upstreamTimeout, "upstream-timeout", 0, "per request upstream timeout (env BESTIARY_UPSTREAM_TIMEOUT)")
	flags.IntVar(&maxConcurrency, "max-concurrency", 0, "max in-flight detail fetches, 0 for unbounded (env BESTIARY_MAX_CONCURRENCY)")
	flags.StringVar(&logLevel, "log-level", "", "debug, info, warn or error (env BESTIARY_LOG_LEVEL)")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(monstersCmd)
}

// loadConfig reads the environment, then lets explicitly set flags win
func loadConfig(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("upstream-url") {
		loaded.UpstreamURL = upstreamURL
	}
	if flags.Changed("upstream-timeout") {
		loaded.UpstreamTimeout = upstreamTimeout
	}
	if flags.Changed("max-concurrency") {
		loaded.MaxConcurrency = maxConcurrency
	}
	if flags.Changed("log-level") {
		loaded.LogLevel = logLevel
	}
	if flags.Changed("http-addr") {
		loaded.HTTPAddr = httpAddr
	}
	if flags.Changed("port") {
		loaded.GRPCPort = grpcPort
	}
	if flags.Changed("redis-addr") {
		loaded.RedisAddr = redisAddr
	}
	if flags.Changed("session-ttl") {
		loaded.SessionTTL = sessionTTL
	}

	if err := loaded.Validate(); err != nil {
		return err
	}

	cfg = loaded
	return nil
}
