// ABOUTME: Entry point for the HippoLingua audio server
// ABOUTME: Loads configuration, opens storage and serves the HTTP API
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hippolingua/hippolingua/internal/blob"
	"github.com/hippolingua/hippolingua/internal/config"
	"github.com/hippolingua/hippolingua/internal/extract"
	"github.com/hippolingua/hippolingua/internal/logging"
	"github.com/hippolingua/hippolingua/internal/server"
	"github.com/hippolingua/hippolingua/internal/version"
	"github.com/hippolingua/hippolingua/pkg/audio/codec"
)

type flags struct {
	configPath string
	port       int
	name       string
	logFile    string
	debug      bool
	noMDNS     bool
}

func main() {
	var f flags

	cmd := &cobra.Command{
		Use:           "hippolingua-server",
		Short:         "Serve HippoLingua audio segments over HTTP",
		Version:       version.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, f)
		},
	}

	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "config file (YAML)")
	cmd.Flags().IntVar(&f.port, "port", 0, "HTTP port (overrides config)")
	cmd.Flags().StringVar(&f.name, "name", "", "server name advertised over mDNS (overrides config)")
	cmd.Flags().StringVar(&f.logFile, "log-file", "", "rotated log file (overrides config)")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "enable debug logging")
	cmd.Flags().BoolVar(&f.noMDNS, "no-mdns", false, "disable mDNS advertisement")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, f flags) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = f.port
	}
	if f.name != "" {
		cfg.Server.Name = f.name
	}
	if f.logFile != "" {
		cfg.Log.File = f.logFile
	}
	if f.debug {
		cfg.Debug = true
	}
	if f.noMDNS {
		cfg.Server.EnableMDNS = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.Init(cfg.Logging())
	if err != nil {
		return err
	}
	defer logging.Close()

	log.Info("starting HippoLingua server",
		slog.String("version", version.Version),
		slog.String("addr", cfg.Addr()),
		slog.String("backend", cfg.Storage.Backend),
		slog.Bool("cache", cfg.Cache.Enabled))
	if cfg.Debug {
		log.Debug("debug logging enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, err := blob.Open(ctx, cfg.BlobOptions())
	if err != nil {
		return err
	}
	defer func() {
		if err := blob.Close(src); err != nil {
			log.Warn("failed to close storage", slog.Any("error", err))
		}
	}()

	ex, err := extract.New(src, codec.New(), cfg.Extractor(), extract.WithLogger(log))
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Name:           cfg.Server.Name,
		EnableMDNS:     cfg.Server.EnableMDNS,
		Debug:          cfg.Debug,
		RequestTimeout: cfg.Server.RequestTimeout,
	}, src, ex)

	go func() {
		<-ctx.Done()
		log.Info("received shutdown signal")
		srv.Stop()
	}()

	return srv.Start()
}
