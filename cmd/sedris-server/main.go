package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/sedris-go/sedris/internal/infra/buildinfo"
	"github.com/sedris-go/sedris/internal/infra/confloader"
	"github.com/sedris-go/sedris/internal/infra/shutdown"
	"github.com/sedris-go/sedris/internal/keyspace"
	"github.com/sedris-go/sedris/internal/server/config"
	"github.com/sedris-go/sedris/internal/server/httpserver"
	"github.com/sedris-go/sedris/internal/server/redisserver"
	"github.com/sedris-go/sedris/internal/storage/snapshot"
	"github.com/sedris-go/sedris/internal/telemetry/logger"
	"github.com/sedris-go/sedris/internal/telemetry/metric"
)

func main() {
	app := &cli.App{
		Name:    "sedris-server",
		Usage:   "RESP-compatible in-memory key-value store",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.BuildTime),
		Flags:   flags(),
		Action:  run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var argErr argumentError
		if errors.As(err, &argErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// argumentError marks a startup error as an invalid-argument error (exit
// code 2) rather than a generic fatal startup error (exit code 1, §6).
type argumentError struct{ err error }

func (e argumentError) Error() string { return e.err.Error() }
func (e argumentError) Unwrap() error { return e.err }

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: config.DefaultPort, Usage: "TCP port to listen on"},
		&cli.StringFlag{Name: "host", Value: config.DefaultHost, Usage: "address to bind to"},
		&cli.StringFlag{Name: "loglevel", Aliases: []string{"l"}, Value: config.DefaultLogLevel, Usage: "log level (debug, info, warning, error)"},
		&cli.StringFlag{Name: "dbfilename", Value: config.DefaultDBFilename, Usage: "snapshot file name (stored in the config only; snapshots are written as snapshot-<timestamp>.snap in the storage data directory)"},
		&cli.IntFlag{Name: "databases", Value: config.DefaultDatabases, Usage: "number of databases"},
		&cli.StringFlag{Name: "config", Usage: "path to a YAML configuration file"},
		&cli.StringFlag{Name: "metrics-addr", Usage: "address to serve Prometheus metrics and health checks on (disabled if unset)"},
	}
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return argumentError{fmt.Errorf("load config: %w", err)}
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	ks := keyspace.New(cfg.Server.Databases)

	snapMgr, err := snapshot.NewManager(snapshot.Config{
		Dir:            cfg.Storage.DataDir,
		RetentionCount: cfg.Storage.RetentionCount,
		RetentionDays:  cfg.Storage.RetentionDays,
		Encryption: snapshot.EncryptionConfig{
			Key:        []byte(cfg.Security.EncryptionKey),
			Passphrase: []byte(cfg.Security.EncryptionPassphrase),
		},
	})
	if err != nil {
		return fmt.Errorf("init snapshot manager: %w", err)
	}

	if images, info, err := snapMgr.Load(); err != nil {
		if !errors.Is(err, snapshot.ErrNoSnapshots) {
			return fmt.Errorf("load snapshot: %w", err)
		}
		log.Info("no snapshot found, starting with an empty keyspace")
	} else {
		ks.Lock()
		ks.RestoreLocked(images)
		ks.Unlock()
		log.Info("restored snapshot", "id", info.ID, "entries", info.EntryCount)
	}

	metrics := metric.NewRegistry()
	metrics.AttachKeyspace(ks)

	srvCfg := redisserver.DefaultConfig()
	srvCfg.PlainAddress = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srvCfg.ReadTimeout = cfg.Server.ReadTimeout
	srvCfg.WriteTimeout = cfg.Server.WriteTimeout
	srvCfg.IdleTimeout = cfg.Server.IdleTimeout
	srvCfg.RateLimit = cfg.Server.RateLimit
	if cfg.Server.TLS.Enabled {
		cert, err := tls.LoadX509KeyPair(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile)
		if err != nil {
			return fmt.Errorf("load TLS certificate: %w", err)
		}
		srvCfg.TLSEnabled = true
		srvCfg.TLSAddress = cfg.Server.TLS.Addr
		srvCfg.TLSConfig = &tls.Config{Certificates: []tls.Certificate{cert}}
	}

	server := redisserver.New(srvCfg, ks, log)
	server.Metrics = metrics

	doSave := func() error {
		ks.Lock()
		images := ks.CloneLocked()
		ks.Unlock()
		_, err := snapMgr.Create(images)
		if err == nil {
			server.ResetDirty()
		}
		return err
	}
	server.SaveFunc = doSave
	server.BGSaveFunc = func() {
		go func() {
			if err := doSave(); err != nil {
				log.Error("background save failed", "error", err)
			}
		}()
	}
	server.OnShutdownCommand = func() {
		if err := doSave(); err != nil {
			log.Error("shutdown save failed", "error", err)
		}
	}

	reaperCtx, cancelReaper := context.WithCancel(context.Background())
	reaper := keyspace.NewReaper(ks, keyspace.DefaultReaperConfig(), func(db int, key string) {
		server.IncrDirty(1)
	})
	go reaper.Run(reaperCtx)

	savePoints := make([]redisserver.SavePoint, len(cfg.Storage.SavePoints))
	for i, p := range cfg.Storage.SavePoints {
		savePoints[i] = redisserver.SavePoint{IntervalSeconds: p.IntervalSeconds, MinChanges: p.MinChanges}
	}
	savePointCtx, cancelSavePoints := context.WithCancel(context.Background())
	go redisserver.RunSavePoints(savePointCtx, server, savePoints, time.Second)

	var metricsSrv *httpserver.Server
	if cfg.Server.MetricsAddr != "" {
		metricsSrv = httpserver.New(cfg.Server.MetricsAddr, httpserver.NewMetricsHandler(metrics.Handler()))
	}

	shutdownHandler := shutdown.NewHandler(30 * time.Second)

	if metricsSrv != nil {
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down metrics server")
			return metricsSrv.Shutdown(ctx)
		})
	}
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("saving final snapshot")
		return doSave()
	})
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		cancelReaper()
		cancelSavePoints()
		log.Info("shutting down RESP server")
		return server.Shutdown(ctx)
	})

	ctx := context.Background()
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("start redis server: %w", err)
	}

	if metricsSrv != nil {
		go func() {
			log.Info("metrics server listening", "addr", cfg.Server.MetricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server error", "error", err)
			}
		}()
	}

	log.Info("starting sedris-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"address", srvCfg.PlainAddress,
		"databases", cfg.Server.Databases)

	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig layers defaults, an optional YAML config file, environment
// variables, and CLI flags (in that precedence order, highest last) into a
// single ServerConfig (§10).
func loadConfig(c *cli.Context) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if path := c.String("config"); path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}
	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if c.IsSet("host") {
		cfg.Server.Host = c.String("host")
	}
	if c.IsSet("port") {
		cfg.Server.Port = c.Int("port")
	}
	if c.IsSet("databases") {
		cfg.Server.Databases = c.Int("databases")
	}
	if c.IsSet("metrics-addr") {
		cfg.Server.MetricsAddr = c.String("metrics-addr")
	}
	if c.IsSet("dbfilename") {
		cfg.Storage.DBFilename = c.String("dbfilename")
	}
	if c.IsSet("loglevel") {
		cfg.Log.Level = c.String("loglevel")
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
