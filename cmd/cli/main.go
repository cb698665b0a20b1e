package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dmitrijs2005/tuniguard/internal/buildinfo"
	"github.com/dmitrijs2005/tuniguard/internal/client/cli"
	"github.com/dmitrijs2005/tuniguard/internal/client/client"
	"github.com/dmitrijs2005/tuniguard/internal/client/config"
	"github.com/dmitrijs2005/tuniguard/internal/client/export"
	"github.com/dmitrijs2005/tuniguard/internal/client/services"
	"github.com/dmitrijs2005/tuniguard/internal/cryptox"
	"github.com/dmitrijs2005/tuniguard/internal/filex"
	"github.com/dmitrijs2005/tuniguard/internal/logging"
)

const (
	dbFileName  = "tuniguard.db"
	keyFileName = "device.key"
	sealerInfo  = "tuniguard session"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Backend: cfg.Log.Backend,
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	if z, ok := logger.(*logging.ZapLogger); ok {
		defer func() { _ = z.Sync() }()
	}

	dataDir, err := filex.EnsureDir(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to create data dir[%s]: %w", cfg.DataDir, err)
	}

	db, err := client.InitDatabase(ctx, filepath.Join(dataDir, dbFileName))
	if err != nil {
		return err
	}
	defer db.Close()

	sealer, err := cryptox.NewDeviceSealer(filepath.Join(dataDir, keyFileName), sealerInfo)
	if err != nil {
		return fmt.Errorf("failed to load device key: %w", err)
	}

	api, err := client.NewHTTPClient(cfg.ServerURL, cfg.RequestTimeout, logger)
	if err != nil {
		return err
	}

	exporter, err := newExporter(ctx, cfg.Export)
	if err != nil {
		return err
	}

	sessions := services.NewSessionService(api, db, sealer, logger)
	scans := services.NewScanService(sessions, api, db, logger)
	svc := cli.Services{
		Sessions: sessions,
		Scans:    scans,
		Chat:     services.NewChatService(sessions, api, scans, db, cfg.PersistChatErrors, logger),
		Catalog:  services.NewCatalogService(api, logger),
		Reports:  services.NewReportService(sessions, db, exporter, logger),
	}

	return cli.NewApp(cfg, svc, logger, os.Stdin, os.Stdout).Run(ctx)
}

func newExporter(ctx context.Context, c config.ExportConfig) (export.Exporter, error) {
	if c.S3Bucket == "" {
		return export.NewFileExporter(c.Dir), nil
	}
	return export.NewS3Exporter(ctx, export.S3Config{
		Bucket:    c.S3Bucket,
		Region:    c.S3Region,
		Endpoint:  c.S3Endpoint,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
	})
}
