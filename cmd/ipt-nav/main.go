package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ipt-nav/internal/config"
	"ipt-nav/internal/logging"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./configs/dev.yaml", "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	logger, err := logging.New(cfg.Log, "ipt-nav")
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Infof("ipt-nav starting config=%s source=%s display=%s", configPath, cfg.Sensor.Source, cfg.Display.Backend)
	if err := run(ctx, cfg, newRuntime(logger)); err != nil {
		logger.Errorf("ipt-nav stopped: %v", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Infof("ipt-nav stopping")
}
