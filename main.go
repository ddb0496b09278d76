package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Entry point for the proximity alarm
func main() {
	configPath := flag.String("config", defaultConfigPath, "Configuration file path")
	flag.Parse()

	cfgMgr := NewConfigManager(*configPath)
	if err := cfgMgr.Load(); err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	cfg := cfgMgr.Get()

	if err := initGPIO(); err != nil {
		log.Fatalf("initialisation error: %v", err)
	}
	trigger, echo, buzzer, err := openPins(cfg)
	if err != nil {
		log.Fatalf("initialisation error: %v", err)
	}

	logger := NewEventLogger(cfg.LogFile)
	sensor := NewSensor(trigger, echo, time.Duration(cfg.EchoTimeout))
	if err := sensor.Setup(); err != nil {
		log.Fatalf("sensor setup: %v", err)
	}
	alarm := NewAlarm(sensor, buzzer, cfg, logger)
	if err := alarm.Setup(); err != nil {
		log.Fatalf("buzzer setup: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := alarm.Run(ctx); err != nil {
		log.Fatalf("alarm exited: %v", err)
	}
}
