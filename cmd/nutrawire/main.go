package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"nutrawire/internal/app"
	"nutrawire/internal/config"
	"nutrawire/internal/metrics"
)

type options struct {
	ConfigPath string `short:"c" long:"config" env:"CONFIG_PATH" default:"configs/config.yaml" description:"Path to the YAML configuration file"`
	Monitor    bool   `long:"monitor" env:"ENABLE_HTTP_MONITORING" description:"Expose /health and /metrics over HTTP"`
	Debug      bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	// .env is optional; real deployments set env vars directly
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if opts.Debug {
		cfg.Debug = true
	}

	if opts.Monitor {
		go startMonitoringServer(cfg.MonitorAddr)
	}

	result := app.Run(context.Background(), cfg)
	if result.SentCount == 0 && result.CollectedCount == 0 && result.Message != "" {
		log.Printf("Run ended without output: %s", result.Message)
	}
}

func startMonitoringServer(addr string) {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		stats := metrics.Global.GetStats()

		status := http.StatusOK
		state := "ok"
		if !stats["is_healthy"].(bool) {
			status = http.StatusServiceUnavailable
			state = "error"
		}

		c.JSON(status, gin.H{
			"status":     state,
			"last_run":   stats["last_run_time"],
			"last_error": stats["last_error"],
		})
	})

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, metrics.Global.GetStats())
	})

	log.Printf("Starting monitoring server on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Printf("Monitoring server error: %v", err)
	}
}
