package main

import (
	"context"
	"errors"
	"os"
	"time"

	"dompet/internal/bot"
	"dompet/internal/cli"
	"dompet/internal/config"
	"dompet/internal/log"
)

func main() {
	// .env is optional outside local development
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	logger.Info("Starting dompet")

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, done := cli.GracefulShutdown(logger, 15*time.Second, nil)

	b, err := bot.New(ctx, cfg, logger)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Startup cancelled")
			return
		}
		logger.Error("Failed to start", log.FieldError, err.Error(),
			"channel", cfg.Channel, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer b.Close()

	if cfg.Channel == config.ChannelAMQP {
		logger.Info("Listening for chat messages", "queue", cfg.AMQPQueue, "reply_queue", cfg.AMQPReplyQueue)
	} else {
		logger.Info("Listening for chat messages", "endpoint", "POST :"+cfg.Port+"/messages")
	}

	if err := b.Run(ctx); err != nil {
		logger.Error("Bot stopped with error", log.FieldError, err.Error())
		b.Close()
		os.Exit(1)
	}
	<-done
	logger.Info("dompet stopped")
}
