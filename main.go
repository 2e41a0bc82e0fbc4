package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"time"

	api "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/kindpredictions/kindbot/internal/bot"
	"github.com/kindpredictions/kindbot/internal/config"
	"github.com/kindpredictions/kindbot/internal/db/sqlite"
	"github.com/kindpredictions/kindbot/internal/handlers"
	"github.com/kindpredictions/kindbot/internal/infra"
	"github.com/kindpredictions/kindbot/internal/moderation"
	"github.com/kindpredictions/kindbot/internal/notifier"
	"github.com/kindpredictions/kindbot/internal/observability"
	"github.com/kindpredictions/kindbot/internal/predictions"
)

func main() {
	testMode := flag.Bool("test", false, "use the test credential pair, test log file and diagnostic notifications")
	flag.Parse()
	config.SetTestMode(*testMode)

	cfg := config.Get()
	log.SetFormatter(&config.KpFormatter{})
	log.SetOutput(logOutput(cfg))
	log.SetLevel(log.Level(cfg.LogLevel))

	observability.Init(cfg.MetricsAddr)

	infra.GoRecoverable(-1, "process_updates", func() {
		ctx, cancelFunc := context.WithCancel(context.Background())
		defer cancelFunc()

		botAPI, err := api.NewBotAPI(cfg.Token())
		if err != nil {
			log.WithError(err).Errorln("cant initialize bot api")
			time.Sleep(1 * time.Second)
			log.Fatalln("exiting")
		}
		if log.Level(cfg.LogLevel) == log.TraceLevel {
			botAPI.Debug = true
		}
		defer botAPI.StopReceivingUpdates()

		dbClient, err := sqlite.NewSQLiteClient(ctx, infra.GetWorkDir(), "bot.db")
		if err != nil {
			log.WithError(err).Fatalln("cant open db")
		}
		defer dbClient.Close()
		if err := dbClient.SeedDefaults(ctx); err != nil {
			log.WithError(err).Fatalln("cant seed default predictions")
		}

		service := bot.NewService(botAPI, dbClient)
		lifecycle := predictions.NewService(dbClient)
		messenger := bot.NewMessenger(botAPI)
		moderator := moderation.NewModerator(lifecycle, messenger, cfg.AdminID, cfg.DefaultLanguage)
		notify := notifier.New(lifecycle, moderator, messenger, notifier.Options{
			AdminID:   cfg.AdminID,
			Language:  cfg.DefaultLanguage,
			CronSpec:  cfg.Notify.CronSpec,
			OnceDelay: cfg.Notify.OnceDelay,
			Verbose:   cfg.TestMode,
		})

		bot.RegisterUpdateHandler("commands", handlers.NewCommands(service, lifecycle, notify, cfg))
		bot.RegisterUpdateHandler("inline", handlers.NewInline(service, lifecycle, cfg.DefaultLanguage))
		bot.RegisterUpdateHandler("moderation", handlers.NewModeration(service, moderator, cfg.DefaultLanguage))

		updateConfig := api.NewUpdate(0)
		updateConfig.Timeout = 60
		updateProcessor := bot.NewUpdateProcessor(service)

		updateChan, errorChan := bot.GetUpdatesChans(ctx, botAPI, updateConfig)

		for {
			select {
			case err := <-errorChan:
				log.WithError(err).Fatalln("bot api get updates error")
			case update := <-updateChan:
				if err := updateProcessor.Process(ctx, &update); err != nil {
					log.WithError(err).Errorln("cant process update")
				}
			case <-ctx.Done():
				log.WithError(ctx.Err()).Errorln("no more updates")
				return
			}
		}
	})
	os.Exit(0)
}

func logOutput(cfg config.Config) io.Writer {
	logPath := filepath.Join(infra.GetWorkDir("logs"), cfg.LogFileName())
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.WithError(err).Errorln("cant open log file, logging to stdout only")
		return os.Stdout
	}
	return io.MultiWriter(os.Stdout, file)
}
