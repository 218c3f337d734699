package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/datarhei/foldwatch/app/api"
	"github.com/datarhei/foldwatch/config/store"
	"github.com/datarhei/foldwatch/log"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	logger := log.New("Core").WithOutput(log.NewConsoleWriter(os.Stderr, log.Lwarn, true))

	configfile := store.Location(os.Getenv("FOLDWATCH_CONFIGFILE"))

	app, err := api.New(configfile, os.Stderr)
	if err != nil {
		logger.Error().WithError(err).Log("Failed to create new API")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		defer func() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				proc.Signal(os.Interrupt)
			}
		}()

		for {
			if err := app.Start(ctx); err != api.ErrConfigReload {
				if err != nil {
					logger.Error().WithError(err).Log("Failed to start API")
				}

				break
			} else {
				logger.Warn().WithError(err).Log("Config reload requested")
			}

			app.Stop()

			if err := app.Reload(); err != nil {
				logger.Error().WithError(err).Log("Failed to reload config")
				break
			}
		}
	}()

	// SIGHUP reloads the config file
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)

	go func() {
		for range reload {
			app.RequestReload()
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the app
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	signal.Stop(reload)

	// Stop the app
	app.Destroy()
}
