package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/markgregr/todoAgent_REST_server/internal/app"
	"github.com/markgregr/todoAgent_REST_server/internal/config"
	"github.com/markgregr/todoAgent_REST_server/internal/lib/logger/handlers/logruspretty"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env, cfg.LogsPath)

	log.WithField("env", cfg.Env).Info("Application start!")

	application, err := app.New(cfg, log)
	if err != nil {
		panic(err)
	}

	application.Run()

	<-application.Done
	log.Info("Application stopped")
}

func setupLogger(env string, logFilePath string) *logrus.Logger {
	var log = logrus.New()

	switch env {
	case envLocal:
		log.SetLevel(logrus.DebugLevel)
		log.SetFormatter(logruspretty.NewPrettyHandler(os.Stdout))
		return log
	case envDev:
		log.SetLevel(logrus.InfoLevel)
	case envProd:
		log.SetLevel(logrus.WarnLevel)
	default:
		log.SetLevel(logrus.WarnLevel)
	}

	logFile, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		panic(err)
	}
	log.SetOutput(logFile)
	log.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})

	return log
}
