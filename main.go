package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jaipkapoor99/GamingLog/config"
	"github.com/jaipkapoor99/GamingLog/sheets"
	"github.com/jaipkapoor99/GamingLog/steam"
	"github.com/jaipkapoor99/GamingLog/task"
	"github.com/jaipkapoor99/GamingLog/watcher"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Build info
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	installFlag := flag.Bool("install-task", false, "install the logon startup entry")
	uninstallFlag := flag.Bool("uninstall-task", false, "remove the logon startup entry")
	runFlag := flag.Bool("run", false, "run the watcher loop in the foreground")
	flag.Parse()

	switch {
	case *uninstallFlag:
		setupConsoleLogging()
		if err := task.Uninstall(); err != nil {
			log.Fatal().Err(err).Msg("failed to remove startup script")
		}
	case *installFlag:
		setupConsoleLogging()
		if err := task.Install(); err != nil {
			log.Fatal().Err(err).Msg("failed to install startup script")
		}
	case *runFlag:
		runWatcher()
	default:
		// Make sure the watcher runs at logon, then kick it off now.
		setupConsoleLogging()
		if !task.Installed() {
			log.Info().Msg("startup script not found, installing")
			if err := task.Install(); err != nil {
				log.Fatal().Err(err).Msg("failed to install startup script")
			}
		}
		if err := task.Launch(); err != nil {
			log.Fatal().Err(err).Msg("failed to launch watcher")
		}
	}
}

func runWatcher() {
	setupFileLogging()

	log.Info().Msgf("GamingLog %s (%s) built on %s", version, commit, date)

	cfg := config.Load()
	if cfg.SheetID == "" {
		log.Fatal().Msg("GOOGLE_SHEET_ID is not set")
	}
	if cfg.ServiceAccountFile == "" {
		log.Fatal().Msg("GOOGLE_SERVICE_ACCOUNT_FILE is not set")
	}
	if _, err := os.Stat(cfg.ServiceAccountFile); err != nil {
		log.Fatal().Err(err).Str("path", cfg.ServiceAccountFile).Msg("service account file not found")
	}
	log.Info().Dur("interval", cfg.PollInterval).Msg("poll interval")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink, err := sheets.New(ctx, cfg.ServiceAccountFile, cfg.SheetID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Google Sheets service")
	}
	if err := sink.EnsureSheet(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to prepare spreadsheet")
	}

	// Detection strategy is fixed for the life of the process.
	roots := steam.NewResolver().Resolve()
	classifier, err := watcher.SelectClassifier(roots, cfg.Games)
	if err != nil {
		log.Fatal().Err(err).Msg("nothing to detect")
	}

	w := watcher.New(watcher.Options{
		Interval:   cfg.PollInterval,
		Classifier: classifier,
		Sink:       sink,
	})

	// Graceful shutdown between ticks
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-stop
		log.Info().Msg("shutting down...")
		cancel()
	}()

	w.Run(ctx)
}

// setupFileLogging writes to a rotating log file beside the executable,
// plus stderr; the watcher usually runs headless at logon.
func setupFileLogging() {
	logDir := "."
	if exe, err := os.Executable(); err == nil {
		logDir = filepath.Dir(exe)
	}
	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "gaminglog.log"),
		MaxSize:    1,
		MaxBackups: 2,
	}
	console := zerolog.ConsoleWriter{Out: os.Stderr}
	log.Logger = log.Output(io.MultiWriter(fileWriter, console)).
		With().Timestamp().Logger()
}

func setupConsoleLogging() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()
}
