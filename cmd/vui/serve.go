package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"voice-scene/config"
	"voice-scene/internal/application"
	"voice-scene/internal/infra/audio"
	"voice-scene/internal/infra/google"
	"voice-scene/internal/infra/notify"
	"voice-scene/internal/infra/openai"
	"voice-scene/internal/infra/pushover"
	"voice-scene/internal/infra/slack"
	"voice-scene/internal/interpret"
	"voice-scene/internal/keywords"
	"voice-scene/internal/scene"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Listen for utterances and drive the scene",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)

	kw, err := loadKeywords(cfg.Keywords)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interpreter := interpret.NewInterpreter(kw)
	hub := scene.NewHub(scene.New(), cfg.Scene.ClientBuffer, logger)
	defer hub.Close()

	source := createAudioSource(cfg.Audio, logger)

	g, gctx := errgroup.WithContext(ctx)

	if httpSource, ok := source.(*audio.HTTPSource); ok {
		hub.Routes(httpSource.Handle)
	} else {
		mux := http.NewServeMux()
		hub.Routes(mux.Handle)
		serveScene(gctx, g, cfg.Audio.HTTPAddr, mux, logger)
	}

	notifyTimeout, err := time.ParseDuration(cfg.Notify.Timeout)
	if err != nil {
		logger.Warn("invalid notify timeout, using default", "error", err, "value", cfg.Notify.Timeout)
		notifyTimeout = 15 * time.Second
	}
	notifyEffect := notify.NewAsync(context.WithoutCancel(ctx), createNotifier(cfg.Notify, logger), notifyTimeout, logger)
	defer notifyEffect.Wait()

	dispatcher := application.NewDispatcher(hub, notifyEffect, logger)
	assistant := application.NewAssistant(
		source,
		createTranscriber(cfg.Transcriber, cfg.Audio.SampleRate, logger),
		interpreter,
		dispatcher,
		hub,
		logger,
	)

	if cfg.Keywords.Path != "" && cfg.Keywords.Watch {
		watcher := keywords.NewWatcher(cfg.Keywords.Path, interpreter, logger)
		g.Go(func() error { return watcher.Run(gctx) })
	}

	logger.Info("starting voice scene",
		"audio_source", cfg.Audio.Source,
		"transcriber", cfg.Transcriber.Provider,
		"notify", cfg.Notify.Provider,
	)

	g.Go(func() error { return assistant.Run(gctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("assistant error", "error", err)
		return err
	}

	logger.Info("shutting down")
	return nil
}

// serveScene runs a dedicated server for the scene endpoints when the
// audio source does not expose its own.
func serveScene(ctx context.Context, g *errgroup.Group, addr string, handler http.Handler, logger *slog.Logger) {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	g.Go(func() error {
		logger.Info("scene server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("scene server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
}

func createAudioSource(cfg config.AudioConfig, logger *slog.Logger) application.AudioSource {
	switch cfg.Source {
	case "http":
		return audio.NewHTTPSource(cfg.HTTPAddr, cfg.AuthToken, logger)
	case "file":
		return audio.NewFileSource(cfg.FileDir, logger)
	case "microphone":
		return audio.NewMicrophoneSource(cfg.SampleRate, time.Duration(cfg.RecordSeconds)*time.Second, logger)
	default:
		logger.Warn("unknown audio source, using http", "source", cfg.Source)
		return audio.NewHTTPSource(cfg.HTTPAddr, cfg.AuthToken, logger)
	}
}

func createTranscriber(cfg config.TranscriberConfig, sampleRate int, logger *slog.Logger) application.SpeechToText {
	if cfg.APIKey == "" && cfg.Provider != "none" {
		logger.Warn("transcriber api_key not set, only text commands will work", "provider", cfg.Provider)
		return &application.NoopSTT{}
	}

	switch cfg.Provider {
	case "google":
		if cfg.BaseURL != "" {
			return google.NewSpeechClientWithURL(cfg.APIKey, cfg.Language, sampleRate, cfg.BaseURL)
		}
		return google.NewSpeechClient(cfg.APIKey, cfg.Language, sampleRate)
	case "openai":
		if cfg.BaseURL != "" {
			return openai.NewWhisperClientWithURL(cfg.APIKey, cfg.Language, cfg.BaseURL)
		}
		return openai.NewWhisperClient(cfg.APIKey, cfg.Language)
	case "none":
		return &application.NoopSTT{}
	default:
		logger.Warn("unknown transcriber, audio transcription disabled", "provider", cfg.Provider)
		return &application.NoopSTT{}
	}
}

func createNotifier(cfg config.NotifyConfig, logger *slog.Logger) application.Notifier {
	switch cfg.Provider {
	case "slack":
		if cfg.Slack.WebhookURL == "" {
			logger.Warn("slack webhook_url not set, notifications disabled")
			return &application.NoopNotifier{}
		}
		return slack.NewClient(cfg.Slack.WebhookURL, slack.Options{
			Channel:  cfg.Slack.Channel,
			Username: cfg.Slack.Username,
			Prefix:   cfg.Slack.Prefix,
		})
	case "pushover":
		return pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey, cfg.Pushover.Title)
	case "none":
		return &application.NoopNotifier{}
	default:
		logger.Warn("unknown notify provider, notifications disabled", "provider", cfg.Provider)
		return &application.NoopNotifier{}
	}
}
