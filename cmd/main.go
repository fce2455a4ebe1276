package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/katsuwo/eniwa/internal/commands"
	"github.com/katsuwo/eniwa/internal/config"
	"github.com/katsuwo/eniwa/internal/handlers"
	"github.com/katsuwo/eniwa/internal/metrics"
	"github.com/katsuwo/eniwa/internal/notify"
	"github.com/katsuwo/eniwa/internal/presence"
	"github.com/katsuwo/eniwa/pkg/player"
	"github.com/katsuwo/eniwa/pkg/resolver"
	"github.com/katsuwo/eniwa/pkg/voice"
)

func main() {
	root := &cobra.Command{
		Use:           "eniwa",
		Short:         "Discord music bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(*cobra.Command, []string) error {
			return run()
		},
	}
	if err := root.Execute(); err != nil {
		logger := zerolog.New(os.Stderr)
		logger.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel)

	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentMessageContent

	collector := metrics.NewCollector()
	if cfg.MetricsAddr != "" {
		go metrics.Serve(cfg.MetricsAddr, log)
	}

	registry := player.NewRegistry()
	notifier := notify.New(dg, log)
	pres := presence.NewManager(dg, log)

	bootstrap := player.NewBootstrap(registry, voice.NewConnector(dg, log), notifier,
		player.WithBootstrapLogger(log),
		player.WithBootstrapMetrics(collector),
		player.WithSubscriptionOptions(
			player.WithOnNowPlaying(func(t *player.Track) { pres.NowPlaying(t.Title) }),
			player.WithOnFinished(pres.Default),
		),
	)

	handler := &handlers.MessageHandler{
		Prefix: cfg.CommandPrefix,
		Commands: &commands.Commands{
			Registry:  registry,
			Bootstrap: bootstrap,
			Resolver:  resolver.New(log),
			Notifier:  notifier,
			Presence:  pres,
			Log:       log,
		},
	}
	dg.AddHandler(handler.Handle)

	if err := dg.Open(); err != nil {
		return err
	}
	defer dg.Close()

	pres.Default()
	log.Info().Str("prefix", cfg.CommandPrefix).Msg("bot is running, press CTRL-C to exit")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc

	log.Info().Msg("shutting down")
	registry.Range(func(sub *player.Subscription) { sub.Destroy() })
	return nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().Timestamp().Logger()
}
