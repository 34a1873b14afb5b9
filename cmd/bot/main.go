package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"voxbot/internal/app/events"
	speechqueue "voxbot/internal/app/speech/queue"
	"voxbot/internal/domain"
	"voxbot/internal/infrastructure/config"
	"voxbot/internal/infrastructure/persistence/sqlite"
	twitchinfra "voxbot/internal/infrastructure/platform/twitch"
	"voxbot/internal/infrastructure/synth"
	kickadapter "voxbot/internal/interface/adapters/kick"
	twitchadapter "voxbot/internal/interface/adapters/twitch"
	"voxbot/internal/interface/api/overlay"
	"voxbot/internal/interface/outs"
	"voxbot/internal/usecase/commands"
	"voxbot/internal/usecase/handle_message"
	"voxbot/internal/usecase/notifications"
	"voxbot/internal/usecase/restriction"
	"voxbot/internal/usecase/rules"
	speechusecase "voxbot/internal/usecase/speech"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	// ---------- 1) Persistence ----------

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("opening database")
	}
	defer store.Close()

	viewers := sqlite.NewViewerStore(store)
	restrictions := restriction.NewService(viewers)

	// ---------- 2) Bus + overlay channel ----------

	bus := events.NewBus()

	go notifications.NewEventLogger(bus).Run(ctx)

	overlaySrv := overlay.NewServer(overlay.Config{
		Addr: cfg.OverlayAddr,
		Bus:  bus,
	})

	go func() {
		if err := overlaySrv.Start(ctx); err != nil {
			log.Error().Err(err).Msg("overlay server error")
		}
	}()

	// ---------- 3) Playback queue ----------

	synthesizers := map[domain.Provider]domain.Synthesizer{
		domain.ProviderGoogle: synth.NewGoogle(),
	}
	if cfg.AzureRegion != "" && cfg.AzureKey != "" {
		synthesizers[domain.ProviderAzure] = synth.NewAzure(cfg.AzureRegion, cfg.AzureKey)
	}
	if cfg.ElevenLabsKey != "" {
		synthesizers[domain.ProviderElevenLabs] = synth.NewElevenLabs(cfg.ElevenLabsKey)
	}

	queue := speechqueue.New(speechqueue.Config{
		Synthesizers: synthesizers,
		Engine:       synth.NewLocalEngine(cfg.AudioDir),
		Player:       speechqueue.NewMP3Player(),
		Overlay:      overlaySrv,
		Settings:     store,
		Recorder:     restrictions,
		Bus:          bus,
	})
	queue.Start(ctx)
	defer queue.Close()

	// ---------- 4) Speech path ----------

	pipeline := rules.NewPipeline(store)
	speechSvc := speechusecase.NewService(store, restrictions, pipeline, queue, bus)

	// ---------- 5) Commands ----------

	resolver := twitchinfra.NewUserResolver(cfg.TwitchClientID, cfg.TwitchAPIToken)
	if cfg.TwitchClientID == "" {
		log.Warn().Msg("TWITCH_CLIENT_ID not set, moderation commands cannot look up users")
	}

	router := commands.NewRouter(commands.Prefix)
	router.Register(commands.NewMuteCommand(restrictions, resolver))
	router.Register(commands.NewUnmuteCommand(restrictions, resolver))
	router.Register(commands.NewCooldownCommand(restrictions, resolver))
	router.Register(commands.NewUncooldownCommand(restrictions, resolver))
	router.Register(commands.NewSkipCommand(queue))
	router.Register(commands.NewClearCommand(queue))
	router.Register(commands.NewTTSCommand(store))
	router.Register(commands.NewVoiceCommand(store))
	router.Register(commands.NewProviderCommand(store))

	// ---------- 6) Platform adapters ----------

	twitchAd := twitchadapter.NewAdapter(twitchadapter.Config{
		Username:   cfg.TwitchUsername,
		OAuthToken: cfg.TwitchToken,
		Channels:   cfg.TwitchChannels,
	})

	multiOut := outs.NewMultiSender()
	multiOut.Register(domain.PlatformTwitch, twitchAd)

	uc := handle_message.NewInteractor(multiOut, router, speechSvc, bus)
	twitchAd.SetHandler(uc.Handle)

	go func() {
		if err := twitchAd.Start(ctx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("twitch adapter error")
		}
	}()

	if cfg.KickBotToken != "" && cfg.KickChatroomID != 0 {
		kickAd := kickadapter.NewAdapter(kickadapter.Config{
			AccessToken:       cfg.KickBotToken,
			BroadcasterUserID: cfg.KickBroadcasterUserID,
			ChatroomID:        cfg.KickChatroomID,
		})
		multiOut.Register(domain.PlatformKick, kickAd)
		kickAd.SetHandler(uc.Handle)

		go func() {
			if err := kickAd.Start(ctx); err != nil && err != context.Canceled {
				log.Error().Err(err).Msg("kick adapter error")
			}
		}()
	}

	log.Info().Msg("voxbot started")

	<-ctx.Done()

	log.Info().Msg("voxbot stopped")
}
