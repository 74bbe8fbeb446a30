package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/peerline/peerline/internal/adapters/rtc"
	wsignal "github.com/peerline/peerline/internal/adapters/signal"
	"github.com/peerline/peerline/internal/app/courier"
	"github.com/peerline/peerline/internal/config"
	"github.com/peerline/peerline/internal/core"
)

// Both sides create the chat channel under the same pre-negotiated id.
const chatChannelID = 0

func main() {
	if err := newPeerCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newPeerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "peer",
		Short:        "Join a room through a peerline relay and chat over a data channel",
		SilenceUsage: true,
		RunE:         runPeer,
	}
	cmd.Flags().String("url", "ws://localhost:8080/api/ws/signal", "relay websocket URL")
	cmd.Flags().String("room", "", "room to join")
	cmd.Flags().Bool("offer", false, "drive the session once a counterpart is present")
	_ = cmd.MarkFlagRequired("room")
	return cmd
}

func runPeer(cmd *cobra.Command, args []string) error {
	url, _ := cmd.Flags().GetString("url")
	room, _ := cmd.Flags().GetString("room")
	offer, _ := cmd.Flags().GetBool("offer")

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sess := core.NewSession()
	eng, err := rtc.NewPeer(rtc.Config{ICEServers: cfg.ICEServers}, sess.Observer())
	if err != nil {
		return fmt.Errorf("engine setup: %w", err)
	}
	if err := sess.Attach(eng); err != nil {
		return fmt.Errorf("engine attach: %w", err)
	}
	defer sess.Close()

	sess.OnConnected(func() {
		log.Info().Str("sid", sess.ID()).Msg("session connected")
	})
	sess.OnNegotiationFailed(func(err error) {
		log.Error().Err(err).Msg("negotiation failed")
	})

	_, err = sess.AddDataChannel(core.ChannelConfig{
		ID:       chatChannelID,
		Label:    "chat",
		Ordered:  true,
		Reliable: true,
		OnMessage: func(payload []byte) {
			fmt.Printf("> %s\n", payload)
		},
		OnState: func(s core.ChannelState) {
			log.Info().Str("state", s.String()).Msg("chat channel")
		},
	})
	if err != nil {
		return fmt.Errorf("chat channel setup: %w", err)
	}

	client, err := wsignal.Dial(ctx, url)
	if err != nil {
		return fmt.Errorf("relay dial %s: %w", url, err)
	}
	defer client.Close()

	cour := courier.New(sess, client, offer)
	cour.Bind()
	go func() {
		if err := cour.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("courier stopped")
		}
		cancel()
	}()

	if err := client.Join(room); err != nil {
		return fmt.Errorf("join %s: %w", room, err)
	}
	log.Info().Str("room", room).Bool("offer", offer).Msg("joined, type to chat")

	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			if err := sess.SendMessage(chatChannelID, []byte(line)); err != nil {
				log.Warn().Err(err).Msg("send")
			}
		}
		cancel()
	}()

	<-ctx.Done()
	log.Info().Msg("bye")
	return nil
}
