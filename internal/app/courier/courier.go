// Package courier binds one session to one signaling transport. Local
// negotiation output turns into envelopes going out; inbound envelopes
// turn into session calls. The courier never touches media.
package courier

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/peerline/peerline/internal/adapters/signal"
	"github.com/peerline/peerline/internal/core"
)

// Transport is the slice of the signaling client the courier needs.
// *signal.Client satisfies it.
type Transport interface {
	Send(env signal.Envelope) error
	Inbound() <-chan signal.Envelope
}

// Courier shuttles negotiation traffic between a session and a relay
// connection. Exactly one side of a pairing runs as initiator; that side
// offers when its counterpart shows up and re-offers when the session
// asks for renegotiation.
type Courier struct {
	sess      *core.Session
	tr        Transport
	initiator bool
}

func New(sess *core.Session, tr Transport, initiator bool) *Courier {
	return &Courier{sess: sess, tr: tr, initiator: initiator}
}

// Bind registers the outbound callbacks on the session. Call it before
// any negotiation starts or early descriptions go nowhere.
func (c *Courier) Bind() {
	c.sess.OnLocalDescription(func(kind, sdp string) {
		if err := c.tr.Send(signal.Envelope{Type: kind, SDP: sdp}); err != nil {
			log.Error().Str("module", "app.courier").Str("kind", kind).Err(err).Msg("send description")
		}
	})
	c.sess.OnICECandidate(func(cand core.Candidate) {
		env := signal.Envelope{
			Type:          signal.KindCandidate,
			Candidate:     cand.Candidate,
			SDPMid:        cand.Mid,
			SDPMLineIndex: cand.MLineIndex,
		}
		if err := c.tr.Send(env); err != nil {
			log.Error().Str("module", "app.courier").Err(err).Msg("send candidate")
		}
	})
	c.sess.OnRenegotiationNeeded(func() {
		if !c.initiator {
			return
		}
		if err := c.sess.CreateOffer(); err != nil {
			log.Error().Str("module", "app.courier").Err(err).Msg("renegotiation offer")
		}
	})
}

// Run consumes inbound envelopes until ctx ends or the transport closes
// its channel. It is safe to run once per courier.
func (c *Courier) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env, ok := <-c.tr.Inbound():
			if !ok {
				log.Debug().Str("module", "app.courier").Msg("transport closed")
				return nil
			}
			c.dispatch(env)
		}
	}
}

func (c *Courier) dispatch(env signal.Envelope) {
	switch env.Type {
	case signal.KindPeerJoined:
		if !c.initiator {
			return
		}
		if err := c.sess.CreateOffer(); err != nil {
			log.Error().Str("module", "app.courier").Err(err).Msg("create offer")
		}
	case signal.KindOffer:
		if err := c.sess.SetRemoteDescription(env.Type, env.SDP); err != nil {
			log.Error().Str("module", "app.courier").Err(err).Msg("apply offer")
			return
		}
		if err := c.sess.CreateAnswer(); err != nil {
			log.Error().Str("module", "app.courier").Err(err).Msg("create answer")
		}
	case signal.KindAnswer:
		if err := c.sess.SetRemoteDescription(env.Type, env.SDP); err != nil {
			log.Error().Str("module", "app.courier").Err(err).Msg("apply answer")
		}
	case signal.KindCandidate:
		cand := core.Candidate{
			Mid:        env.SDPMid,
			MLineIndex: env.SDPMLineIndex,
			Candidate:  env.Candidate,
		}
		if err := c.sess.AddICECandidate(cand); err != nil {
			log.Error().Str("module", "app.courier").Err(err).Msg("add candidate")
		}
	case signal.KindJoined:
		// Joining a room someone already waits in: the counterpart never
		// announces itself again, so the initiator offers right away.
		if !c.initiator || env.Count < 2 {
			return
		}
		if err := c.sess.CreateOffer(); err != nil {
			log.Error().Str("module", "app.courier").Err(err).Msg("create offer")
		}
	case signal.KindPeerLeft:
		log.Info().Str("module", "app.courier").Str("peer", env.Peer).Msg("peer left")
	case signal.KindError:
		log.Warn().Str("module", "app.courier").Str("reason", env.Error).Msg("relay error")
	case signal.KindLeft, signal.KindPong:
		// Membership acks, nothing to drive.
	default:
		log.Warn().Str("module", "app.courier").Str("type", env.Type).Msg("unknown envelope")
	}
}
