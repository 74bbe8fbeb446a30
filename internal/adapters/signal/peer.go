package signal

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/peerline/peerline/internal/app"
	"github.com/peerline/peerline/internal/domain"
)

// peerConn is one connected peer on the relay side.
type peerConn struct {
	srv  *Server
	id   domain.PeerID
	conn *Conn

	mu   sync.Mutex
	room *room
}

func (p *peerConn) handle(data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		p.sendError("bad_payload")
		return
	}

	switch env.Type {
	case KindJoin:
		p.handleJoin(env)
	case KindLeave:
		p.handleLeave()
	case KindPing:
		p.send(Envelope{Type: KindPong})
	case KindOffer, KindAnswer, KindCandidate:
		p.relay(data)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

func (p *peerConn) handleJoin(env Envelope) {
	name, err := domain.NewRoomName(env.Room)
	if err != nil {
		p.sendError("bad_room_name")
		return
	}

	if !p.srv.limiter.Allow(p.id) {
		log.Warn().Str("module", "signal").Str("peer", string(p.id)).Msg("join rate limited")
		p.sendError("rate_limited")
		return
	}

	p.mu.Lock()
	inRoom := p.room != nil
	p.mu.Unlock()
	if inRoom {
		p.sendError("already_in_room")
		return
	}

	r, err := p.srv.rooms.join(name, &member{id: p.id, conn: p.conn})
	if err != nil {
		p.sendError("room_full")
		return
	}
	p.mu.Lock()
	p.room = r
	p.mu.Unlock()

	log.Info().Str("module", "signal").Str("peer", string(p.id)).Str("room", string(name)).Msg("join")

	p.send(Envelope{Type: KindJoined, Room: string(name), Peer: string(p.id), Count: r.size()})
	announce(r, p.id, Envelope{Type: KindPeerJoined, Room: string(name), Peer: string(p.id)})
}

// handleLeave drops the peer out of its room, the connection stays up.
func (p *peerConn) handleLeave() {
	log.Info().Str("module", "signal").Str("peer", string(p.id)).Msg("leave")
	p.leaveRoom()
	p.send(Envelope{Type: KindLeft})
}

// relay forwards the raw frame to every roommate; a re-marshal would only
// cost bytes and reorder keys.
func (p *peerConn) relay(data []byte) {
	p.mu.Lock()
	r := p.room
	p.mu.Unlock()
	if r == nil {
		p.sendError("not_in_room")
		return
	}

	for _, m := range r.peers(p.id) {
		err := m.conn.TrySend(data)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrBackpressure) && p.srv.opts.Policy.OnBackPressure(m.id) == app.KickPeer {
			log.Warn().Str("module", "signal").Str("peer", string(m.id)).Msg("kicking slow consumer")
			p.srv.kick(r, m)
			continue
		}
		log.Warn().Err(err).Str("module", "signal").Str("peer", string(m.id)).Msg("relay drop")
	}
}

func (p *peerConn) leaveRoom() {
	p.mu.Lock()
	r := p.room
	p.room = nil
	p.mu.Unlock()
	if r == nil {
		return
	}

	if p.srv.rooms.leave(r, p.id) {
		announce(r, p.id, Envelope{Type: KindPeerLeft, Room: string(r.name), Peer: string(p.id)})
	}
}

func (p *peerConn) send(env Envelope) {
	b, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal envelope")
		return
	}
	_ = p.conn.TrySend(b)
}

func (p *peerConn) sendError(msg string) {
	p.send(Envelope{Type: KindError, Error: msg})
}

// announce fans env to everyone in the room except one peer, best effort.
func announce(r *room, except domain.PeerID, env Envelope) {
	b, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal announce")
		return
	}
	for _, m := range r.peers(except) {
		_ = m.conn.TrySend(b)
	}
}
