package signal

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/peerline/peerline/internal/app"
	"github.com/peerline/peerline/internal/domain"
)

// Options tunes the relay. Zero values fall back to defaults fit for two
// peers negotiating through one room.
type Options struct {
	RoomSize   int
	SendQueue  int
	ReadLimit  int64
	PingPeriod time.Duration
	JoinLimit  int
	JoinWindow time.Duration
	Policy     app.Policy
}

func (o Options) withDefaults() Options {
	if o.RoomSize <= 0 {
		o.RoomSize = 2
	}
	if o.SendQueue <= 0 {
		o.SendQueue = 32
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = 512 << 10
	}
	if o.PingPeriod <= 0 {
		o.PingPeriod = 30 * time.Second
	}
	if o.JoinLimit <= 0 {
		o.JoinLimit = 8
	}
	if o.JoinWindow <= 0 {
		o.JoinWindow = time.Minute
	}
	if o.Policy == nil {
		o.Policy = app.NewStrictPolicy(8)
	}
	return o
}

// Server relays signaling envelopes between the peers of a room. It never
// parses SDP, it only moves envelopes.
type Server struct {
	opts    Options
	rooms   *roomSet
	limiter *app.JoinLimiter
}

func NewServer(opts Options) *Server {
	opts = opts.withDefaults()
	return &Server{
		opts:    opts,
		rooms:   newRoomSet(opts.RoomSize),
		limiter: app.NewJoinLimiter(opts.JoinLimit, opts.JoinWindow),
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades one connection and serves it until either side hangs
// up. Mount it under a gin route behind the client token middleware.
func (s *Server) Handle(ctx context.Context, c *gin.Context) {
	peerID := domain.PeerID(c.GetString("client_token"))
	if peerID.Validate() != nil {
		peerID = domain.NewPeerID()
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("peer", string(peerID)).Msg("new ws connection")

	conn := newConn(ws, s.opts.SendQueue)
	p := &peerConn{srv: s, id: peerID, conn: conn}

	ctx, cancel := context.WithCancel(ctx)
	go conn.writePump(ctx, s.opts.PingPeriod)
	go func() {
		defer cancel()
		conn.readPump(ctx, s.opts.ReadLimit, s.opts.PingPeriod*10/9, p.handle)
		p.leaveRoom()
	}()
}

// kick drops a peer that stopped draining its queue.
func (s *Server) kick(r *room, m *member) {
	if s.rooms.leave(r, m.id) {
		announce(r, m.id, Envelope{Type: KindPeerLeft, Room: string(r.name), Peer: string(m.id)})
	}
	m.conn.Close()
}
