package core

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Channel is one indexed data channel: the engine handle plus the
// per-channel handlers. Handlers can be swapped at any time, which is how
// channels opened by the remote peer get theirs attached after the fact.
type Channel struct {
	id    int
	label string
	dc    DataChannel

	mu         sync.Mutex
	onMessage  func(payload []byte)
	onBuffered func(amount uint64)
	onState    func(s ChannelState)
}

var _ ChannelObserver = (*Channel)(nil)

func newChannel(dc DataChannel) *Channel {
	return &Channel{id: dc.ID(), label: dc.Label(), dc: dc}
}

func (c *Channel) ID() int       { return c.id }
func (c *Channel) Label() string { return c.label }

// Send queues one binary message. Delivery and backpressure are the
// engine's concern; ErrChannelNotFound never originates here.
func (c *Channel) Send(payload []byte) error {
	return c.dc.Send(payload)
}

func (c *Channel) OnMessage(fn func(payload []byte)) {
	c.mu.Lock()
	c.onMessage = fn
	c.mu.Unlock()
}

func (c *Channel) OnBuffered(fn func(amount uint64)) {
	c.mu.Lock()
	c.onBuffered = fn
	c.mu.Unlock()
}

func (c *Channel) OnState(fn func(s ChannelState)) {
	c.mu.Lock()
	c.onState = fn
	c.mu.Unlock()
}

// ChannelObserver entry points, called from engine goroutines.

func (c *Channel) OnChannelMessage(payload []byte) {
	c.mu.Lock()
	fn := c.onMessage
	c.mu.Unlock()
	if fn != nil {
		fn(payload)
	}
}

func (c *Channel) OnChannelBuffered(amount uint64) {
	c.mu.Lock()
	fn := c.onBuffered
	c.mu.Unlock()
	if fn != nil {
		fn(amount)
	}
}

func (c *Channel) OnChannelState(s ChannelState) {
	c.mu.Lock()
	fn := c.onState
	c.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// channelRegistry keeps both lookup paths consistent: exactly one channel
// per id, any number per label. Both maps change in the same critical
// section so neither can be observed ahead of the other.
type channelRegistry struct {
	mu      sync.RWMutex
	byID    map[int]*Channel
	byLabel map[string][]*Channel
}

func newChannelRegistry() *channelRegistry {
	return &channelRegistry{
		byID:    make(map[int]*Channel),
		byLabel: make(map[string][]*Channel),
	}
}

func (r *channelRegistry) add(ch *Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[ch.id]; ok {
		return ErrChannelIDInUse
	}
	r.byID[ch.id] = ch
	if ch.label != "" {
		r.byLabel[ch.label] = append(r.byLabel[ch.label], ch)
	}
	log.Debug().Str("module", "core.channels").Int("id", ch.id).Str("label", ch.label).Msg("channel indexed")
	return nil
}

func (r *channelRegistry) get(id int) (*Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.byID[id]
	return ch, ok
}

func (r *channelRegistry) labelSnapshot(label string) []*Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chs := r.byLabel[label]
	out := make([]*Channel, len(chs))
	copy(out, chs)
	return out
}

// removeByID unregisters one channel, nil when the id is unknown.
func (r *channelRegistry) removeByID(id int) *Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.byID[id]
	if !ok {
		return nil
	}
	delete(r.byID, id)
	r.dropLabelLocked(ch)
	log.Debug().Str("module", "core.channels").Int("id", id).Msg("channel removed")
	return ch
}

// removeByLabel unregisters every channel under the label and returns them.
func (r *channelRegistry) removeByLabel(label string) []*Channel {
	if label == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	chs := r.byLabel[label]
	delete(r.byLabel, label)
	for _, ch := range chs {
		delete(r.byID, ch.id)
	}
	if len(chs) > 0 {
		log.Debug().Str("module", "core.channels").Str("label", label).Int("count", len(chs)).Msg("channels removed by label")
	}
	return chs
}

// drain empties the registry, returning what it held.
func (r *channelRegistry) drain() []*Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Channel, 0, len(r.byID))
	for _, ch := range r.byID {
		out = append(out, ch)
	}
	r.byID = make(map[int]*Channel)
	r.byLabel = make(map[string][]*Channel)
	return out
}

func (r *channelRegistry) dropLabelLocked(ch *Channel) {
	if ch.label == "" {
		return
	}
	chs := r.byLabel[ch.label]
	for i, c := range chs {
		if c == ch {
			chs = append(chs[:i], chs[i+1:]...)
			break
		}
	}
	if len(chs) == 0 {
		delete(r.byLabel, ch.label)
	} else {
		r.byLabel[ch.label] = chs
	}
}
