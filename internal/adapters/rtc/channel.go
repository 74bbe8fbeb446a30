package rtc

import (
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/peerline/peerline/internal/core"
)

// bufferedLowWater is the outbound queue level below which the engine
// reports back-pressure relief to the channel owner.
const bufferedLowWater = 64 << 10

// dataChannel adapts one SCTP stream to the core contract. Engine events
// that arrive before Subscribe are dropped.
type dataChannel struct {
	dc *webrtc.DataChannel

	mu  sync.Mutex
	obs core.ChannelObserver
}

func newDataChannel(dc *webrtc.DataChannel) *dataChannel {
	c := &dataChannel{dc: dc}

	dc.SetBufferedAmountLowThreshold(bufferedLowWater)

	dc.OnOpen(func() { c.deliverState(core.ChannelOpen) })
	dc.OnClose(func() { c.deliverState(core.ChannelClosed) })
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		if obs := c.observer(); obs != nil {
			obs.OnChannelMessage(msg.Data)
		}
	})
	dc.OnBufferedAmountLow(func() {
		if obs := c.observer(); obs != nil {
			obs.OnChannelBuffered(dc.BufferedAmount())
		}
	})

	return c
}

func (c *dataChannel) observer() core.ChannelObserver {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.obs
}

func (c *dataChannel) deliverState(st core.ChannelState) {
	if obs := c.observer(); obs != nil {
		obs.OnChannelState(st)
	}
}

func (c *dataChannel) ID() int {
	if id := c.dc.ID(); id != nil {
		return int(*id)
	}
	return -1
}

func (c *dataChannel) Label() string { return c.dc.Label() }

func (c *dataChannel) Send(data []byte) error { return c.dc.Send(data) }

func (c *dataChannel) Close() error { return c.dc.Close() }

func (c *dataChannel) Subscribe(obs core.ChannelObserver) {
	c.mu.Lock()
	c.obs = obs
	c.mu.Unlock()
}
