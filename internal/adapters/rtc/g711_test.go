package rtc

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/require"
)

const pcmHex = "CAFC1300430328061308510B9E0D760FDA101111EA13BD15F2168216D4156115"

func TestG711Encode(t *testing.T) {
	tests := []struct {
		name   string
		mime   string
		expect string
	}{
		{name: "pcm->mulaw", mime: webrtc.MimeTypePCMU, expect: "52FDD1C5BEB8B3B0AEAEABA9A8A8A9AA"},
		{name: "pcm->alaw", mime: webrtc.MimeTypePCMA, expect: "7CD4FFED95939E9B8584868083838080"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			encode := g711Encoder(test.mime)
			require.NotNil(t, encode)

			pcm, err := hex.DecodeString(pcmHex)
			require.NoError(t, err)

			require.Equal(t, test.expect, fmt.Sprintf("%X", encode(pcm)))
		})
	}
}

func TestG711RoundTrip(t *testing.T) {
	for _, mime := range []string{webrtc.MimeTypePCMU, webrtc.MimeTypePCMA} {
		t.Run(mime, func(t *testing.T) {
			decode := g711Decoder(mime)
			encode := g711Encoder(mime)
			require.NotNil(t, decode)
			require.NotNil(t, encode)

			wire := make([]byte, 256)
			for i := 0; i < 256; i++ {
				wire[i] = byte(i)
			}
			require.Equal(t, wire, encode(decode(wire)))
		})
	}
}

func TestG711DecodeWidth(t *testing.T) {
	decode := g711Decoder(webrtc.MimeTypePCMU)
	require.NotNil(t, decode)

	pcm := decode([]byte{0x52})
	require.Len(t, pcm, 2)
	require.Equal(t, int16(-812), int16(binary.LittleEndian.Uint16(pcm)))
}

func TestG711UnknownMime(t *testing.T) {
	require.Nil(t, g711Decoder(webrtc.MimeTypeOpus))
	require.Nil(t, g711Encoder(webrtc.MimeTypeOpus))
}
