package rtc

// G.711 byte transforms, one compressed byte per sample, 16-bit
// little-endian PCM on the linear side.
// https://www.codeproject.com/Articles/14237/Using-the-G711-standard

import (
	"encoding/binary"
	"strings"

	"github.com/pion/webrtc/v4"
)

const (
	g711Bias = 0x84 // 132 or 1000 0100
	pcmMax   = 0x7FFF
	ulawMax  = pcmMax - g711Bias
)

func ulawToLinear(ulaw byte) int16 {
	ulaw = ^ulaw

	exponent := (ulaw & 0x70) >> 4
	data := (int16((((ulaw&0x0F)|0x10)<<1)+1) << (exponent + 2)) - g711Bias

	if ulaw&0x80 == 0 {
		return data
	} else if data == 0 {
		return -1
	}
	return -data
}

func linearToUlaw(pcm int16) byte {
	var ulaw byte

	if pcm < 0 {
		pcm = -pcm
		ulaw = 0x80
	}
	if pcm > ulawMax {
		pcm = ulawMax
	}
	pcm += g711Bias

	exponent := byte(7)
	for expMask := int16(0x4000); (pcm & expMask) == 0; expMask >>= 1 {
		exponent--
	}

	ulaw |= byte(pcm>>(exponent+3)) & 0x0F
	if exponent > 0 {
		ulaw |= exponent << 4
	}
	return ^ulaw
}

func alawToLinear(alaw byte) int16 {
	alaw ^= 0xD5

	data := int16(((alaw & 0x0F) << 4) + 8)
	exponent := (alaw & 0x70) >> 4

	if exponent != 0 {
		data |= 0x100
	}
	if exponent > 1 {
		data <<= exponent - 1
	}

	if alaw&0x80 == 0 {
		return data
	}
	return -data
}

func linearToAlaw(pcm int16) byte {
	var alaw byte

	if pcm < 0 {
		pcm = -pcm
		alaw = 0x80
	}
	if pcm > pcmMax {
		pcm = pcmMax
	}

	exponent := byte(7)
	for expMask := int16(0x4000); (pcm&expMask) == 0 && exponent > 0; expMask >>= 1 {
		exponent--
	}

	if exponent == 0 {
		alaw |= byte(pcm>>4) & 0x0F
	} else {
		alaw |= (exponent << 4) | (byte(pcm>>(exponent+3)) & 0x0F)
	}
	return alaw ^ 0xD5
}

func expandG711(toLinear func(byte) int16, payload []byte) []byte {
	out := make([]byte, len(payload)*2)
	for i, b := range payload {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(toLinear(b)))
	}
	return out
}

func compressG711(toByte func(int16) byte, pcm []byte) []byte {
	out := make([]byte, len(pcm)/2)
	for i := range out {
		out[i] = toByte(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}
	return out
}

// g711Decoder picks the payload-to-PCM transform for a negotiated codec,
// nil when the payload is not G.711.
func g711Decoder(mimeType string) func([]byte) []byte {
	switch {
	case strings.EqualFold(mimeType, webrtc.MimeTypePCMU):
		return func(payload []byte) []byte { return expandG711(ulawToLinear, payload) }
	case strings.EqualFold(mimeType, webrtc.MimeTypePCMA):
		return func(payload []byte) []byte { return expandG711(alawToLinear, payload) }
	}
	return nil
}

// g711Encoder is the inverse direction, PCM to wire payload.
func g711Encoder(mimeType string) func([]byte) []byte {
	switch {
	case strings.EqualFold(mimeType, webrtc.MimeTypePCMU):
		return func(pcm []byte) []byte { return compressG711(linearToUlaw, pcm) }
	case strings.EqualFold(mimeType, webrtc.MimeTypePCMA):
		return func(pcm []byte) []byte { return compressG711(linearToAlaw, pcm) }
	}
	return nil
}
