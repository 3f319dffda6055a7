// ABOUTME: Ogg audio decoder
// ABOUTME: Decodes Ogg Vorbis via oggvorbis and Ogg Opus via pion's oggreader
package decode

import (
	"bytes"
	"fmt"

	"github.com/hippolingua/hippolingua/pkg/audio"
	"github.com/jfreymuth/oggvorbis"
	"github.com/pion/webrtc/v4/pkg/media/oggreader"
)

var (
	oggMagic      = []byte("OggS")
	opusHeadMagic = []byte("OpusHead")
	opusTagsMagic = []byte("OpusTags")
	vorbisMagic   = []byte("\x01vorbis")
)

// OggDecoder decodes Ogg audio, detecting Vorbis or Opus from the first packet
type OggDecoder struct{}

// NewOgg creates a new Ogg decoder
func NewOgg(format audio.Format) (Decoder, error) {
	if format.Codec != string(audio.OGG) {
		return nil, fmt.Errorf("invalid codec for Ogg decoder: %s", format.Codec)
	}
	return &OggDecoder{}, nil
}

// Decode converts Ogg bytes to a segment
func (d *OggDecoder) Decode(data []byte) (*audio.Segment, error) {
	head := firstPacket(data)
	switch {
	case bytes.HasPrefix(head, opusHeadMagic):
		return decodeOggOpus(data)
	case bytes.HasPrefix(head, vorbisMagic):
		return decodeOggVorbis(data)
	default:
		return nil, corrupt("ogg", fmt.Errorf("unrecognised first packet"))
	}
}

// Close releases decoder resources
func (d *OggDecoder) Close() error {
	return nil
}

// firstPacket returns the payload of the first Ogg page
func firstPacket(data []byte) []byte {
	const pageHeaderLen = 27
	if len(data) < pageHeaderLen || !bytes.HasPrefix(data, oggMagic) {
		return nil
	}
	segments := int(data[26])
	start := pageHeaderLen + segments
	if len(data) < start {
		return nil
	}
	return data[start:]
}

func decodeOggVorbis(data []byte) (*audio.Segment, error) {
	pcm, info, err := oggvorbis.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, corrupt("vorbis", err)
	}

	format := audio.Format{
		Codec:      string(audio.OGG),
		SampleRate: info.SampleRate,
		Channels:   info.Channels,
		BitDepth:   16,
	}
	if err := format.Validate(); err != nil {
		return nil, corrupt("vorbis", err)
	}

	n := len(pcm) / format.Channels * format.Channels
	samples := make([]int32, n)
	for i, v := range pcm[:n] {
		samples[i] = audio.SampleFromFloat(float64(v))
	}
	return &audio.Segment{Format: format, Samples: samples}, nil
}

// decodeOggOpus decodes every Opus packet in the stream. The identification
// header comes from pion's oggreader; packets are split by lacing so pages
// carrying several packets, or packets spanning pages, decode correctly.
func decodeOggOpus(data []byte) (*audio.Segment, error) {
	_, header, err := oggreader.NewWith(bytes.NewReader(data))
	if err != nil {
		return nil, corrupt("opus", err)
	}

	packets, err := oggPackets(data)
	if err != nil {
		return nil, corrupt("opus", err)
	}

	dec, err := NewOpus(audio.Format{Codec: "opus", Channels: int(header.Channels)})
	if err != nil {
		return nil, corrupt("opus", err)
	}
	defer dec.Close()

	format := audio.Format{
		Codec:      string(audio.OGG),
		SampleRate: OpusSampleRate,
		Channels:   int(header.Channels),
		BitDepth:   16,
	}

	var samples []int32
	for _, packet := range packets {
		if len(packet) == 0 || bytes.HasPrefix(packet, opusHeadMagic) || bytes.HasPrefix(packet, opusTagsMagic) {
			continue
		}

		seg, err := dec.Decode(packet)
		if err != nil {
			return nil, err
		}
		samples = append(samples, seg.Samples...)
	}

	// drop the encoder priming samples
	skip := int(header.PreSkip) * format.Channels
	if skip > len(samples) {
		skip = len(samples)
	}
	samples = samples[skip:]

	return &audio.Segment{Format: format, Samples: samples}, nil
}

// oggPackets splits an Ogg stream into packets using each page's lacing
// table. A lacing value of 255 continues the packet into the next segment,
// on the following page if it is the last one. A truncated final page ends
// the stream.
func oggPackets(data []byte) ([][]byte, error) {
	const pageHeaderLen = 27

	var packets [][]byte
	var partial []byte
	for len(data) > 0 {
		if !bytes.HasPrefix(data, oggMagic) {
			return nil, fmt.Errorf("missing page capture pattern")
		}
		if len(data) < pageHeaderLen {
			break
		}
		segments := int(data[26])
		if len(data) < pageHeaderLen+segments {
			break
		}

		lacing := data[pageHeaderLen : pageHeaderLen+segments]
		body := data[pageHeaderLen+segments:]
		for _, l := range lacing {
			n := int(l)
			if len(body) < n {
				return packets, nil
			}
			partial = append(partial, body[:n]...)
			body = body[n:]
			if n < 255 {
				packets = append(packets, partial)
				partial = nil
			}
		}
		data = body
	}
	return packets, nil
}
