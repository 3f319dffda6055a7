// ABOUTME: Audio container enumeration
// ABOUTME: Parses, sniffs and describes the supported file containers
package audio

import (
	"bytes"
	"fmt"
	"path"
	"strings"
)

// Container identifies an audio file container
type Container string

const (
	MP3  Container = "mp3"
	WAV  Container = "wav"
	OGG  Container = "ogg"
	FLAC Container = "flac"
)

// Containers lists every container the service can decode and encode
var Containers = []Container{MP3, WAV, OGG, FLAC}

// ParseContainer converts a name such as "mp3" or ".MP3" to a Container
func ParseContainer(name string) (Container, error) {
	c := Container(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "."))
	switch c {
	case MP3, WAV, OGG, FLAC:
		return c, nil
	case "oga", "opus":
		return OGG, nil
	case "wave":
		return WAV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// ContainerFromPath derives the container from a file extension
func ContainerFromPath(p string) (Container, error) {
	ext := path.Ext(p)
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, p)
	}
	return ParseContainer(ext)
}

// Sniff detects the container from the leading bytes of a file
func Sniff(data []byte) (Container, bool) {
	switch {
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return WAV, true
	case len(data) >= 4 && bytes.Equal(data[0:4], []byte("fLaC")):
		return FLAC, true
	case len(data) >= 4 && bytes.Equal(data[0:4], []byte("OggS")):
		return OGG, true
	case len(data) >= 3 && bytes.Equal(data[0:3], []byte("ID3")):
		return MP3, true
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		// MPEG audio frame sync
		return MP3, true
	}
	return "", false
}

// Detect returns the container declared by the path, falling back to sniffing
func Detect(p string, data []byte) (Container, error) {
	if c, err := ContainerFromPath(p); err == nil {
		return c, nil
	}
	if c, ok := Sniff(data); ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: cannot determine container of %s", ErrUnsupportedFormat, p)
}

// ContentType returns the MIME type served for the container
func (c Container) ContentType() string {
	return "audio/" + string(c)
}

// Ext returns the file extension including the leading dot
func (c Container) Ext() string {
	return "." + string(c)
}

func (c Container) String() string {
	return string(c)
}
