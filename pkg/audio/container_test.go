// ABOUTME: Tests for container parsing and sniffing
// ABOUTME: Covers extensions, aliases, magic bytes and MIME types
package audio

import (
	"errors"
	"testing"
)

func TestParseContainer(t *testing.T) {
	tests := []struct {
		input    string
		expected Container
		wantErr  bool
	}{
		{"mp3", MP3, false},
		{".MP3", MP3, false},
		{"wav", WAV, false},
		{"wave", WAV, false},
		{"ogg", OGG, false},
		{"opus", OGG, false},
		{"flac", FLAC, false},
		{"aac", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, err := ParseContainer(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, c)
			}
		})
	}
}

func TestContainerFromPath(t *testing.T) {
	c, err := ContainerFromPath("en/lesson1.mp3")
	if err != nil || c != MP3 {
		t.Fatalf("expected mp3, got %s (%v)", c, err)
	}

	if _, err := ContainerFromPath("en/lesson1"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected Container
		ok       bool
	}{
		{"wav", []byte("RIFF\x24\x00\x00\x00WAVEfmt "), WAV, true},
		{"flac", []byte("fLaC\x00\x00\x00\x22"), FLAC, true},
		{"ogg", []byte("OggS\x00\x02"), OGG, true},
		{"id3", []byte("ID3\x04\x00"), MP3, true},
		{"frame sync", []byte{0xFF, 0xFB, 0x90, 0x64}, MP3, true},
		{"unknown", []byte("hello world"), "", false},
		{"short", []byte{0x00}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := Sniff(tt.data)
			if ok != tt.ok || c != tt.expected {
				t.Errorf("expected (%s, %v), got (%s, %v)", tt.expected, tt.ok, c, ok)
			}
		})
	}
}

func TestDetectFallsBackToSniffing(t *testing.T) {
	c, err := Detect("lessons/untitled", []byte("fLaC\x00\x00\x00\x22"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != FLAC {
		t.Errorf("expected flac, got %s", c)
	}

	if _, err := Detect("lessons/untitled", []byte("????")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestContainerContentType(t *testing.T) {
	if got := MP3.ContentType(); got != "audio/mp3" {
		t.Errorf("expected audio/mp3, got %s", got)
	}
	if got := FLAC.Ext(); got != ".flac" {
		t.Errorf("expected .flac, got %s", got)
	}
}
