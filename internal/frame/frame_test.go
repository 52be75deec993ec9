package frame

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/klingon-exchange/ledgerd/internal/ledger"
)

func TestWriteThenReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	payload := []byte("hello ledger")
	if err := WriteFrame(w, payload); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func TestWriteZeroLengthFrameRejected(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, nil); !ledger.Is(err, ledger.TransportError) {
		t.Fatalf("expected TransportError writing empty frame, got %v", err)
	}
}

func TestReadZeroLengthFrameRejected(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0})
	if _, err := ReadFrame(&buf); !ledger.Is(err, ledger.TransportError) {
		t.Fatalf("expected TransportError reading a zero-length frame, got %v", err)
	}
}

func TestReadShortFrameIsTransportError(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 10}) // declares 10 bytes, supplies none
	if _, err := ReadFrame(&buf); !ledger.Is(err, ledger.TransportError) {
		t.Fatalf("expected TransportError on short read, got %v", err)
	}
}

func TestReadOversizeFrameRejected(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	if _, err := ReadFrame(&buf); !ledger.Is(err, ledger.TransportError) {
		t.Fatalf("expected TransportError on oversize frame, got %v", err)
	}
}

func TestMultipleFramesInSequence(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	messages := [][]byte{[]byte("one"), []byte("two"), []byte("three")}
	for _, m := range messages {
		if err := WriteFrame(w, m); err != nil {
			t.Fatalf("WriteFrame(%q): %v", m, err)
		}
	}

	for _, want := range messages {
		got, err := ReadFrame(&buf)
		if err != nil {
			t.Fatalf("ReadFrame: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
}
