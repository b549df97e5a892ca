package ingest

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("disk unplugged")
}

func TestEncode(t *testing.T) {
	in := New(0)
	img, err := in.Encode(context.Background(), bytes.NewReader(pngHeader), "scan.png", "image/png", SourceSelect)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.MIMEType != "image/png" {
		t.Errorf("Expected image/png, got %s", img.MIMEType)
	}
	if img.Encoded != base64.StdEncoding.EncodeToString(pngHeader) {
		t.Errorf("Encoded data does not match input")
	}
	if img.Size != int64(len(pngHeader)) {
		t.Errorf("Expected size %d, got %d", len(pngHeader), img.Size)
	}
	if !strings.HasPrefix(img.DataURL(), "data:image/png;base64,") {
		t.Errorf("Unexpected data URL prefix: %s", img.DataURL()[:30])
	}
}

func TestEncodeSourceFiltering(t *testing.T) {
	tests := []struct {
		name     string
		mime     string
		src      Source
		wantErr  error
		wantMIME string
	}{
		{
			name:    "drop of text file is ignored",
			mime:    "text/plain",
			src:     SourceDrop,
			wantErr: ErrNotImage,
		},
		{
			name:    "drop with no declared type is ignored",
			mime:    "",
			src:     SourceDrop,
			wantErr: ErrNotImage,
		},
		{
			name:     "drop of image is accepted",
			mime:     "image/jpeg",
			src:      SourceDrop,
			wantMIME: "image/jpeg",
		},
		{
			name:     "selection is not filtered",
			mime:     "application/pdf",
			src:      SourceSelect,
			wantMIME: "application/pdf",
		},
		{
			name:     "selection without type is sniffed",
			mime:     "",
			src:      SourceSelect,
			wantMIME: "image/png",
		},
		{
			name:     "octet-stream is sniffed",
			mime:     "application/octet-stream",
			src:      SourceSelect,
			wantMIME: "image/png",
		},
		{
			name:     "parameters are stripped",
			mime:     "IMAGE/PNG; charset=binary",
			src:      SourceDrop,
			wantMIME: "image/png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := New(0).Encode(context.Background(), bytes.NewReader(pngHeader), "f", tt.mime, tt.src)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if img.MIMEType != tt.wantMIME {
				t.Errorf("Expected %s, got %s", tt.wantMIME, img.MIMEType)
			}
		})
	}
}

func TestEncodeSizeLimit(t *testing.T) {
	in := New(10)

	if _, err := in.Encode(context.Background(), bytes.NewReader(make([]byte, 10)), "ok.png", "image/png", SourceSelect); err != nil {
		t.Fatalf("file at the limit should be accepted: %v", err)
	}

	_, err := in.Encode(context.Background(), bytes.NewReader(make([]byte, 11)), "big.png", "image/png", SourceSelect)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Expected ErrTooLarge, got %v", err)
	}
}

func TestEncodeReadError(t *testing.T) {
	_, err := New(0).Encode(context.Background(), failingReader{}, "scan.png", "image/png", SourceSelect)

	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("Expected *ReadError, got %T (%v)", err, err)
	}
	if readErr.Filename != "scan.png" {
		t.Errorf("Expected filename scan.png, got %s", readErr.Filename)
	}
}

func TestEncodeCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(0).Encode(ctx, bytes.NewReader(pngHeader), "scan.png", "image/png", SourceSelect)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestEncodeAsync(t *testing.T) {
	res := <-New(0).EncodeAsync(context.Background(), bytes.NewReader(pngHeader), "scan.png", "image/png", SourceSelect)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Image == nil || res.Image.Filename != "scan.png" {
		t.Fatalf("Expected encoded image, got %+v", res.Image)
	}

	res = <-New(0).EncodeAsync(context.Background(), failingReader{}, "scan.png", "image/png", SourceSelect)
	var readErr *ReadError
	if !errors.As(res.Err, &readErr) {
		t.Fatalf("Expected *ReadError, got %v", res.Err)
	}
}

func TestParseSource(t *testing.T) {
	if ParseSource("drop") != SourceDrop {
		t.Error("Expected drop")
	}
	if ParseSource("DROP") != SourceDrop {
		t.Error("Expected case-insensitive drop")
	}
	if ParseSource("") != SourceSelect {
		t.Error("Expected select by default")
	}
}
