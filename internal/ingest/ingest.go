package ingest

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/lehigh-university-libraries/radassist/internal/models"
)

// Source identifies how the browser handed us the file
type Source string

const (
	SourceSelect Source = "select"
	SourceDrop   Source = "drop"
)

var (
	// ErrNotImage is returned for drops that do not declare an image MIME type.
	ErrNotImage = errors.New("dropped file is not an image")
	ErrTooLarge = errors.New("file too large")
)

// ReadError wraps a failure while reading the uploaded file
type ReadError struct {
	Filename string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Filename, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// ParseSource maps a form value onto a Source, defaulting to selection
func ParseSource(s string) Source {
	if Source(strings.ToLower(s)) == SourceDrop {
		return SourceDrop
	}
	return SourceSelect
}

type Ingester struct {
	// MaxBytes caps the file size; zero means unlimited.
	MaxBytes int64
}

func New(maxBytes int64) *Ingester {
	return &Ingester{MaxBytes: maxBytes}
}

// Encode reads r and returns the base64 encoded image with its MIME type
func (in *Ingester) Encode(ctx context.Context, r io.Reader, filename, declaredMIME string, src Source) (*models.UploadedImage, error) {
	declaredMIME = normalizeMIME(declaredMIME)
	if src == SourceDrop && !strings.HasPrefix(declaredMIME, "image/") {
		return nil, ErrNotImage
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader := r
	if in.MaxBytes > 0 {
		reader = io.LimitReader(r, in.MaxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &ReadError{Filename: filename, Err: err}
	}
	if in.MaxBytes > 0 && int64(len(data)) > in.MaxBytes {
		return nil, fmt.Errorf("%w (max %s)", ErrTooLarge, humanize.Bytes(uint64(in.MaxBytes)))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mimeType := declaredMIME
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = normalizeMIME(mimetype.Detect(data).String())
	}

	return &models.UploadedImage{
		Filename:   filename,
		MIMEType:   mimeType,
		Size:       int64(len(data)),
		UploadedAt: time.Now(),
		Data:       data,
		Encoded:    base64.StdEncoding.EncodeToString(data),
	}, nil
}

// Result carries the outcome of EncodeAsync
type Result struct {
	Image *models.UploadedImage
	Err   error
}

// EncodeAsync runs Encode in the background and delivers exactly one Result.
func (in *Ingester) EncodeAsync(ctx context.Context, r io.Reader, filename, declaredMIME string, src Source) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		img, err := in.Encode(ctx, r, filename, declaredMIME, src)
		out <- Result{Image: img, Err: err}
	}()
	return out
}

// normalizeMIME strips parameters such as "; charset=binary"
func normalizeMIME(m string) string {
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = m[:i]
	}
	return strings.ToLower(strings.TrimSpace(m))
}
