package storage

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"missionhub/pkg/config"
	"missionhub/pkg/models"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type nopCloser struct{ *bytes.Reader }

func (nopCloser) Close() error { return nil }

func upload(name string, data []byte) models.Upload {
	return models.Upload{
		Filename: name,
		Size:     int64(len(data)),
		Open: func() (io.ReadSeekCloser, error) {
			return nopCloser{bytes.NewReader(data)}, nil
		},
	}
}

func TestSniffRewinds(t *testing.T) {
	r := bytes.NewReader(pngHeader)
	mt, err := Sniff(r)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mt.String())

	pos, err := r.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Zero(t, pos)
}

func TestAccepted(t *testing.T) {
	png, err := Sniff(bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.True(t, Accepted(png))

	text, err := Sniff(bytes.NewReader([]byte("just some notes")))
	require.NoError(t, err)
	assert.False(t, Accepted(text))
}

func TestObjectKey(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	png, err := Sniff(bytes.NewReader(pngHeader))
	require.NoError(t, err)

	tests := []struct {
		name     string
		filename string
		wantExt  string
	}{
		{"known extension kept", "Holiday.JPG", "jpg"},
		{"unknown extension replaced", "upload.bin", "png"},
		{"no extension uses sniffed", "camera", "png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := ObjectKey("user-1", tt.filename, png, at)
			assert.Regexp(t, regexp.MustCompile(`^user-1/1700000000123-[0-9a-f-]{8}\.`+tt.wantExt+`$`), key)
		})
	}
}

func TestUploadRejectsOversize(t *testing.T) {
	s := &MediaStore{maxBytes: 4, now: time.Now}
	_, err := s.Upload(context.Background(), "u", upload("a.png", pngHeader))
	assert.ErrorIs(t, err, models.ErrMediaRejected)
}

func TestUploadRejectsNonMedia(t *testing.T) {
	s := &MediaStore{now: time.Now}
	_, err := s.Upload(context.Background(), "u", upload("notes.png", []byte("plain text pretending")))
	assert.ErrorIs(t, err, models.ErrMediaRejected)
}

func TestNewWithoutEndpoint(t *testing.T) {
	s, err := New(context.Background(), config.StorageConfig{}, 0)
	require.NoError(t, err)
	assert.Nil(t, s)
}
