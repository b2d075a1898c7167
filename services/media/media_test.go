package mediasvc

import (
	"bytes"
	"context"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planitkids/fritids/core"
)

func pngBytes(t *testing.T, w, h int) *bytes.Buffer {
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(w, h, color.White), imaging.PNG))
	return &buf
}

func TestLocalStore_Save(t *testing.T) {
	dir := t.TempDir()
	s := &LocalStore{dir: dir, baseURL: "http://localhost:8000/media", maxWidth: 100}

	tests := []struct {
		name      string
		w, h      int
		wantWidth int
	}{
		{name: "downscaled", w: 400, h: 200, wantWidth: 100},
		{name: "kept", w: 80, h: 40, wantWidth: 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uri, err := s.Save(context.Background(), pngBytes(t, tt.w, tt.h))
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(uri, "http://localhost:8000/media/photos/"), uri)

			img, err := imaging.Open(filepath.Join(dir, photosDir, filepath.Base(uri)))
			require.NoError(t, err)
			assert.Equal(t, tt.wantWidth, img.Bounds().Dx())
		})
	}

	_, err := s.Save(context.Background(), strings.NewReader("not an image"))
	assert.True(t, core.IsValidationError(err))
}

func TestUploadPicker(t *testing.T) {
	ctx := context.Background()
	s := &LocalStore{dir: t.TempDir(), baseURL: "/media"}

	granted, err := NewUploadPicker(nil, nil).RequestPermission(ctx)
	require.NoError(t, err)
	assert.False(t, granted)

	p := NewUploadPicker(s, nil)
	granted, _ = p.RequestPermission(ctx)
	assert.True(t, granted)
	_, ok, err := p.Pick(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	uri, ok, err := NewUploadPicker(s, pngBytes(t, 10, 10)).Pick(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, strings.HasPrefix(uri, "/media/photos/"))

	uri, ok, _ = URIPicker(" https://example.com/a.jpg ").Pick(ctx)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/a.jpg", uri)
	_, ok, _ = URIPicker("").Pick(ctx)
	assert.False(t, ok)
}
