// Package mediasvc stores the photos attached to activities.
package mediasvc

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/planitkids/fritids/core"
	"github.com/planitkids/fritids/core/activity"
)

const photosDir = "photos"

var ErrNotAnImage = errors.New("the uploaded file is not a supported image")

// LocalStore saves photos under a directory served at baseURL.
// Photos wider than maxWidth are downscaled.
type LocalStore struct {
	dir      string
	baseURL  string
	maxWidth int
}

func NewLocalStore(conf *core.Config) *LocalStore {
	return &LocalStore{dir: conf.Media.Dir, baseURL: conf.Media.BaseURL, maxWidth: conf.Media.MaxPhotoWidth}
}

// Dir is the root directory of the store.
func (s *LocalStore) Dir() string { return s.dir }

// Save decodes r, normalises its orientation and size and stores it as a JPEG. It returns the public URI.
func (s *LocalStore) Save(ctx context.Context, r io.Reader) (string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", core.NewValidationError(ErrNotAnImage, core.FieldError{Field: "photo", Error: ErrNotAnImage.Error()})
	}
	if s.maxWidth > 0 && img.Bounds().Dx() > s.maxWidth {
		img = imaging.Resize(img, s.maxWidth, 0, imaging.Lanczos)
	}
	if err = ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(s.dir, photosDir)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating photos dir")
	}
	name := uuid.New().String() + ".jpg"
	if err = imaging.Save(img, filepath.Join(dir, name), imaging.JPEGQuality(85)); err != nil {
		return "", errors.Wrap(err, "saving photo")
	}
	return s.baseURL + "/" + photosDir + "/" + name, nil
}

// UploadPicker picks the photo uploaded with a request.
type UploadPicker struct {
	store *LocalStore
	file  io.Reader
}

var _ activity.PhotoPicker = (*UploadPicker)(nil)

// NewUploadPicker returns a picker over file. A nil file means nothing was selected.
func NewUploadPicker(store *LocalStore, file io.Reader) *UploadPicker {
	return &UploadPicker{store: store, file: file}
}

// RequestPermission is refused when no photo storage is configured.
func (p *UploadPicker) RequestPermission(context.Context) (bool, error) {
	return p.store != nil && p.store.dir != "", nil
}

func (p *UploadPicker) Pick(ctx context.Context) (string, bool, error) {
	if p.file == nil {
		return "", false, nil
	}
	uri, err := p.store.Save(ctx, p.file)
	if err != nil {
		return "", false, err
	}
	return uri, true, nil
}

// URIPicker picks a photo already hosted elsewhere.
type URIPicker string

var _ activity.PhotoPicker = URIPicker("")

func (p URIPicker) RequestPermission(context.Context) (bool, error) { return true, nil }

func (p URIPicker) Pick(context.Context) (string, bool, error) {
	uri := core.CleanString(string(p))
	return uri, uri != "", nil
}
