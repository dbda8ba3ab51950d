package application

import (
	"bytes"
	"context"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/sngm3741/store-finder/api/internal/catalog/domain"
)

// PhotoWidth is the width every stored photo is bounded to.
const PhotoWidth = 800

// encodable maps accepted MIME subtypes to the encoder format.
var encodable = map[string]imaging.Format{
	"jpeg": imaging.JPEG,
	"jpg":  imaging.JPEG,
	"png":  imaging.PNG,
	"gif":  imaging.GIF,
	"bmp":  imaging.BMP,
	"tiff": imaging.TIFF,
}

// MediaIngestor turns an upload into a stored, resized photo.
type MediaIngestor struct {
	storage PhotoStorage
	width   int
}

// NewMediaIngestor creates an ingestor writing to storage.
func NewMediaIngestor(storage PhotoStorage) *MediaIngestor {
	return &MediaIngestor{storage: storage, width: PhotoWidth}
}

// Ingest validates, resizes and stores the upload and returns the stored filename.
// A nil upload is a no-op: the caller keeps whatever photo it already has.
// The filename is only returned after the write has completed.
func (m *MediaIngestor) Ingest(ctx context.Context, upload *Upload) (string, error) {
	if upload == nil {
		return "", nil
	}

	ext, format, err := photoFormat(upload.MIMEType)
	if err != nil {
		return "", err
	}

	img, err := imaging.Decode(bytes.NewReader(upload.Data), imaging.AutoOrientation(true))
	if err != nil {
		return "", domain.NewUnsupportedMediaTypeError(upload.MIMEType)
	}

	// Smaller images keep their size; only wider ones are scaled down.
	if img.Bounds().Dx() > m.width {
		img = imaging.Resize(img, m.width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		return "", domain.NewUnsupportedMediaTypeError(upload.MIMEType)
	}

	name := uuid.NewString() + "." + ext
	if err := m.storage.Save(ctx, name, buf.Bytes()); err != nil {
		return "", domain.NewStorageWriteError(err)
	}
	return name, nil
}

// Discard removes a stored photo that ended up unreferenced.
func (m *MediaIngestor) Discard(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	return m.storage.Delete(ctx, name)
}

// photoFormat resolves the file extension and encoder from a declared MIME type.
func photoFormat(mimeType string) (string, imaging.Format, error) {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if !strings.HasPrefix(mt, "image/") {
		return "", 0, domain.NewUnsupportedMediaTypeError(mimeType)
	}
	ext := strings.TrimPrefix(mt, "image/")
	format, ok := encodable[ext]
	if !ok {
		return "", 0, domain.NewUnsupportedMediaTypeError(mimeType)
	}
	return ext, format, nil
}
