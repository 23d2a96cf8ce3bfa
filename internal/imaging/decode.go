package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultExtensions lists the file extensions treated as gallery images.
var DefaultExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".webp"}

// DecodeError reports an image that could not be read or parsed. ID is the
// caller's identifier for the image, usually its file name.
type DecodeError struct {
	ID  string
	Err error
}

func (e *DecodeError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("decode image: %v", e.Err)
	}
	return fmt.Sprintf("decode image %s: %v", e.ID, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode reads an encoded image and converts it to a Gray buffer.
func Decode(r io.Reader, id string) (*Gray, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, &DecodeError{ID: id, Err: err}
	}
	gray := FromImage(img)
	if err := gray.Validate(); err != nil {
		return nil, &DecodeError{ID: id, Err: err}
	}
	return gray, nil
}

// DecodeBytes is Decode over an in-memory payload.
func DecodeBytes(data []byte, id string) (*Gray, error) {
	return Decode(bytes.NewReader(data), id)
}

// DecodeFile opens and decodes path. Open failures are reported as
// DecodeError too so callers can exclude the file uniformly; the cause stays
// reachable through errors.Is.
func DecodeFile(path string) (*Gray, error) {
	id := filepath.Base(path)
	file, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{ID: id, Err: err}
	}
	defer file.Close()
	return Decode(file, id)
}

// IsImageFile reports whether name carries one of exts (case-insensitive).
// A nil exts uses DefaultExtensions.
func IsImageFile(name string, exts []string) bool {
	if exts == nil {
		exts = DefaultExtensions
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	return slices.Contains(exts, ext)
}
