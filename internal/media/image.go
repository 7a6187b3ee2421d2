// Package media validates user-supplied images before they are stored inline
// as data URLs on players and matches.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageBytes is the largest decoded image accepted.
const MaxImageBytes = 5 << 20

var (
	ErrNotDataURL       = errors.New("image must be a base64 data URL")
	ErrBadEncoding      = errors.New("image data is not valid base64")
	ErrTooLarge         = fmt.Errorf("image exceeds %d MB", MaxImageBytes>>20)
	ErrUnsupportedImage = errors.New("image must be JPEG, PNG, WebP or GIF")
)

var allowed = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// Image is a decoded and sniffed upload.
type Image struct {
	MIME string
	Data []byte
}

// ParseDataURL decodes a "data:<mime>;base64,<payload>" string and checks its
// real content type by sniffing the bytes; the declared type is ignored.
func ParseDataURL(s string) (Image, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "data:")
	if !ok {
		return Image{}, ErrNotDataURL
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return Image{}, ErrNotDataURL
	}
	// Cheap upper bound before decoding.
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+2 {
		return Image{}, ErrTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrBadEncoding, err)
	}
	if len(data) > MaxImageBytes {
		return Image{}, ErrTooLarge
	}
	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowed...) {
		return Image{}, ErrUnsupportedImage
	}
	return Image{MIME: mt.String(), Data: data}, nil
}

// Validate checks an optional image field. nil and empty values are accepted
// and mean "no image".
func Validate(s *string) error {
	if s == nil || *s == "" {
		return nil
	}
	_, err := ParseDataURL(*s)
	return err
}
