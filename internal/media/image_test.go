package media_test

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/bongo-stats-service/internal/media"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func dataURL(mime string, b []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(b)
}

func TestParseDataURL(t *testing.T) {
	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")
	tests := []struct {
		name     string
		in       string
		wantMIME string
		wantErr  error
	}{
		{name: "png", in: dataURL("image/png", pngHeader), wantMIME: "image/png"},
		{name: "declared type is ignored", in: dataURL("image/jpeg", gif), wantMIME: "image/gif"},
		{name: "plain url", in: "https://example.com/a.png", wantErr: media.ErrNotDataURL},
		{name: "not base64 marked", in: "data:image/png," + string(pngHeader), wantErr: media.ErrNotDataURL},
		{name: "bad payload", in: "data:image/png;base64,!!!", wantErr: media.ErrBadEncoding},
		{name: "text is not an image", in: dataURL("image/png", []byte("hello world")), wantErr: media.ErrUnsupportedImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := media.ParseDataURL(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMIME, img.MIME)
		})
	}
}

func TestParseDataURL_TooLarge(t *testing.T) {
	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, media.MaxImageBytes)...)
	_, err := media.ParseDataURL(dataURL("image/png", big))
	assert.ErrorIs(t, err, media.ErrTooLarge)
}

func TestValidate_EmptyMeansNoImage(t *testing.T) {
	empty := ""
	assert.NoError(t, media.Validate(nil))
	assert.NoError(t, media.Validate(&empty))
	bad := "nope"
	assert.Error(t, media.Validate(&bad))
}
