package reports

import (
	"bytes"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype/matchers"
	"github.com/h2non/filetype/types"
)

const jpegQuality = 90

// stripMetadata re-encodes JPEG photos so EXIF blocks (camera serials, GPS
// position) never leave the server. The orientation tag is applied to the
// pixels first. Other formats are returned unchanged.
func stripMetadata(data []byte, kind types.Type) ([]byte, error) {
	if kind != matchers.TypeJpeg {
		return data, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
