package processor

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/abhirajadhikary06/voiceurresume/internal/errkind"
	"github.com/abhirajadhikary06/voiceurresume/internal/models"
)

// decodePhoto accepts PNG and JPEG stills
func decodePhoto(data []byte) (*models.PhotoImage, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errkind.Wrap(errkind.ErrUnsupportedFormat, "load", "photo", "not a PNG or JPEG image", err)
	}
	if format != "png" && format != "jpeg" {
		return nil, errkind.Wrap(errkind.ErrUnsupportedFormat, "load", "photo", fmt.Sprintf("photo format %s", format), nil)
	}
	return &models.PhotoImage{Image: img, Data: data, Format: format}, nil
}
