package objectstore

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"
)

// AvatarSize is the edge length of stored avatars, in pixels.
const AvatarSize = 256

// MaxAvatarBytes bounds the accepted upload size.
const MaxAvatarBytes = 5 << 20

// MaxAvatarPixels bounds the decoded canvas, checked from the header before
// decoding.
const MaxAvatarPixels = 4096 * 4096

var ErrInvalidImage = errors.New("invalid image")

// Crop is the rectangle the member picked, in source image pixels.
type Crop struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (c Crop) rect() image.Rectangle {
	return image.Rect(c.X, c.Y, c.X+c.Width, c.Y+c.Height)
}

// ProcessAvatar crops data to crop, or to a centered square when crop is nil,
// scales it to AvatarSize and re-encodes it as JPEG.
func ProcessAvatar(data []byte, crop *Crop) ([]byte, error) {
	if len(data) > MaxAvatarBytes {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrInvalidImage, MaxAvatarBytes)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxAvatarPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidImage, cfg.Width, cfg.Height, MaxAvatarPixels)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	var cropped image.Image
	if crop != nil {
		r := crop.rect().Intersect(bounds)
		if r.Empty() {
			return nil, fmt.Errorf("%w: crop outside image", ErrInvalidImage)
		}
		cropped = imaging.Crop(img, r)
	} else {
		side := min(bounds.Dx(), bounds.Dy())
		cropped = imaging.CropCenter(img, side, side)
	}

	avatar := imaging.Resize(cropped, AvatarSize, AvatarSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, avatar, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}

// AvatarName is the object name for a member's avatar uploaded at t.
func AvatarName(userID string, t time.Time) string {
	return fmt.Sprintf("%s-%d.jpg", userID, t.UnixMilli())
}
