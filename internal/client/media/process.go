package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"time"

	xdraw "golang.org/x/image/draw"

	"partner-media-backend/internal/mediarules"
)

const thumbMaxDim = 480

// photoMaxBytes is the post-compression cap; tests lower it.
var photoMaxBytes int64 = mediarules.PhotoMaxBytes

// PreparedImage is a photo ready for upload: main re-encoded JPEG plus a
// small thumbnail.
type PreparedImage struct {
	Main   []byte
	Thumb  []byte
	Width  int
	Height int
	Mime   string
}

// PrepareImage decodes, downscales to the dimension cap, and re-encodes a
// photo as JPEG. The result must fit the size cap or the photo is rejected.
func PrepareImage(data []byte) (*PreparedImage, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	scaled := scaleDown(src, mediarules.PhotoMaxDim)
	main, err := encodeJPEG(scaled, mediarules.PhotoQuality)
	if err != nil {
		return nil, err
	}
	if int64(len(main)) > photoMaxBytes {
		return nil, ErrImageTooLarge
	}

	thumb, err := encodeJPEG(scaleDown(scaled, thumbMaxDim), mediarules.PhotoQuality)
	if err != nil {
		return nil, err
	}

	bounds := scaled.Bounds()
	return &PreparedImage{
		Main:   main,
		Thumb:  thumb,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Mime:   "image/jpeg",
	}, nil
}

// ValidateVideo checks a video against the size and duration caps before
// any bytes leave the device.
func ValidateVideo(size int64, duration time.Duration) error {
	if duration > mediarules.VideoMaxDuration {
		return ErrVideoTooLong
	}
	if size > mediarules.VideoMaxBytes {
		return ErrVideoTooLarge
	}
	return nil
}

// scaleDown shrinks img so its longer edge is at most maxDim. Images
// already within the cap are returned unchanged.
func scaleDown(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	var nw, nh int
	if w >= h {
		nw = maxDim
		nh = h * maxDim / w
	} else {
		nh = maxDim
		nw = w * maxDim / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
