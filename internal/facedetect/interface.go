package facedetect

import (
	"context"
	"image"
)

// Face is one detected face, as a square region of the image
type Face struct {
	Rect  image.Rectangle
	Score float32
}

// Detector finds faces in still images and video frames
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]Face, error)
	Close() error
}
