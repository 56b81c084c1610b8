package facedetect

import (
	"context"
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"

	"github.com/abhirajadhikary06/voiceurresume/internal/lazymodel"
	"github.com/abhirajadhikary06/voiceurresume/internal/logger"
)

const (
	// minQuality drops weak cascade hits
	minQuality   = 5.0
	iouThreshold = 0.2
)

type implDetector struct {
	classifier *lazymodel.Model[*pigo.Pigo]
	minSize    int
	logger     logger.Logger
}

// New creates a pigo Detector. The cascade is read and unpacked on first use
// and shared afterwards; an unpacked classifier is read-only, so one Detector
// may serve concurrent callers.
func New(cascadePath string, minFaceSize int, log logger.Logger) Detector {
	if minFaceSize <= 0 {
		minFaceSize = 40
	}
	return &implDetector{
		classifier: lazymodel.New(func(ctx context.Context) (*pigo.Pigo, error) {
			data, err := os.ReadFile(cascadePath)
			if err != nil {
				return nil, fmt.Errorf("read cascade: %w", err)
			}
			classifier, err := pigo.NewPigo().Unpack(data)
			if err != nil {
				return nil, fmt.Errorf("unpack cascade: %w", err)
			}
			log.Info(ctx, "Face cascade loaded: %s", cascadePath)
			return classifier, nil
		}, nil),
		minSize: minFaceSize,
		logger:  log,
	}
}

// Detect returns the faces found in img, strongest first
func (d *implDetector) Detect(ctx context.Context, img image.Image) ([]Face, error) {
	classifier, err := d.classifier.Get(ctx)
	if err != nil {
		return nil, err
	}

	src := pigo.ImgToNRGBA(img)
	pixels := pigo.RgbToGrayscale(src)
	cols, rows := src.Bounds().Dx(), src.Bounds().Dy()

	maxSize := cols
	if rows < maxSize {
		maxSize = rows
	}
	if maxSize < d.minSize {
		return nil, nil
	}

	params := pigo.CascadeParams{
		MinSize:     d.minSize,
		MaxSize:     maxSize,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := classifier.RunCascade(params, 0.0)
	dets = classifier.ClusterDetections(dets, iouThreshold)

	origin := img.Bounds().Min
	var faces []Face
	for _, det := range dets {
		if det.Q < minQuality {
			continue
		}
		half := det.Scale / 2
		r := image.Rect(det.Col-half, det.Row-half, det.Col+half, det.Row+half).Add(origin)
		faces = append(faces, Face{Rect: r.Intersect(img.Bounds()), Score: det.Q})
	}
	sortByScore(faces)
	return faces, nil
}

// Close drops the unpacked cascade
func (d *implDetector) Close() error {
	return d.classifier.Close()
}
