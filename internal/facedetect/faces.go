package facedetect

import (
	"image"
	"sort"
)

func sortByScore(faces []Face) {
	sort.SliceStable(faces, func(i, j int) bool { return faces[i].Score > faces[j].Score })
}

// Largest returns the face with the biggest area; ties keep the earlier face
func Largest(faces []Face) (Face, bool) {
	if len(faces) == 0 {
		return Face{}, false
	}
	best := faces[0]
	for _, f := range faces[1:] {
		if area(f.Rect) > area(best.Rect) {
			best = f
		}
	}
	return best, true
}

// Expand grows r by margin (a fraction of its size) on every side, clipped to bounds
func Expand(r image.Rectangle, margin float64, bounds image.Rectangle) image.Rectangle {
	dx := int(float64(r.Dx()) * margin)
	dy := int(float64(r.Dy()) * margin)
	return image.Rect(r.Min.X-dx, r.Min.Y-dy, r.Max.X+dx, r.Max.Y+dy).Intersect(bounds)
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}
