package videogen

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// featherWidth is the fraction of the ellipse radius over which the pasted face fades out
const featherWidth = 0.25

func cropRGBA(src image.Image, r image.Rectangle) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), src, r.Min, draw.Src)
	return out
}

// blendFace scales face into target inside frame through an elliptical
// feathered mask. Pixels outside target are untouched.
func blendFace(frame *image.RGBA, face *image.RGBA, target image.Rectangle) {
	target = target.Intersect(frame.Bounds())
	if target.Empty() || face.Bounds().Empty() {
		return
	}

	scaled := image.NewRGBA(image.Rect(0, 0, target.Dx(), target.Dy()))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), face, face.Bounds(), draw.Src, nil)

	mask := ellipseMask(target.Dx(), target.Dy())
	draw.DrawMask(frame, target, scaled, image.Point{}, mask, image.Point{}, draw.Over)
}

// ellipseMask is opaque inside the inscribed ellipse and fades to transparent at its edge
func ellipseMask(w, h int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	cx, cy := float64(w)/2, float64(h)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := (float64(x) + 0.5 - cx) / cx
			dy := (float64(y) + 0.5 - cy) / cy
			d := math.Sqrt(dx*dx + dy*dy)

			a := (1 - d) / featherWidth
			if a > 1 {
				a = 1
			}
			if a < 0 {
				a = 0
			}
			mask.Pix[y*mask.Stride+x] = uint8(a * 255)
		}
	}
	return mask
}
