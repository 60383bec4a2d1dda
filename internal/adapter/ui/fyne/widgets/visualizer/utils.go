package visualizer

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// DrawingUtils provides the raster operations the point field needs.
type DrawingUtils struct{}

// FillBackground fills the image with a solid color.
func (DrawingUtils) FillBackground(img *image.RGBA, col color.Color) {
	draw.Draw(img, img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

// DrawFilledCircle draws a filled circle centered at a sub-pixel position.
// A pixel is covered when its center lies inside the circle. Translucent
// colors are blended over what is already there.
func (DrawingUtils) DrawFilledCircle(img *image.RGBA, cx, cy, radius float64, col color.Color) {
	if radius <= 0 || math.IsNaN(cx) || math.IsNaN(cy) {
		return
	}

	src := color.RGBAModel.Convert(col).(color.RGBA)
	if src.A == 0 {
		return
	}

	bounds := img.Bounds()
	x0 := max(bounds.Min.X, int(math.Floor(cx-radius)))
	x1 := min(bounds.Max.X-1, int(math.Ceil(cx+radius)))
	y0 := max(bounds.Min.Y, int(math.Floor(cy-radius)))
	y1 := min(bounds.Max.Y-1, int(math.Ceil(cy+radius)))

	r2 := radius * radius
	for y := y0; y <= y1; y++ {
		dy := float64(y) + 0.5 - cy
		for x := x0; x <= x1; x++ {
			dx := float64(x) + 0.5 - cx
			if dx*dx+dy*dy > r2 {
				continue
			}
			if src.A == 0xff {
				img.SetRGBA(x, y, src)
			} else {
				img.SetRGBA(x, y, over(src, img.RGBAAt(x, y)))
			}
		}
	}
}

// over composites premultiplied src over dst.
func over(src, dst color.RGBA) color.RGBA {
	k := uint32(0xff - src.A)
	return color.RGBA{
		R: uint8(uint32(src.R) + uint32(dst.R)*k/0xff),
		G: uint8(uint32(src.G) + uint32(dst.G)*k/0xff),
		B: uint8(uint32(src.B) + uint32(dst.B)*k/0xff),
		A: uint8(uint32(src.A) + uint32(dst.A)*k/0xff),
	}
}

// GetGradientColor returns a color from a green-yellow-red gradient based on
// level (0.0 to 1.0).
func (DrawingUtils) GetGradientColor(level float64) color.RGBA {
	level = math.Max(0, math.Min(1, level))

	var r, g uint8
	if level < 0.5 {
		r = uint8(level * 2 * 255)
		g = 255
	} else {
		r = 255
		g = uint8((1 - (level-0.5)*2) * 255)
	}

	return color.RGBA{R: r, G: g, B: 0, A: 255}
}
