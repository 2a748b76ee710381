package demoserver

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// Faceplate dimensions match the deck's --w and --h.
const (
	FaceplateWidth  = 700
	FaceplateHeight = 218
)

// Faceplate renders a flat stand-in for the Alpine faceplate artwork: a dark
// body with a lighter display window where the ticker scrolls.
func Faceplate() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, FaceplateWidth, FaceplateHeight))
	body := color.RGBA{R: 0x22, G: 0x22, B: 0x26, A: 0xff}
	window := color.RGBA{R: 0x0b, G: 0x2a, B: 0x33, A: 0xff}

	for y := 0; y < FaceplateHeight; y++ {
		for x := 0; x < FaceplateWidth; x++ {
			c := body
			if x >= 230 && x < 510 && y >= 60 && y < 120 {
				c = window
			}
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
