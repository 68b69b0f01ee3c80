// Package debugview turns a wave buffer readback into images for
// inspection. Nothing here runs on the simulation path.
package debugview

import (
	"fmt"
	"image"
	"image/color"

	"CartoonSea/internal/sea"

	"github.com/go-gl/mathgl/mgl32"
)

func checkBuffer(buf []float32, w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("image size %dx%d must be positive", w, h)
	}
	if len(buf) < w*h*sea.TexelStride {
		return fmt.Errorf("buffer holds %d floats, need %d", len(buf), w*h*sea.TexelStride)
	}
	return nil
}

// heightByte maps [-amplitude, amplitude] to [0, 255].
func heightByte(v, amplitude float32) uint8 {
	if amplitude <= 0 {
		return 128
	}
	t := (v/amplitude + 1) / 2
	return uint8(mgl32.Clamp(t, 0, 1)*255 + 0.5)
}

// HeightImage isolates the height channel into a grayscale image. Row z of
// the grid becomes image row z.
func HeightImage(buf []float32, w, h int, amplitude float32) (*image.Gray, error) {
	if err := checkBuffer(buf, w, h); err != nil {
		return nil, err
	}
	img := image.NewGray(image.Rect(0, 0, w, h))
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			v := buf[(x+z*w)*sea.TexelStride+3]
			img.Pix[z*img.Stride+x] = heightByte(v, amplitude)
		}
	}
	return img, nil
}

// NormalImage maps normals from [-1, 1] to RGB.
func NormalImage(buf []float32, w, h int) (*image.RGBA, error) {
	if err := checkBuffer(buf, w, h); err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			o := (x + z*w) * sea.TexelStride
			img.SetRGBA(x, z, color.RGBA{
				R: heightByte(buf[o], 1),
				G: heightByte(buf[o+1], 1),
				B: heightByte(buf[o+2], 1),
				A: 255,
			})
		}
	}
	return img, nil
}

// Shade writes RGBA pixels into dst, blending from deep to shallow color by
// height. dst must hold w*h*4 bytes.
func Shade(dst []byte, buf []float32, w, h int, amplitude float32, deep, shallow mgl32.Vec4) error {
	if err := checkBuffer(buf, w, h); err != nil {
		return err
	}
	if len(dst) < w*h*4 {
		return fmt.Errorf("pixel buffer holds %d bytes, need %d", len(dst), w*h*4)
	}
	for i := 0; i < w*h; i++ {
		t := float32(heightByte(buf[i*sea.TexelStride+3], amplitude)) / 255
		c := deep.Mul(1 - t).Add(shallow.Mul(t))
		dst[i*4] = uint8(mgl32.Clamp(c.X(), 0, 1) * 255)
		dst[i*4+1] = uint8(mgl32.Clamp(c.Y(), 0, 1) * 255)
		dst[i*4+2] = uint8(mgl32.Clamp(c.Z(), 0, 1) * 255)
		dst[i*4+3] = 255
	}
	return nil
}
