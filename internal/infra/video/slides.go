package video

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"os"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	slideWidth  = 640
	slideHeight = 480
	textScale   = 4
)

// Slide is one rendered image of the slideshow.
type Slide struct {
	Keyword    string
	Background color.RGBA
	Path       string
}

// inverse returns the colour complement used for the keyword text.
func inverse(c color.RGBA) color.RGBA {
	return color.RGBA{R: 255 - c.R, G: 255 - c.G, B: 255 - c.B, A: 255}
}

// renderSlide draws keyword centred on a solid background. The 7x13 bitmap
// face is rendered small and scaled up with nearest-neighbour sampling.
func renderSlide(keyword string, bg color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, slideWidth, slideHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, keyword).Ceil()
	textHeight := face.Height
	if textWidth == 0 {
		return img
	}

	scale := textScale
	for scale > 1 && textWidth*scale > slideWidth-20 {
		scale--
	}

	label := image.NewRGBA(image.Rect(0, 0, textWidth, textHeight))
	draw.Draw(label, label.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  label,
		Src:  &image.Uniform{C: inverse(bg)},
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(keyword)

	w, h := textWidth*scale, textHeight*scale
	x0 := (slideWidth - w) / 2
	y0 := (slideHeight - h) / 2
	dst := image.Rect(x0, y0, x0+w, y0+h).Intersect(img.Bounds())
	draw.NearestNeighbor.Scale(img, dst, label, label.Bounds(), draw.Src, nil)
	return img
}

// generateSlides renders count slides, each showing a keyword picked at random
// on a random background, and saves them with pathFor(i).
func generateSlides(keywords []string, count int, rng *rand.Rand, pathFor func(int) string) ([]Slide, error) {
	if len(keywords) == 0 {
		keywords = []string{"news"}
	}

	slides := make([]Slide, 0, count)
	for i := 0; i < count; i++ {
		keyword := keywords[rng.IntN(len(keywords))]
		bg := color.RGBA{R: uint8(rng.IntN(256)), G: uint8(rng.IntN(256)), B: uint8(rng.IntN(256)), A: 255}
		path := pathFor(i)

		if err := savePNG(path, renderSlide(keyword, bg)); err != nil {
			return nil, err
		}
		slides = append(slides, Slide{Keyword: keyword, Background: bg, Path: path})
	}
	return slides, nil
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create slide: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode slide: %w", err)
	}
	return f.Close()
}
