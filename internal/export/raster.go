package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/oakwood-commons/jsondiff/internal/differ"
)

// Raster layout, in pixels.
const (
	margin     = 24
	lineHeight = 16
	maxColumns = 140
	legendBox  = 10
)

var (
	colorBackground = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	colorText       = color.RGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff}
	colorMuted      = color.RGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff}
	colorRemovedBg  = color.RGBA{R: 0xfe, G: 0xe2, B: 0xe2, A: 0xff}
	colorRemovedFg  = color.RGBA{R: 0x99, G: 0x1b, B: 0x1b, A: 0xff}
	colorAddedBg    = color.RGBA{R: 0xdc, G: 0xfc, B: 0xe7, A: 0xff}
	colorAddedFg    = color.RGBA{R: 0x16, G: 0x65, B: 0x34, A: 0xff}
)

// maxRasterPixels bounds the image Raster allocates.
var maxRasterPixels = 16 << 20

// ErrTooLarge is returned when a report would not fit the pixel budget.
var ErrTooLarge = errors.New("export: report too large to rasterize")

// Raster draws the title, timestamp, legend and the diff lines onto one
// image. Lines wider than the panel are truncated; long reports are folded
// and cut as rasterLines describes.
func Raster(r Report) (*image.RGBA, error) {
	face := basicfont.Face7x13
	charW := face.Advance
	lines := r.rasterLines()

	cols := runewidth.StringWidth(r.title())
	for _, l := range lines {
		cols = max(cols, runewidth.StringWidth(expandTabs(l.Text))+2)
	}
	cols = min(max(cols, 40), maxColumns)

	width := 2*margin + cols*charW
	header := 4 * lineHeight
	height := 2*margin + header + max(len(lines), 1)*lineHeight
	if width*height > maxRasterPixels {
		return nil, fmt.Errorf("%w: %dx%d pixels", ErrTooLarge, width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)

	d := &font.Drawer{Dst: img, Face: face}
	text := func(x, y int, c color.Color, s string) {
		d.Src = image.NewUniform(c)
		d.Dot = fixed.P(x, y)
		d.DrawString(s)
	}
	baseline := func(top int) int { return top + lineHeight - 4 }

	y := margin
	text(margin, baseline(y), colorText, fit(r.title(), cols))
	y += lineHeight
	text(margin, baseline(y), colorMuted, fit(r.timestamp(), cols))
	y += lineHeight

	// legend
	x := margin
	for _, item := range []struct {
		label string
		bg    color.RGBA
		fg    color.RGBA
	}{
		{"Removed", colorRemovedBg, colorRemovedFg},
		{"Added", colorAddedBg, colorAddedFg},
	} {
		box := image.Rect(x, y+3, x+legendBox, y+3+legendBox)
		draw.Draw(img, box, image.NewUniform(item.fg), image.Point{}, draw.Src)
		text(x+legendBox+6, baseline(y), colorText, item.label)
		x += legendBox + 6 + len(item.label)*charW + 3*charW
	}
	y += 2 * lineHeight

	for _, l := range lines {
		if l.Note {
			text(margin, baseline(y), colorMuted, fit(l.Text, cols))
			y += lineHeight
			continue
		}
		fg := colorText
		switch l.Kind {
		case differ.Removed:
			fg = colorRemovedFg
			draw.Draw(img, image.Rect(margin/2, y, width-margin/2, y+lineHeight), image.NewUniform(colorRemovedBg), image.Point{}, draw.Src)
		case differ.Added:
			fg = colorAddedFg
			draw.Draw(img, image.Rect(margin/2, y, width-margin/2, y+lineHeight), image.NewUniform(colorAddedBg), image.Point{}, draw.Src)
		}
		text(margin, baseline(y), fg, fit(Prefix(l.Kind)+expandTabs(l.Text), cols))
		y += lineHeight
	}
	return img, nil
}

// PNG encodes the raster of r.
func PNG(w io.Writer, r Report) error {
	img, err := Raster(r)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func fit(s string, cols int) string {
	if runewidth.StringWidth(s) <= cols {
		return s
	}
	return runewidth.Truncate(s, cols, "...")
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
