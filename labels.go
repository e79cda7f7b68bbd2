package main

import (
	"image/color"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const ellipsis = "…"

var labelBackground = color.RGBA{R: 0, G: 0, B: 0, A: 160}

// labeler stamps file names onto composed frames. The parsed font is shared
// by all workers; faces are not safe for concurrent use, so each frame gets
// its own.
type labeler struct {
	font  *truetype.Font
	color color.Color
}

func newLabeler(textColor color.Color) (*labeler, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return &labeler{font: f, color: textColor}, nil
}

func (l *labeler) face(size float64) font.Face {
	return truetype.NewFace(l.font, &truetype.Options{Size: size})
}

func labelFontSize(tileHeight int) float64 {
	return min(max(float64(tileHeight)/20.0, 10), 48)
}

// draw labels every tile with its source file name and the canvas with the
// name of the file it is written to.
func (l *labeler) draw(dc *gg.Context, layout GridLayout, row AlignedRow, dest string) {
	size := labelFontSize(layout.TileHeight)
	face := l.face(size)
	defer face.Close()
	dc.SetFontFace(face)

	for i, path := range row {
		p := layout.cell(i)
		l.drawLabel(dc, filepath.Base(path), float64(p.X), float64(p.Y), float64(layout.TileWidth), 0, 0, size)
	}

	w, h := layout.canvasSize()
	l.drawLabel(dc, filepath.Base(dest), float64(w), float64(h), float64(w), 1, 1, size)
}

// drawLabel draws text on a dark box no wider than maxWidth. (ax, ay) anchors
// the box to (x, y): 0,0 is its top-left corner, 1,1 its bottom-right.
func (l *labeler) drawLabel(dc *gg.Context, text string, x, y, maxWidth, ax, ay, size float64) {
	pad := size * 0.3
	text = fitText(dc, text, maxWidth-2*pad)
	if text == "" {
		return
	}

	textWidth, textHeight := dc.MeasureString(text)
	boxWidth := textWidth + 2*pad
	boxHeight := textHeight + 2*pad
	left := x - ax*boxWidth
	top := y - ay*boxHeight

	dc.SetColor(labelBackground)
	dc.DrawRectangle(left, top, boxWidth, boxHeight)
	dc.Fill()
	dc.SetColor(l.color)
	dc.DrawStringAnchored(text, left+pad, top+pad, 0, 1)
}

// fitText returns text unchanged if it fits in maxWidth, otherwise the longest
// prefix that fits with an ellipsis appended. It returns "" when not even the
// ellipsis fits.
func fitText(dc *gg.Context, text string, maxWidth float64) string {
	if w, _ := dc.MeasureString(text); w <= maxWidth {
		return text
	}
	runes := []rune(text)
	for n := len(runes) - 1; n >= 0; n-- {
		candidate := string(runes[:n]) + ellipsis
		if w, _ := dc.MeasureString(candidate); w <= maxWidth {
			return candidate
		}
	}
	return ""
}
