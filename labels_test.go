package main

import (
	"image/color"
	"strings"
	"testing"

	"github.com/fogleman/gg"
)

func labelContext(t *testing.T) *gg.Context {
	t.Helper()
	l, err := newLabeler(color.White)
	if err != nil {
		t.Fatalf("newLabeler() error = %v", err)
	}
	dc := gg.NewContext(10, 10)
	dc.SetFontFace(l.face(12))
	return dc
}

func TestFitText(t *testing.T) {
	dc := labelContext(t)
	long := "1700000000123456789.png"
	full, _ := dc.MeasureString(long)

	if got := fitText(dc, long, full+1); got != long {
		t.Errorf("fitting text changed: %q", got)
	}

	got := fitText(dc, long, full/2)
	if !strings.HasSuffix(got, ellipsis) {
		t.Fatalf("truncated text %q lacks ellipsis", got)
	}
	if !strings.HasPrefix(long, strings.TrimSuffix(got, ellipsis)) {
		t.Errorf("truncated text %q is not a prefix of %q", got, long)
	}
	if w, _ := dc.MeasureString(got); w > full/2 {
		t.Errorf("truncated width %.1f exceeds %.1f", w, full/2)
	}

	if got := fitText(dc, long, 1); got != "" {
		t.Errorf("fitText() with no room = %q, want empty", got)
	}
}

func TestLabelFontSize(t *testing.T) {
	tests := []struct {
		height int
		want   float64
	}{
		{height: 50, want: 10},
		{height: 400, want: 20},
		{height: 2160, want: 48},
	}
	for _, tt := range tests {
		if got := labelFontSize(tt.height); got != tt.want {
			t.Errorf("labelFontSize(%d) = %v, want %v", tt.height, got, tt.want)
		}
	}
}

func TestDrawSkipsLabelsThatCannotFit(t *testing.T) {
	l, err := newLabeler(color.White)
	if err != nil {
		t.Fatal(err)
	}
	layout := GridLayout{Cols: 1, Rows: 1, TileWidth: 4, TileHeight: 4}
	dc := gg.NewContext(4, 4)
	dc.SetColor(color.Black)
	dc.Clear()

	l.draw(dc, layout, AlignedRow{"/x/123.png"}, "frame_0000.jpg")

	if got := dc.Image().At(2, 2); !sameColor(got, color.Black) {
		t.Errorf("label drawn on a tile too small for it: %v", got)
	}
}
