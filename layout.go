package main

import (
	"errors"
	"fmt"
	"image"
	"math"
)

var ErrGridTooSmall = errors.New("grid has fewer cells than topics")

// GridLayout describes how tiles are arranged on the output canvas.
type GridLayout struct {
	Cols, Rows            int
	TileWidth, TileHeight int
}

// resolveLayout fills in whichever of cols and rows is zero. With both unset
// it picks the squarest grid that holds every topic.
func resolveLayout(topicCount, cols, rows, tileWidth, tileHeight int) (GridLayout, error) {
	if topicCount <= 0 {
		return GridLayout{}, ErrNoTopics
	}
	if tileWidth <= 0 || tileHeight <= 0 {
		return GridLayout{}, fmt.Errorf("tile size must be positive, got %dx%d", tileWidth, tileHeight)
	}
	if cols < 0 || rows < 0 {
		return GridLayout{}, fmt.Errorf("cols and rows must be positive, got %dx%d", cols, rows)
	}

	switch {
	case cols > 0 && rows > 0:
	case cols > 0:
		rows = ceilDiv(topicCount, cols)
	case rows > 0:
		cols = ceilDiv(topicCount, rows)
	default:
		cols = int(math.Ceil(math.Sqrt(float64(topicCount))))
		rows = ceilDiv(topicCount, cols)
	}

	if cols*rows < topicCount {
		return GridLayout{}, fmt.Errorf("%w: %dx%d grid for %d topics", ErrGridTooSmall, cols, rows, topicCount)
	}
	return GridLayout{Cols: cols, Rows: rows, TileWidth: tileWidth, TileHeight: tileHeight}, nil
}

// cell returns the top-left pixel of the tile for topic idx. Tiles fill the
// grid row by row in topic order.
func (l GridLayout) cell(idx int) image.Point {
	return image.Pt((idx%l.Cols)*l.TileWidth, (idx/l.Cols)*l.TileHeight)
}

func (l GridLayout) canvasSize() (int, int) {
	return l.Cols * l.TileWidth, l.Rows * l.TileHeight
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
