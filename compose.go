package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

const defaultJPEGQuality = 90

// compositor turns one aligned row into one grid image on disk. It holds no
// per-frame state and is shared by all workers.
type compositor struct {
	layout    GridLayout
	outputDir string
	quality   int
	labels    *labeler // nil disables labels
	decode    func(path string) (image.Image, error)
}

func newCompositor(layout GridLayout, outputDir string, quality int, labels *labeler) *compositor {
	return &compositor{
		layout:    layout,
		outputDir: outputDir,
		quality:   quality,
		labels:    labels,
		decode:    func(path string) (image.Image, error) { return imaging.Open(path) },
	}
}

func framePath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("frame_%04d.jpg", index))
}

// compose pastes every image of row, stretched to the tile size, into its
// grid cell. Cells without a topic stay black.
func (c *compositor) compose(ctx context.Context, row AlignedRow) (*gg.Context, error) {
	if len(row) > c.layout.Cols*c.layout.Rows {
		return nil, fmt.Errorf("%w: %d images for %dx%d grid", ErrGridTooSmall, len(row), c.layout.Cols, c.layout.Rows)
	}

	width, height := c.layout.canvasSize()
	dc := gg.NewContext(width, height)
	dc.SetColor(color.Black)
	dc.Clear()

	for i, path := range row {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := c.decode(path)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		tile := imaging.Resize(img, c.layout.TileWidth, c.layout.TileHeight, imaging.CatmullRom)
		p := c.layout.cell(i)
		dc.DrawImage(tile, p.X, p.Y)
	}
	return dc, nil
}

// renderFrame composes row and writes it as frame_<index>.jpg.
func (c *compositor) renderFrame(ctx context.Context, index int, row AlignedRow) error {
	dest := framePath(c.outputDir, index)

	dc, err := c.compose(ctx, row)
	if err != nil {
		return err
	}
	if c.labels != nil {
		c.labels.draw(dc, c.layout, row, dest)
	}

	if err := imaging.Save(dc.Image(), dest, imaging.JPEGQuality(c.quality)); err != nil {
		return fmt.Errorf("failed to encode %s: %w", dest, err)
	}
	return nil
}
