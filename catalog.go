package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrEmptyTopic       = errors.New("topic has no images")
	ErrInvalidTimestamp = errors.New("file name is not a nanosecond timestamp")
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// --- Structs ---

type TimestampedImage struct {
	Timestamp int64 // nanoseconds
	Path      string
}

// Catalog is the time-ordered list of images found in one topic directory.
type Catalog struct {
	Topic  string
	Images []TimestampedImage
}

func (c Catalog) First() TimestampedImage { return c.Images[0] }
func (c Catalog) Last() TimestampedImage  { return c.Images[len(c.Images)-1] }

// --- Catalog Building ---

func isImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

func parseTimestamp(path string) (int64, error) {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	ts, err := strconv.ParseInt(stem, 10, 64)
	if err != nil || ts < 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidTimestamp, path)
	}
	return ts, nil
}

func buildCatalog(dir string) (Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to list topic %s: %w", dir, err)
	}

	catalog := Catalog{Topic: dir}
	for _, e := range entries {
		if e.IsDir() || !isImageFile(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		ts, err := parseTimestamp(path)
		if err != nil {
			return Catalog{}, err
		}
		catalog.Images = append(catalog.Images, TimestampedImage{Timestamp: ts, Path: path})
	}
	if len(catalog.Images) == 0 {
		return Catalog{}, fmt.Errorf("%w: %s", ErrEmptyTopic, dir)
	}

	// Stable so equal timestamps keep listing order.
	sort.SliceStable(catalog.Images, func(i, j int) bool {
		return catalog.Images[i].Timestamp < catalog.Images[j].Timestamp
	})
	return catalog, nil
}
