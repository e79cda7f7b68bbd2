package main

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
)

func writeImage(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	if err := imaging.Save(imaging.New(w, h, c), path); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// writeTopic creates a topic directory with one solid image per timestamp.
func writeTopic(t *testing.T, root, name string, c color.Color, timestamps ...int64) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, ts := range timestamps {
		writeImage(t, filepath.Join(dir, fmt.Sprintf("%d.png", ts)), 16, 12, c)
	}
	return dir
}

func testLogger(level log.Level) (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return newLogger(&buf, level), &buf
}

func catalogOf(topic string, timestamps ...int64) Catalog {
	c := Catalog{Topic: topic}
	for _, ts := range timestamps {
		c.Images = append(c.Images, TimestampedImage{Timestamp: ts, Path: fmt.Sprintf("%s/%d.jpg", topic, ts)})
	}
	return c
}
