package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestBuildCatalogSortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "300.jpg", "100.PNG", "200.jpeg", "notes.txt", "150.gif")
	if err := os.Mkdir(filepath.Join(dir, "400.jpg"), 0755); err != nil {
		t.Fatal(err)
	}

	c, err := buildCatalog(dir)
	if err != nil {
		t.Fatalf("buildCatalog() error = %v", err)
	}

	want := []int64{100, 200, 300}
	if len(c.Images) != len(want) {
		t.Fatalf("got %d images, want %d", len(c.Images), len(want))
	}
	for i, ts := range want {
		if c.Images[i].Timestamp != ts {
			t.Errorf("Images[%d].Timestamp = %d, want %d", i, c.Images[i].Timestamp, ts)
		}
	}
	if c.First().Timestamp != 100 || c.Last().Timestamp != 300 {
		t.Errorf("First/Last = %d/%d, want 100/300", c.First().Timestamp, c.Last().Timestamp)
	}
	if c.Topic != dir {
		t.Errorf("Topic = %q, want %q", c.Topic, dir)
	}
}

func TestBuildCatalogKeepsDuplicateOrder(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "50.png", "50.jpg", "10.jpg")

	c, err := buildCatalog(dir)
	if err != nil {
		t.Fatal(err)
	}
	got := []string{filepath.Base(c.Images[0].Path), filepath.Base(c.Images[1].Path), filepath.Base(c.Images[2].Path)}
	want := []string{"10.jpg", "50.jpg", "50.png"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Images[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestBuildCatalogErrors(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  error
	}{
		{name: "non-numeric name", files: []string{"100.jpg", "frame.jpg"}, want: ErrInvalidTimestamp},
		{name: "negative timestamp", files: []string{"-5.png"}, want: ErrInvalidTimestamp},
		{name: "fractional timestamp", files: []string{"1.5.png"}, want: ErrInvalidTimestamp},
		{name: "no images", files: []string{"readme.md"}, want: ErrEmptyTopic},
		{name: "empty directory", want: ErrEmptyTopic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			touch(t, dir, tt.files...)
			_, err := buildCatalog(dir)
			if !errors.Is(err, tt.want) {
				t.Errorf("buildCatalog() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		path    string
		want    int64
		wantErr bool
	}{
		{path: "/a/b/1700000000123456789.jpg", want: 1700000000123456789},
		{path: "0.png", want: 0},
		{path: "12.JPEG", want: 12},
		{path: "abc.jpg", wantErr: true},
		{path: "99999999999999999999.jpg", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseTimestamp(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseTimestamp(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseTimestamp(%q) = %d, want %d", tt.path, got, tt.want)
		}
	}
}
