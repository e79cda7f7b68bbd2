package main

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"runtime"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

var ErrOutputNotEmpty = errors.New("output path is a non-empty folder")

// --- Structs ---

type Arguments struct {
	ConfigFile  string
	Topics      []string
	OutputDir   string
	Cols        int
	Rows        int
	ImageWidth  int
	ImageHeight int
	SourceFPS   float64
	Workers     int
	Quality     int
	Labels      bool
	LabelColor  string
	Verbose     bool
}

// fileConfig mirrors the YAML config file. Pointers tell unset keys apart
// from zero values.
type fileConfig struct {
	Topics      []string `yaml:"topics"`
	OutputDir   *string  `yaml:"output_dir"`
	Cols        *int     `yaml:"cols"`
	Rows        *int     `yaml:"rows"`
	ImageWidth  *int     `yaml:"image_width"`
	ImageHeight *int     `yaml:"image_height"`
	SourceFPS   *float64 `yaml:"source_fps"`
	Workers     *int     `yaml:"workers"`
	Quality     *int     `yaml:"quality"`
	Labels      *bool    `yaml:"labels"`
	LabelColor  *string  `yaml:"label_color"`
}

// runConfig is the validated configuration. Cols and Rows stay raw because
// the layout depends on how many topics survive scanning.
type runConfig struct {
	Topics     []string
	OutputDir  string
	Cols, Rows int
	TileWidth  int
	TileHeight int
	SourceFPS  float64
	PeriodNs   int64
	Workers    int
	Quality    int
	Labels     bool
	LabelColor color.Color
}

// --- Argument Parsing ---

func registerFlags(fs *pflag.FlagSet, args *Arguments) {
	fs.StringVar(&args.ConfigFile, "config", "./topics.yaml", "Path to config file.")
	fs.StringVarP(&args.OutputDir, "output_dir", "o", "./preview", "Path to the output folder.")
	fs.IntVarP(&args.Cols, "cols", "c", 0, "Number of columns in the grid.")
	fs.IntVarP(&args.Rows, "rows", "r", 0, "Number of rows in the grid.")
	fs.IntVar(&args.ImageWidth, "image_width", 1920, "Tile width in pixels.")
	fs.IntVar(&args.ImageHeight, "image_height", 1080, "Tile height in pixels.")
	fs.Float64Var(&args.SourceFPS, "source_fps", 20.0, "Capture rate (frames per second) used for synchronization.")
	fs.StringSliceVarP(&args.Topics, "topics", "t", nil, "Topic folders, in grid order.")
	fs.IntVarP(&args.Workers, "workers", "w", runtime.NumCPU(), "Number of parallel workers for frame generation.")
	fs.IntVarP(&args.Quality, "quality", "q", defaultJPEGQuality, "JPEG quality of the output frames (1-100).")
	fs.BoolVar(&args.Labels, "labels", false, "Stamp file names onto tiles and frames.")
	fs.StringVar(&args.LabelColor, "label_color", "#FFFFFF", "Color of the label text (hex).")
	fs.BoolVarP(&args.Verbose, "verbose", "v", false, "Enable debug logging.")
}

// loadConfigFile reads the YAML config at path. A missing file is not an
// error and yields nil.
func loadConfigFile(path string) (*fileConfig, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := &fileConfig{}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// applyConfigFile copies values from cfg into args unless the matching flag
// was set on the command line.
func applyConfigFile(args *Arguments, cfg *fileConfig, changed func(flag string) bool) {
	if cfg == nil {
		return
	}
	if len(cfg.Topics) > 0 && !changed("topics") {
		args.Topics = cfg.Topics
	}
	setString(&args.OutputDir, cfg.OutputDir, changed("output_dir"))
	setInt(&args.Cols, cfg.Cols, changed("cols"))
	setInt(&args.Rows, cfg.Rows, changed("rows"))
	setInt(&args.ImageWidth, cfg.ImageWidth, changed("image_width"))
	setInt(&args.ImageHeight, cfg.ImageHeight, changed("image_height"))
	setInt(&args.Workers, cfg.Workers, changed("workers"))
	setInt(&args.Quality, cfg.Quality, changed("quality"))
	setString(&args.LabelColor, cfg.LabelColor, changed("label_color"))
	if cfg.SourceFPS != nil && !changed("source_fps") {
		args.SourceFPS = *cfg.SourceFPS
	}
	if cfg.Labels != nil && !changed("labels") {
		args.Labels = *cfg.Labels
	}
}

func setInt(dst *int, v *int, flagSet bool) {
	if v != nil && !flagSet {
		*dst = *v
	}
}

func setString(dst *string, v *string, flagSet bool) {
	if v != nil && !flagSet {
		*dst = *v
	}
}

// resolve validates args before any work starts.
func (a *Arguments) resolve() (runConfig, error) {
	if len(a.Topics) == 0 {
		return runConfig{}, errors.New("topics are required (via --topics or the config file)")
	}
	if a.OutputDir == "" {
		return runConfig{}, errors.New("output_dir must not be empty")
	}
	if a.Cols < 0 || a.Rows < 0 {
		return runConfig{}, fmt.Errorf("cols and rows must be positive, got %d and %d", a.Cols, a.Rows)
	}
	if a.ImageWidth <= 0 || a.ImageHeight <= 0 {
		return runConfig{}, fmt.Errorf("image size must be positive, got %dx%d", a.ImageWidth, a.ImageHeight)
	}
	if a.Quality < 1 || a.Quality > 100 {
		return runConfig{}, fmt.Errorf("quality must be between 1 and 100, got %d", a.Quality)
	}
	period, err := periodFromFPS(a.SourceFPS)
	if err != nil {
		return runConfig{}, err
	}
	labelColor, err := parseHexColor(a.LabelColor)
	if err != nil {
		return runConfig{}, fmt.Errorf("invalid label color %q: %w", a.LabelColor, err)
	}

	return runConfig{
		Topics:     a.Topics,
		OutputDir:  a.OutputDir,
		Cols:       a.Cols,
		Rows:       a.Rows,
		TileWidth:  a.ImageWidth,
		TileHeight: a.ImageHeight,
		SourceFPS:  a.SourceFPS,
		PeriodNs:   period,
		Workers:    a.Workers,
		Quality:    a.Quality,
		Labels:     a.Labels,
		LabelColor: labelColor,
	}, nil
}

// periodFromFPS converts a frame rate into the sampling period in nanoseconds.
func periodFromFPS(fps float64) (int64, error) {
	if math.IsNaN(fps) || math.IsInf(fps, 0) || fps <= 0 {
		return 0, fmt.Errorf("source_fps must be a positive number, got %v", fps)
	}
	period := int64(math.Round(1e9 / fps))
	if period < 1 {
		return 0, fmt.Errorf("source_fps %v is too high for nanosecond timestamps", fps)
	}
	return period, nil
}

func parseHexColor(s string) (color.Color, error) {
	var r, g, b uint8
	_, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b)
	if err != nil {
		return color.White, err
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// checkOutputDir fails unless dir is absent or an empty directory.
func checkOutputDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot use output path %s: %w", dir, err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("%w: %s", ErrOutputNotEmpty, dir)
	}
	return nil
}
