package main

import (
	"errors"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"
)

const scanConcurrency = 4

var ErrNoTopics = errors.New("no usable topic directories")

// scanTopics builds one catalog per topic directory, keeping input order.
// Directories that do not exist are skipped with a warning; any other catalog
// error aborts the scan.
func scanTopics(dirs []string, logger *log.Logger, progressOut io.Writer) ([]Catalog, error) {
	var present []string
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			logger.Warn("No directory for topic, skipping", "topic", dir)
			continue
		}
		present = append(present, dir)
	}
	if len(present) == 0 {
		return nil, ErrNoTopics
	}

	bar := progressbar.NewOptions(len(present),
		progressbar.OptionSetWriter(progressOut),
		progressbar.OptionSetDescription("Scanning topics"),
		progressbar.OptionShowCount(),
	)
	catalogs := make([]Catalog, len(present))
	errs := make([]error, len(present))
	var wg sync.WaitGroup
	limit := make(chan struct{}, scanConcurrency)

	for i, dir := range present {
		wg.Add(1)
		limit <- struct{}{}
		go func(i int, dir string) {
			defer wg.Done()
			catalogs[i], errs[i] = buildCatalog(dir)
			bar.Add(1)
			<-limit
		}(i, dir)
	}
	wg.Wait()
	bar.Finish()

	for i, err := range errs {
		if err != nil {
			return nil, err
		}
		logger.Debug("Catalog built", "topic", present[i], "images", len(catalogs[i].Images),
			"first", catalogs[i].First().Timestamp, "last", catalogs[i].Last().Timestamp)
	}
	return catalogs, nil
}
