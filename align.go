package main

import "fmt"

// AlignedRow holds one source path per topic, in topic order.
type AlignedRow []string

// alignment is the row table produced for one run. It is built once and
// only read afterwards, so workers share it without locking.
type alignment struct {
	Start, End int64
	PeriodNs   int64
	Rows       []AlignedRow
}

// overlapWindow returns the range every catalog has data for.
// ok is false when the catalogs do not overlap.
func overlapWindow(catalogs []Catalog) (start, end int64, ok bool) {
	start = catalogs[0].First().Timestamp
	end = catalogs[0].Last().Timestamp
	for _, c := range catalogs[1:] {
		start = max(start, c.First().Timestamp)
		end = min(end, c.Last().Timestamp)
	}
	return start, end, end > start
}

// alignIndices resamples every catalog onto the clock start, start+period, ...
// and returns, per tick, the selected image index of each catalog.
func alignIndices(catalogs []Catalog, periodNs int64) (start, end int64, picks [][]int, err error) {
	if periodNs <= 0 {
		return 0, 0, nil, fmt.Errorf("sampling period must be positive, got %d", periodNs)
	}
	if len(catalogs) == 0 {
		return 0, 0, nil, ErrNoTopics
	}
	for _, c := range catalogs {
		if len(c.Images) == 0 {
			return 0, 0, nil, fmt.Errorf("%w: %s", ErrEmptyTopic, c.Topic)
		}
	}

	start, end, ok := overlapWindow(catalogs)
	if !ok {
		return start, end, nil, nil
	}

	picks = make([][]int, 0, (end-start)/periodNs+1)
	pointers := make([]int, len(catalogs))
	target := start
	for {
		frame := make([]int, len(catalogs))
		for i, c := range catalogs {
			images := c.Images
			p := pointers[i]
			for p+1 < len(images) && images[p+1].Timestamp <= target {
				p++
			}

			best := p
			if p+1 < len(images) {
				beforeDiff := absDiff(images[p].Timestamp, target)
				afterDiff := absDiff(images[p+1].Timestamp, target)
				if afterDiff < beforeDiff {
					best = p + 1
				}
			}
			pointers[i] = best
			frame[i] = best
		}
		picks = append(picks, frame)

		if end-target < periodNs {
			break
		}
		target += periodNs
	}
	return start, end, picks, nil
}

// alignFrames builds the row table for catalogs sampled every periodNs.
// An empty Rows slice means the topics never overlap.
func alignFrames(catalogs []Catalog, periodNs int64) (*alignment, error) {
	start, end, picks, err := alignIndices(catalogs, periodNs)
	if err != nil {
		return nil, err
	}

	rows := make([]AlignedRow, len(picks))
	for f, frame := range picks {
		row := make(AlignedRow, len(frame))
		for i, idx := range frame {
			row[i] = catalogs[i].Images[idx].Path
		}
		rows[f] = row
	}
	return &alignment{Start: start, End: end, PeriodNs: periodNs, Rows: rows}, nil
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
