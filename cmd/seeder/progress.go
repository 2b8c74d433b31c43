package main

import (
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/bara-directory/seeder/internal/pipeline"
)

// progress draws a bar on stderr that advances once per processed record.
// It returns a nil observer when disabled.
func progress(enabled bool, total int, description string) (pipeline.Observer, func()) {
	if !enabled || total == 0 {
		return nil, func() {}
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	observer := pipeline.ObserverFunc(func(string, pipeline.Outcome, pipeline.Stage, time.Duration) {
		_ = bar.Add(1)
	})
	return observer, func() { _ = bar.Finish() }
}
