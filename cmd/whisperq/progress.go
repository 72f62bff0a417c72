package main

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
)

// jobProgressBar aggregates per-job progress into one batch-level bar.
// Each job contributes up to 100 points.
type jobProgressBar struct {
	bar   *progressbar.ProgressBar
	out   io.Writer
	total int
}

func newJobProgressBar(w io.Writer, jobCount int) *jobProgressBar {
	bar := progressbar.NewOptions(jobCount*100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("transcribing"),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	return &jobProgressBar{bar: bar, out: w, total: jobCount * 100}
}

func (p *jobProgressBar) update(progress map[string]float64) {
	sum := 0
	for _, value := range progress {
		sum += int(value)
	}
	if sum > p.total {
		sum = p.total
	}
	_ = p.bar.Set(sum)
}

func (p *jobProgressBar) finish() {
	_ = p.bar.Finish()
	fmt.Fprintln(p.out)
}
