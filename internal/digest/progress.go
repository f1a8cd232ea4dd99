package digest

import (
	"io"

	"github.com/gosuri/uilive"
	"github.com/ostafen/bootinfo/pkg/pbar"
)

// Progress renders a live hashing progress line on out.
type Progress struct {
	w   *uilive.Writer
	bar *pbar.ProgressBarState
}

func NewProgress(out io.Writer, total int64) *Progress {
	w := uilive.New()
	w.Out = out

	return &Progress{
		w:   w,
		bar: pbar.NewProgressBarState("Hashing", total, w),
	}
}

// Add is meant to be used as Options.Progress.
func (p *Progress) Add(n int64) {
	p.bar.Add(n)
}

func (p *Progress) Finish() {
	p.bar.Finish()
}
