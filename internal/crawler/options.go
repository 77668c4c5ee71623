package crawler

import "time"

// Options tunes a Run.
type Options struct {
	Workers       int
	ProgressEvery time.Duration // 0 disables the progress log
}

func (o *Options) prepare() {
	if o.Workers < 1 {
		o.Workers = 1
	}
}
