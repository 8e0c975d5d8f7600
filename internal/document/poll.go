package document

import (
	"context"
	"slices"
	"time"

	"github.com/jengamon/lexi/pkg/core"
)

// DefaultPollInterval is how often name pollers look at the document.
const DefaultPollInterval = 500 * time.Millisecond

// PollNames lists the names of kind every interval and calls fn with the
// list whenever it differs from the previous one. The first poll always
// calls fn. It blocks until ctx is done and returns ctx.Err().
func (d *Document) PollNames(ctx context.Context, kind core.Kind, interval time.Duration, fn func([]string)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last []string
	first := true
	for {
		names := d.Names(kind)
		if first || !slices.Equal(names, last) {
			fn(names)
			last = names
			first = false
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
