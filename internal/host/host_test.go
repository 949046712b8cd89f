package host

import (
	"testing"
	"time"

	"github.com/j-veylop/codetime-dashboard-tui/internal/driver"
)

// recordingSink collects posted events.
type recordingSink struct {
	events chan driver.Event
}

func newRecordingSink() *recordingSink {
	return &recordingSink{events: make(chan driver.Event, 64)}
}

func (r *recordingSink) Post(ev driver.Event) bool {
	select {
	case r.events <- ev:
		return true
	default:
		return false
	}
}

// next waits for the next event matching keep.
func (r *recordingSink) next(t *testing.T, keep func(driver.Event) bool) driver.Event {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-r.events:
			if keep(ev) {
				return ev
			}
		case <-deadline:
			t.Fatal("timed out waiting for event")
			return nil
		}
	}
}

func isFocus(ev driver.Event) bool {
	_, ok := ev.(driver.FocusEvent)
	return ok
}
