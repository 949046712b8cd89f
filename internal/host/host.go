// Package host turns editor and filesystem activity into driver events.
package host

import (
	"github.com/j-veylop/codetime-dashboard-tui/internal/driver"
)

// Sink receives host events. *driver.Driver implements it.
type Sink interface {
	Post(ev driver.Event) bool
}
