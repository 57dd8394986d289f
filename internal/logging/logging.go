// Package logging builds the prefixed, leveled loggers used across the service.
package logging

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/labstack/gommon/log"
)

const header = "${time_rfc3339} ${level} ${prefix}"

var (
	level atomic.Uint32

	mu      sync.Mutex
	loggers []*log.Logger
)

func init() {
	level.Store(uint32(log.INFO))
}

// ParseLevel maps a config value to a gommon level. Unknown values map to INFO.
func ParseLevel(name string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off", "none":
		return log.OFF
	default:
		return log.INFO
	}
}

// SetLevel sets the level for the global logger and every logger made by New.
func SetLevel(name string) log.Lvl {
	lvl := ParseLevel(name)
	level.Store(uint32(lvl))
	log.SetLevel(lvl)
	log.SetHeader(header)

	mu.Lock()
	defer mu.Unlock()
	for _, l := range loggers {
		l.SetLevel(lvl)
	}
	return lvl
}

// Level returns the configured level.
func Level() log.Lvl {
	return log.Lvl(level.Load())
}

// New returns a logger tagged with prefix.
func New(prefix string) *log.Logger {
	l := log.New(prefix)
	l.SetHeader(header)
	l.SetLevel(Level())

	mu.Lock()
	loggers = append(loggers, l)
	mu.Unlock()
	return l
}

// ShortID truncates an id for log lines.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
