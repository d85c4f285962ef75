// Package sessionlog keeps the append-only log the author sees next to the map.
package sessionlog

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Verbosity selects how much of the buffer is rendered. It never filters
// what is recorded.
type Verbosity int

const (
	Brief Verbosity = iota
	Full
)

// BriefEntries is how many trailing entries Brief shows.
const BriefEntries = 20

func (v Verbosity) String() string {
	if v == Full {
		return "full"
	}
	return "brief"
}

// ParseVerbosity accepts "brief" or "full"; anything else is Brief.
func ParseVerbosity(s string) Verbosity {
	if strings.EqualFold(strings.TrimSpace(s), "full") {
		return Full
	}
	return Brief
}

// Entry is one rendered log line.
type Entry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
}

func (e Entry) String() string {
	return fmt.Sprintf("%s [%s] %s", e.Time.Format("15:04:05"), strings.ToUpper(e.Level), e.Message)
}

// Buffer is an append-only list of entries.
type Buffer struct {
	mu      sync.RWMutex
	entries []Entry
}

func (b *Buffer) Append(e Entry) {
	b.mu.Lock()
	b.entries = append(b.entries, e)
	b.mu.Unlock()
}

func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// View returns the slice of entries the given verbosity renders.
func (b *Buffer) View(v Verbosity) []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	start := 0
	if v == Brief && len(b.entries) > BriefEntries {
		start = len(b.entries) - BriefEntries
	}
	out := make([]Entry, len(b.entries)-start)
	copy(out, b.entries[start:])
	return out
}

// Hook records logrus entries into a Buffer and optionally forwards each one.
type Hook struct {
	buf     *Buffer
	levels  []logrus.Level
	forward func(Entry)
}

// NewHook records entries at Info and above. forward may be nil.
func NewHook(buf *Buffer, forward func(Entry)) *Hook {
	return &Hook{
		buf:     buf,
		levels:  logrus.AllLevels[:logrus.InfoLevel+1],
		forward: forward,
	}
}

func (h *Hook) Levels() []logrus.Level {
	return h.levels
}

func (h *Hook) Fire(e *logrus.Entry) error {
	entry := Entry{
		Time:    e.Time,
		Level:   e.Level.String(),
		Message: formatMessage(e),
	}
	h.buf.Append(entry)
	if h.forward != nil {
		h.forward(entry)
	}
	return nil
}

// formatMessage appends fields as key=value in a stable order.
func formatMessage(e *logrus.Entry) string {
	if len(e.Data) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(e.Message)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, e.Data[k])
	}
	return sb.String()
}
