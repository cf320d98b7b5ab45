package logs

import (
	"strings"
	"sync"

	"github.com/ternarybob/pretium/internal/models"
)

// DefaultCapacity bounds the activity ring when no size is configured.
const DefaultCapacity = 500

// Buffer is a bounded in-memory ring of activity entries. Appends
// overwrite the oldest entry once the ring is full; nothing is ever
// persisted.
type Buffer struct {
	mu      sync.RWMutex
	entries []models.ActivityEntry
	next    int
	full    bool
}

// NewBuffer creates a ring holding at most capacity entries.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{entries: make([]models.ActivityEntry, capacity)}
}

// Append adds an entry, evicting the oldest when full.
func (b *Buffer) Append(entry models.ActivityEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.next] = entry
	b.next++
	if b.next == len(b.entries) {
		b.next = 0
		b.full = true
	}
}

// Len reports how many entries the ring currently holds.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.full {
		return len(b.entries)
	}
	return b.next
}

// Recent returns up to limit entries, newest first, filtered to
// minLevel and above. A limit of zero or less means all held entries;
// an empty minLevel means no filtering.
func (b *Buffer) Recent(limit int, minLevel string) []models.ActivityEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	held := b.next
	if b.full {
		held = len(b.entries)
	}
	if limit <= 0 || limit > held {
		limit = held
	}

	threshold := levelRank(minLevel)
	out := make([]models.ActivityEntry, 0, limit)
	for i := 1; i <= held && len(out) < limit; i++ {
		idx := b.next - i
		if idx < 0 {
			idx += len(b.entries)
		}
		entry := b.entries[idx]
		if levelRank(entry.Level) < threshold {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// levelRank orders levels for filtering. Accepts both full names and
// the 3-letter display codes entries carry. Unknown levels rank lowest
// so an empty filter passes everything.
func levelRank(level string) int {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DBG", "DEBUG", "TRC", "TRACE":
		return 0
	case "INF", "INFO":
		return 1
	case "WRN", "WARN", "WARNING":
		return 2
	case "ERR", "ERROR", "FTL", "FATAL":
		return 3
	default:
		return 0
	}
}
