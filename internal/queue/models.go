package queue

import (
	"context"
	"fmt"
	"strings"
)

// Priority orders jobs inside the owning queue system. Lower values run first.
type Priority int

const (
	PriorityHigh Priority = iota
	PriorityNormal
	PriorityLow
)

var priorityNames = []string{"high", "normal", "low"}

// Valid reports whether p is one of the defined priorities.
func (p Priority) Valid() bool {
	return p >= PriorityHigh && p <= PriorityLow
}

func (p Priority) String() string {
	if !p.Valid() {
		return fmt.Sprintf("priority(%d)", int(p))
	}
	return priorityNames[p]
}

// ParsePriority converts a user supplied name into a Priority.
func ParsePriority(value string) (Priority, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return PriorityNormal, nil
	}
	for i, name := range priorityNames {
		if normalized == name {
			return Priority(i), nil
		}
	}
	return PriorityNormal, fmt.Errorf("unknown priority %q (expected high, normal, or low)", value)
}

// priorityFromStored narrows a stored integer to a Priority, clamping values
// outside the defined range. The second result is false when clamping occurred.
func priorityFromStored(value int64) (Priority, bool) {
	switch {
	case value < int64(PriorityHigh):
		return PriorityHigh, false
	case value > int64(PriorityLow):
		return PriorityLow, false
	default:
		return Priority(value), true
	}
}

// Item is one persisted queue row.
//
// Unique and FunctionName are opaque byte strings; Go strings carry embedded
// zero bytes unchanged. Items handed to a RestoreFunc own their Data slice: it
// was copied out of the statement and nothing in this package retains it.
// A stored empty BLOB replays as a non-nil empty slice; only a NULL data
// column replays as nil.
type Item struct {
	Unique       string
	FunctionName string
	Priority     Priority
	Data         []byte
}

// RestoreFunc receives each persisted item during Replay. Returning an error
// stops the replay and the error is propagated to the Replay caller.
type RestoreFunc func(ctx context.Context, item Item) error

// Persistence is the contract the owning queue system drives.
type Persistence interface {
	Add(ctx context.Context, unique, functionName string, data []byte, priority Priority) error
	Done(ctx context.Context, unique, functionName string) error
	Flush(ctx context.Context) error
	Replay(ctx context.Context, restore RestoreFunc) error
}

// Registrar is implemented by the owning queue system. Open registers the
// adapter through it; Close clears the registration by passing nil.
type Registrar interface {
	SetPersistence(p Persistence)
}
