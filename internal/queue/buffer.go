package queue

import (
	"errors"
	"fmt"
)

// queryBufferMargin is the fixed headroom added to every size estimate so the
// SQL text, identifier quoting, and placeholders always fit.
const queryBufferMargin = 256

// maxQueryBuffer caps a single buffer allocation. Tests lower it to exercise
// the allocation failure path.
var maxQueryBuffer int64 = 1 << 31

var errQueryBufferTooLarge = errors.New("query buffer exceeds allocation limit")

// queryBuffer is a scratch area for generated SQL text. It only grows, and
// every use overwrites it from the start, so nothing carries between calls.
type queryBuffer struct {
	buf []byte
}

// querySize estimates the buffer needed for a statement over the given
// variable-length inputs: twice their combined length plus a fixed margin.
func querySize(lengths ...int) int64 {
	var total int64
	for _, n := range lengths {
		total += int64(n)
	}
	return total*2 + queryBufferMargin
}

// ensure returns a buffer of at least size bytes, reallocating to exactly
// size when the current one is smaller.
func (q *queryBuffer) ensure(op string, size int64) ([]byte, error) {
	if size < 0 || size > maxQueryBuffer {
		return nil, newError(KindAllocation, op, fmt.Errorf("%w: %d bytes requested, limit %d", errQueryBufferTooLarge, size, maxQueryBuffer))
	}
	if size > int64(len(q.buf)) {
		q.buf = make([]byte, size)
	}
	return q.buf, nil
}

func (q *queryBuffer) capacity() int {
	return len(q.buf)
}

func (q *queryBuffer) release() {
	q.buf = nil
}
