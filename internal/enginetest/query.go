package enginetest

import (
	"time"

	"github.com/zlink-protocol/zlink-go/pkg/encoding"
	"github.com/zlink-protocol/zlink-go/pkg/engine"
	"github.com/zlink-protocol/zlink-go/pkg/keyexpr"
	"github.com/zlink-protocol/zlink-go/pkg/sample"
)

// QueryOptions carries the optional body of a dispatched query.
type QueryOptions struct {
	Payload    []byte
	Encoding   encoding.Encoding
	Attachment []byte
}

// Query dispatches a query to every active queryable declared on
// exactly ke and collects the replies that arrive within timeout.
//
// Callbacks run on a separate goroutine per queryable, mimicking
// engine-thread delivery. Matching is by textual equality; the fake
// engine implements no wildcard algebra.
func (e *Engine) Query(ke keyexpr.KeyExpr, opts QueryOptions, timeout time.Duration) []sample.Reply {
	e.mu.Lock()
	var targets []engine.QueryCallback
	for _, st := range e.queryables {
		if st.active && st.keyExpr.Equal(ke) {
			targets = append(targets, st.callback)
		}
	}
	e.nextID++
	tok := &queryToken{id: e.nextID, ch: make(chan sample.Reply, 16)}
	e.mu.Unlock()

	for _, cb := range targets {
		go cb(engine.InboundQuery{
			KeyExpr:    ke,
			Payload:    opts.Payload,
			Encoding:   opts.Encoding,
			Attachment: opts.Attachment,
			Token:      tok,
		})
	}

	var replies []sample.Reply
	deadline := time.After(timeout)
	for {
		select {
		case r := <-tok.ch:
			replies = append(replies, r)
			if len(replies) == len(targets) {
				return replies
			}
		case <-deadline:
			return replies
		}
	}
}

// Puts returns a copy of the recorded put calls.
func (e *Engine) Puts() []PutCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]PutCall, len(e.puts))
	copy(out, e.puts)
	return out
}

// Deletes returns a copy of the recorded delete calls.
func (e *Engine) Deletes() []DeleteCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]DeleteCall, len(e.deletes))
	copy(out, e.deletes)
	return out
}

// Replies returns a copy of the recorded replies.
func (e *Engine) Replies() []sample.Reply {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]sample.Reply, len(e.replies))
	copy(out, e.replies)
	return out
}

// ActivePublishers returns the number of publisher handles not yet
// released.
func (e *Engine) ActivePublishers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, st := range e.publishers {
		if st.active {
			n++
		}
	}
	return n
}

// ActiveQueryables returns the number of queryable handles not yet
// released.
func (e *Engine) ActiveQueryables() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, st := range e.queryables {
		if st.active {
			n++
		}
	}
	return n
}

// IsClosed reports whether Close has been called.
func (e *Engine) IsClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
