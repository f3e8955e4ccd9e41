// Package enginetest provides a recording in-memory engine for testing
// the session layer without a real transport.
//
// The fake engine records every declaration, publication and reply it
// receives, supports injectable failures, and can dispatch queries to
// registered queryable callbacks on a separate goroutine, mimicking the
// engine-thread delivery model of a real engine.
package enginetest

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/zlink-protocol/zlink-go/pkg/encoding"
	"github.com/zlink-protocol/zlink-go/pkg/engine"
	"github.com/zlink-protocol/zlink-go/pkg/keyexpr"
	"github.com/zlink-protocol/zlink-go/pkg/qos"
	"github.com/zlink-protocol/zlink-go/pkg/sample"
)

// PutCall records one PublisherPut invocation.
type PutCall struct {
	KeyExpr    keyexpr.KeyExpr
	Payload    []byte
	Encoding   encoding.Encoding
	Attachment []byte
}

// DeleteCall records one PublisherDelete invocation.
type DeleteCall struct {
	KeyExpr    keyexpr.KeyExpr
	Attachment []byte
}

// publisherState is the engine-side record behind a publisher handle.
type publisherState struct {
	id      uint64
	keyExpr keyexpr.KeyExpr
	qos     qos.QoS
	active  bool
}

// queryableState is the engine-side record behind a queryable handle.
type queryableState struct {
	id       uint64
	keyExpr  keyexpr.KeyExpr
	complete bool
	callback engine.QueryCallback
	active   bool
}

// queryToken routes a reply back to the Query call that originated it.
type queryToken struct {
	id uint64
	ch chan sample.Reply
}

// Engine is a recording in-memory engine.Engine implementation.
type Engine struct {
	// ReplierID is stamped onto locally originated replies, standing in
	// for the real engine's node id.
	ReplierID uuid.UUID

	// Injectable failures. When set, the corresponding call fails with
	// the given error.
	DeclarePublisherErr error
	DeclareQueryableErr error
	PutErr              error
	DeleteErr           error
	ReplyErr            error

	mu         sync.Mutex
	closed     bool
	nextID     uint64
	publishers map[engine.PublisherHandle]*publisherState
	queryables map[engine.QueryableHandle]*queryableState

	puts    []PutCall
	deletes []DeleteCall
	replies []sample.Reply
}

var _ engine.Engine = (*Engine)(nil)

// New creates a fake engine with a random replier id.
func New() *Engine {
	return &Engine{
		ReplierID:  uuid.New(),
		publishers: make(map[engine.PublisherHandle]*publisherState),
		queryables: make(map[engine.QueryableHandle]*queryableState),
	}
}

// DeclarePublisher registers a publisher and returns its handle.
func (e *Engine) DeclarePublisher(ke keyexpr.KeyExpr, q qos.QoS) (engine.PublisherHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, engine.ErrClosed
	}
	if e.DeclarePublisherErr != nil {
		return nil, e.DeclarePublisherErr
	}

	e.nextID++
	st := &publisherState{id: e.nextID, keyExpr: ke, qos: q, active: true}
	e.publishers[st] = st
	return st, nil
}

// UndeclarePublisher releases a publisher handle. Releasing an unknown
// or already-released handle is an error: the session layer guarantees
// exactly one release per handle.
func (e *Engine) UndeclarePublisher(h engine.PublisherHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.publishers[h]
	if !ok || !st.active {
		return fmt.Errorf("unknown publisher handle")
	}
	st.active = false
	return nil
}

// PublisherPut records a put sent through a declared publisher.
func (e *Engine) PublisherPut(h engine.PublisherHandle, payload []byte, enc encoding.Encoding, attachment []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return engine.ErrClosed
	}
	if e.PutErr != nil {
		return e.PutErr
	}

	st, ok := e.publishers[h]
	if !ok || !st.active {
		return fmt.Errorf("put through released publisher handle")
	}
	e.puts = append(e.puts, PutCall{
		KeyExpr:    st.keyExpr,
		Payload:    payload,
		Encoding:   enc,
		Attachment: attachment,
	})
	return nil
}

// PublisherDelete records a delete marker sent through a declared
// publisher.
func (e *Engine) PublisherDelete(h engine.PublisherHandle, attachment []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return engine.ErrClosed
	}
	if e.DeleteErr != nil {
		return e.DeleteErr
	}

	st, ok := e.publishers[h]
	if !ok || !st.active {
		return fmt.Errorf("delete through released publisher handle")
	}
	e.deletes = append(e.deletes, DeleteCall{KeyExpr: st.keyExpr, Attachment: attachment})
	return nil
}

// DeclareQueryable registers a queryable callback and returns its handle.
func (e *Engine) DeclareQueryable(ke keyexpr.KeyExpr, complete bool, cb engine.QueryCallback) (engine.QueryableHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, engine.ErrClosed
	}
	if e.DeclareQueryableErr != nil {
		return nil, e.DeclareQueryableErr
	}

	e.nextID++
	st := &queryableState{id: e.nextID, keyExpr: ke, complete: complete, callback: cb, active: true}
	e.queryables[st] = st
	return st, nil
}

// UndeclareQueryable releases a queryable handle.
func (e *Engine) UndeclareQueryable(h engine.QueryableHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.queryables[h]
	if !ok || !st.active {
		return fmt.Errorf("unknown queryable handle")
	}
	st.active = false
	st.callback = nil
	return nil
}

// QueryReply records a reply, stamps the replier id, and routes it to
// the Query call that originated the token.
func (e *Engine) QueryReply(tok engine.QueryToken, r sample.Reply) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return engine.ErrClosed
	}
	if err := e.ReplyErr; err != nil {
		e.mu.Unlock()
		return err
	}

	qt, ok := tok.(*queryToken)
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("unknown query token")
	}

	// Stamp the local node id, as a real engine does for locally
	// originated replies.
	var stamped sample.Reply
	if s, isOK := r.OK(); isOK {
		stamped = sample.NewReplyOK(e.ReplierID, s)
	} else if re, isErr := r.Err(); isErr {
		stamped = sample.NewReplyErr(e.ReplierID, re)
	} else {
		e.mu.Unlock()
		return fmt.Errorf("reply has no variant")
	}
	e.replies = append(e.replies, stamped)
	e.mu.Unlock()

	select {
	case qt.ch <- stamped:
	default:
		// Collector gone or saturated; the reply is still recorded.
	}
	return nil
}

// Close marks the engine closed. Further operations fail with
// engine.ErrClosed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}
