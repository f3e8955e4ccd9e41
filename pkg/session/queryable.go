package session

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/zlink-protocol/zlink-go/pkg/engine"
	"github.com/zlink-protocol/zlink-go/pkg/keyexpr"
)

// Handler receives inbound queries. Handlers run on engine goroutines,
// not the goroutine that declared the queryable, and must not block
// indefinitely; a stalled handler stalls engine-thread throughput for
// other deliveries.
type Handler func(*Query)

// QueryableBuilder declares a queryable. Obtained from
// Session.DeclareQueryable; Res performs the declaration.
type QueryableBuilder struct {
	session  *Session
	keyExpr  keyexpr.KeyExpr
	handler  Handler
	complete bool
}

// Complete declares that this queryable can fully answer any query on
// its key expression.
func (b *QueryableBuilder) Complete(complete bool) *QueryableBuilder {
	b.complete = complete
	return b
}

// Res declares the queryable with the engine and returns it in the
// declared state.
func (b *QueryableBuilder) Res() (*Queryable, error) {
	s := b.session

	if b.keyExpr.IsZero() {
		return nil, ErrInvalidKeyExpr
	}
	if b.handler == nil {
		return nil, ErrNilHandler
	}
	if s.IsClosed() {
		return nil, ErrSessionClosed
	}

	handler := b.handler
	callback := func(iq engine.InboundQuery) {
		handler(newQuery(s, iq))
	}

	handle, err := s.eng.DeclareQueryable(b.keyExpr, b.complete, callback)
	if err != nil {
		return nil, fmt.Errorf("declare queryable %q: %w", b.keyExpr, err)
	}

	q := &Queryable{
		session:  s,
		keyExpr:  b.keyExpr,
		complete: b.complete,
		handle:   handle,
	}

	regID, err := s.register(q)
	if err != nil {
		_ = s.eng.UndeclareQueryable(handle)
		return nil, err
	}
	q.regID = regID

	// Best-effort reclaim for queryables abandoned without Undeclare.
	runtime.SetFinalizer(q, func(q *Queryable) { _ = q.Undeclare() })

	s.logger.Debug("queryable declared", "session_id", s.id, "key_expr", b.keyExpr.String(),
		"complete", b.complete)
	return q, nil
}

// Queryable is a session-declared resource that receives inbound queries
// for its key expression. Once undeclared the engine stops delivering
// queries to its handler.
type Queryable struct {
	session  *Session
	regID    uint64
	keyExpr  keyexpr.KeyExpr
	complete bool

	mu sync.RWMutex
	// handle is nil once undeclared; the transition happens exactly once.
	handle engine.QueryableHandle
}

// KeyExpr returns the key expression the queryable was declared on.
func (q *Queryable) KeyExpr() keyexpr.KeyExpr {
	return q.keyExpr
}

// Complete reports whether the queryable was declared complete.
func (q *Queryable) Complete() bool {
	return q.complete
}

// IsValid reports whether the queryable is still declared.
func (q *Queryable) IsValid() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.handle != nil
}

// Undeclare releases the queryable's engine handle. The first call
// performs the release; subsequent calls are no-ops.
func (q *Queryable) Undeclare() error {
	q.mu.Lock()
	h := q.handle
	q.handle = nil
	q.mu.Unlock()

	if h == nil {
		return nil
	}

	runtime.SetFinalizer(q, nil)
	q.session.deregister(q.regID)
	q.session.logger.Debug("queryable undeclared", "session_id", q.session.id, "key_expr", q.keyExpr.String())

	if err := q.session.eng.UndeclareQueryable(h); err != nil {
		return fmt.Errorf("undeclare queryable %q: %w", q.keyExpr, err)
	}
	return nil
}
