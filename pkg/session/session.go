package session

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"github.com/zlink-protocol/zlink-go/pkg/config"
	"github.com/zlink-protocol/zlink-go/pkg/engine"
	"github.com/zlink-protocol/zlink-go/pkg/keyexpr"
)

// undeclarer is the common surface the session registry needs from every
// declared resource.
type undeclarer interface {
	Undeclare() error
}

// Session is the root handle to the engine. It is the sole factory for
// declaring resources and the sole authority for global teardown: Close
// undeclares every live resource exactly once and then releases the
// engine.
//
// A Session and its declared resources are safe for concurrent use by
// multiple goroutines.
type Session struct {
	id     uuid.UUID
	eng    engine.Engine
	cfg    config.Config
	logger *slog.Logger

	mu        sync.Mutex
	closed    bool
	nextRegID uint64
	// resources tracks live declared resources by registry id so Close
	// can cascade to them. Resources hold only their id back, never a
	// reference to each other.
	resources map[uint64]undeclarer
}

// Open validates cfg and establishes a session over the given engine.
// The session takes ownership of the engine: Close releases it.
func Open(eng engine.Engine, cfg config.Config) (*Session, error) {
	if eng == nil {
		return nil, errors.New("engine is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Session{
		id:        uuid.New(),
		eng:       eng,
		cfg:       cfg,
		logger:    logger,
		resources: make(map[uint64]undeclarer),
	}

	// Best-effort reclaim for sessions abandoned without Close. Not
	// timely; applications must not rely on it for resource release.
	runtime.SetFinalizer(s, func(s *Session) { _ = s.Close() })

	s.logger.Debug("session opened", "session_id", s.id, "mode", string(cfg.Mode))
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// IsClosed reports whether Close has been called.
func (s *Session) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close undeclares every tracked resource (each exactly once, order
// unspecified) and then releases the engine. Close is idempotent; any
// operation after it fails with ErrSessionClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	live := make([]undeclarer, 0, len(s.resources))
	for _, r := range s.resources {
		live = append(live, r)
	}
	s.resources = nil
	s.mu.Unlock()

	for _, r := range live {
		if err := r.Undeclare(); err != nil {
			s.logger.Warn("undeclare during session close failed", "session_id", s.id, "error", err)
		}
	}

	runtime.SetFinalizer(s, nil)
	s.logger.Debug("session closed", "session_id", s.id, "resources", len(live))

	if err := s.eng.Close(); err != nil {
		return fmt.Errorf("close engine: %w", err)
	}
	return nil
}

// DeclarePublisher starts declaring a publisher on ke. The returned
// builder accepts an optional QoS and encoding; Res performs the
// declaration.
func (s *Session) DeclarePublisher(ke keyexpr.KeyExpr) *PublisherBuilder {
	return &PublisherBuilder{session: s, keyExpr: ke}
}

// DeclareQueryable starts declaring a queryable on ke. The handler is
// invoked on an engine goroutine for every matching query and must not
// block indefinitely.
func (s *Session) DeclareQueryable(ke keyexpr.KeyExpr, handler Handler) *QueryableBuilder {
	return &QueryableBuilder{session: s, keyExpr: ke, handler: handler}
}

// register adds a declared resource to the tracking table and returns
// its registry id. Fails with ErrSessionClosed once Close has started.
func (s *Session) register(r undeclarer) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrSessionClosed
	}
	s.nextRegID++
	id := s.nextRegID
	s.resources[id] = r
	return id, nil
}

// deregister removes a resource from the tracking table.
// Safe to call after Close and for absent ids.
func (s *Session) deregister(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resources != nil {
		delete(s.resources, id)
	}
}

// resourceCount returns the number of tracked resources.
func (s *Session) resourceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.resources)
}
