package session

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/zlink-protocol/zlink-go/pkg/encoding"
	"github.com/zlink-protocol/zlink-go/pkg/engine"
	"github.com/zlink-protocol/zlink-go/pkg/keyexpr"
	"github.com/zlink-protocol/zlink-go/pkg/qos"
)

// PublisherBuilder declares a publisher. Obtained from
// Session.DeclarePublisher; Res performs the declaration.
type PublisherBuilder struct {
	session *Session
	keyExpr keyexpr.KeyExpr
	qos     qos.QoS
	qosSet  bool
	enc     encoding.Encoding
}

// QoS sets the publisher's quality of service. Unset, the session
// configuration's default QoS applies.
func (b *PublisherBuilder) QoS(q qos.QoS) *PublisherBuilder {
	b.qos = q
	b.qosSet = true
	return b
}

// Encoding sets the default encoding for payloads sent through the
// publisher. Individual puts may override it.
func (b *PublisherBuilder) Encoding(e encoding.Encoding) *PublisherBuilder {
	b.enc = e
	return b
}

// Res declares the publisher with the engine and returns it in the
// declared state. On engine failure no publisher is produced and nothing
// is registered with the session.
func (b *PublisherBuilder) Res() (*Publisher, error) {
	s := b.session

	if b.keyExpr.IsZero() {
		return nil, ErrInvalidKeyExpr
	}
	if s.IsClosed() {
		return nil, ErrSessionClosed
	}

	q := b.qos
	if !b.qosSet {
		q = s.cfg.DefaultQoS()
	}

	handle, err := s.eng.DeclarePublisher(b.keyExpr, q)
	if err != nil {
		return nil, fmt.Errorf("declare publisher %q: %w", b.keyExpr, err)
	}

	p := &Publisher{
		session: s,
		keyExpr: b.keyExpr,
		qos:     q,
		enc:     b.enc,
		handle:  handle,
	}

	regID, err := s.register(p)
	if err != nil {
		// Session closed while we were declaring; release the fresh
		// handle so it cannot leak.
		_ = s.eng.UndeclarePublisher(handle)
		return nil, err
	}
	p.regID = regID

	// Best-effort reclaim for publishers abandoned without Undeclare.
	runtime.SetFinalizer(p, func(p *Publisher) { _ = p.Undeclare() })

	s.logger.Debug("publisher declared", "session_id", s.id, "key_expr", b.keyExpr.String(),
		"priority", q.Priority().String(), "congestion", q.CongestionControl().String())
	return p, nil
}

// Publisher is a session-declared resource bound to a key expression,
// QoS and default encoding. QoS is fixed at declaration time; only the
// encoding and attachment vary per message.
//
// A Publisher is safe for concurrent use. Once undeclared it is
// permanently invalid: every subsequent put or delete fails with
// ErrPublisherClosed.
type Publisher struct {
	session *Session
	regID   uint64
	keyExpr keyexpr.KeyExpr
	qos     qos.QoS
	enc     encoding.Encoding

	mu sync.RWMutex
	// handle is nil once undeclared. The nil transition happens exactly
	// once, under mu; readers either see the valid handle or absence.
	handle engine.PublisherHandle
}

// KeyExpr returns the key expression the publisher was declared on.
func (p *Publisher) KeyExpr() keyexpr.KeyExpr {
	return p.keyExpr
}

// QoS returns the publisher's quality of service.
func (p *Publisher) QoS() qos.QoS {
	return p.qos
}

// Priority returns the priority fixed at declaration time.
func (p *Publisher) Priority() qos.Priority {
	return p.qos.Priority()
}

// CongestionControl returns the congestion control mode fixed at
// declaration time.
func (p *Publisher) CongestionControl() qos.CongestionControl {
	return p.qos.CongestionControl()
}

// Encoding returns the publisher's default payload encoding.
func (p *Publisher) Encoding() encoding.Encoding {
	return p.enc
}

// IsValid reports whether the publisher is still declared.
func (p *Publisher) IsValid() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.handle != nil
}

// currentHandle returns the engine handle, or false once undeclared.
func (p *Publisher) currentHandle() (engine.PublisherHandle, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.handle == nil {
		return nil, false
	}
	return p.handle, true
}

// Undeclare releases the publisher's engine handle. The first call
// performs the release; subsequent calls are no-ops. Undeclared is a
// terminal state.
func (p *Publisher) Undeclare() error {
	p.mu.Lock()
	h := p.handle
	p.handle = nil
	p.mu.Unlock()

	if h == nil {
		return nil
	}

	runtime.SetFinalizer(p, nil)
	p.session.deregister(p.regID)
	p.session.logger.Debug("publisher undeclared", "session_id", p.session.id, "key_expr", p.keyExpr.String())

	if err := p.session.eng.UndeclarePublisher(h); err != nil {
		return fmt.Errorf("undeclare publisher %q: %w", p.keyExpr, err)
	}
	return nil
}

// Put starts a put operation carrying payload. The returned builder can
// be chained with an encoding override and an attachment; Res sends.
func (p *Publisher) Put(payload []byte) *PutBuilder {
	return &PutBuilder{publisher: p, payload: payload, enc: p.enc}
}

// Delete starts a delete-marker operation for the publisher's key
// expression.
func (p *Publisher) Delete() *DeleteBuilder {
	return &DeleteBuilder{publisher: p}
}

// PutBuilder assembles one put operation. Each Res call is an
// independent send; reusing a builder repeats the operation.
type PutBuilder struct {
	publisher  *Publisher
	payload    []byte
	enc        encoding.Encoding
	attachment []byte
}

// Encoding overrides the publisher's default encoding for this message.
func (b *PutBuilder) Encoding(e encoding.Encoding) *PutBuilder {
	b.enc = e
	return b
}

// Attachment attaches application metadata to this message.
func (b *PutBuilder) Attachment(data []byte) *PutBuilder {
	b.attachment = data
	return b
}

// Res sends the put through the engine: exactly one engine call, no
// retry. Fails with ErrPublisherClosed if the publisher was undeclared.
func (b *PutBuilder) Res() error {
	h, ok := b.publisher.currentHandle()
	if !ok {
		return ErrPublisherClosed
	}

	if err := b.publisher.session.eng.PublisherPut(h, b.payload, b.enc, b.attachment); err != nil {
		return fmt.Errorf("put on %q: %w", b.publisher.keyExpr, err)
	}
	return nil
}

// DeleteBuilder assembles one delete-marker operation. Each Res call is
// an independent send.
type DeleteBuilder struct {
	publisher  *Publisher
	attachment []byte
}

// Attachment attaches application metadata to this message.
func (b *DeleteBuilder) Attachment(data []byte) *DeleteBuilder {
	b.attachment = data
	return b
}

// Res sends the delete marker through the engine. Fails with
// ErrPublisherClosed if the publisher was undeclared.
func (b *DeleteBuilder) Res() error {
	h, ok := b.publisher.currentHandle()
	if !ok {
		return ErrPublisherClosed
	}

	if err := b.publisher.session.eng.PublisherDelete(h, b.attachment); err != nil {
		return fmt.Errorf("delete on %q: %w", b.publisher.keyExpr, err)
	}
	return nil
}
