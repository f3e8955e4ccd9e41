package session

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/zlink-protocol/zlink-go/pkg/encoding"
	"github.com/zlink-protocol/zlink-go/pkg/engine"
	"github.com/zlink-protocol/zlink-go/pkg/keyexpr"
	"github.com/zlink-protocol/zlink-go/pkg/qos"
	"github.com/zlink-protocol/zlink-go/pkg/sample"
)

// Query represents one inbound request delivered to a queryable handler.
// It carries the requester's key expression and optional body, plus the
// engine token that routes the reply back.
//
// Exactly one reply may be sent per query: the first Res call on any
// builder obtained from it consumes the reply slot, and every later
// attempt fails with ErrAlreadyReplied.
type Query struct {
	session    *Session
	keyExpr    keyexpr.KeyExpr
	payload    []byte
	enc        encoding.Encoding
	attachment []byte
	token      engine.QueryToken
	replied    atomic.Bool
}

// newQuery wraps an engine-delivered query with the session
// back-reference used to send the reply.
func newQuery(s *Session, iq engine.InboundQuery) *Query {
	return &Query{
		session:    s,
		keyExpr:    iq.KeyExpr,
		payload:    iq.Payload,
		enc:        iq.Encoding,
		attachment: iq.Attachment,
		token:      iq.Token,
	}
}

// KeyExpr returns the key expression the query was issued on.
func (q *Query) KeyExpr() keyexpr.KeyExpr {
	return q.keyExpr
}

// Payload returns the optional query body. Nil when the requester sent
// no body.
func (q *Query) Payload() []byte {
	return q.payload
}

// PayloadEncoding returns the encoding of the query body.
func (q *Query) PayloadEncoding() encoding.Encoding {
	return q.enc
}

// Attachment returns the optional metadata attached by the requester.
func (q *Query) Attachment() []byte {
	return q.attachment
}

// Reply starts building a success reply carrying a sample on ke.
func (q *Query) Reply(ke keyexpr.KeyExpr, payload []byte, kind sample.Kind) *ReplyBuilder {
	return &ReplyBuilder{
		query: q,
		s: sample.Sample{
			KeyExpr: ke,
			Payload: payload,
			Kind:    kind,
			QoS:     qos.Default(),
		},
		qosBuilder: qos.NewBuilder(),
	}
}

// ReplyErr starts building an error reply carrying an error payload.
func (q *Query) ReplyErr(payload []byte, enc encoding.Encoding) *ReplyErrBuilder {
	return &ReplyErrBuilder{
		query: q,
		err:   sample.ReplyError{Payload: payload, Encoding: enc},
	}
}

// send consumes the one-shot reply slot and forwards the reply through
// the session. The slot is consumed even if the engine call fails; a
// query gets one send attempt, observable by the caller.
func (q *Query) send(r sample.Reply) error {
	if !q.replied.CompareAndSwap(false, true) {
		return ErrAlreadyReplied
	}
	if q.session.IsClosed() {
		return ErrSessionClosed
	}

	if err := q.session.eng.QueryReply(q.token, r); err != nil {
		return fmt.Errorf("reply on %q: %w", q.keyExpr, err)
	}
	return nil
}

// ReplyBuilder assembles the success variant of a reply. All setters are
// optional and chainable; Res materializes the immutable reply and sends
// it back to the requester.
//
// The replier id is filled in by the engine for locally originated
// replies; it is never set here.
type ReplyBuilder struct {
	query      *Query
	s          sample.Sample
	qosBuilder *qos.Builder
}

// Timestamp sets the sample timestamp.
func (b *ReplyBuilder) Timestamp(t time.Time) *ReplyBuilder {
	b.s.Timestamp = t
	return b
}

// Encoding sets the sample payload encoding.
func (b *ReplyBuilder) Encoding(e encoding.Encoding) *ReplyBuilder {
	b.s.Encoding = e
	return b
}

// Attachment attaches application metadata to the reply.
func (b *ReplyBuilder) Attachment(data []byte) *ReplyBuilder {
	b.s.Attachment = data
	return b
}

// Express sets the express flag on the reply's QoS.
func (b *ReplyBuilder) Express(express bool) *ReplyBuilder {
	b.qosBuilder.Express(express)
	return b
}

// Priority sets the priority on the reply's QoS.
func (b *ReplyBuilder) Priority(p qos.Priority) *ReplyBuilder {
	b.qosBuilder.Priority(p)
	return b
}

// CongestionControl sets the congestion control mode on the reply's QoS.
func (b *ReplyBuilder) CongestionControl(c qos.CongestionControl) *ReplyBuilder {
	b.qosBuilder.CongestionControl(c)
	return b
}

// Res sends the success reply. Fails with ErrAlreadyReplied if the query
// was already replied to.
func (b *ReplyBuilder) Res() error {
	s := b.s
	s.QoS = b.qosBuilder.Build()
	return b.query.send(sample.NewReplyOK(uuid.Nil, s))
}

// ReplyErrBuilder assembles the error variant of a reply.
type ReplyErrBuilder struct {
	query *Query
	err   sample.ReplyError
}

// Res sends the error reply. Fails with ErrAlreadyReplied if the query
// was already replied to.
func (b *ReplyErrBuilder) Res() error {
	return b.query.send(sample.NewReplyErr(uuid.Nil, b.err))
}
