package sample

import (
	"bytes"

	"github.com/google/uuid"

	"github.com/zlink-protocol/zlink-go/pkg/encoding"
)

// ReplyError is the payload of an error reply: application error data
// plus its encoding tag. No QoS or timestamp applies to errors.
type ReplyError struct {
	// Payload is the application-defined error data.
	Payload []byte

	// Encoding tags the payload format.
	Encoding encoding.Encoding
}

// Equal reports whether two reply errors carry the same payload.
func (e ReplyError) Equal(other ReplyError) bool {
	return bytes.Equal(e.Payload, other.Payload)
}

// Reply is the tagged two-variant result of a query: either a successful
// sample or an error payload. Construction goes through NewReplyOK and
// NewReplyErr so a cross-variant state is unrepresentable.
//
// ReplierID identifies the node that produced the reply. It is filled in
// by the engine for locally originated replies and only meaningful on
// replies received remotely; it never participates in equality.
type Reply struct {
	replierID uuid.UUID
	ok        *Sample
	err       *ReplyError
}

// NewReplyOK builds a success reply carrying s.
func NewReplyOK(replierID uuid.UUID, s Sample) Reply {
	return Reply{replierID: replierID, ok: &s}
}

// NewReplyErr builds an error reply carrying e.
func NewReplyErr(replierID uuid.UUID, e ReplyError) Reply {
	return Reply{replierID: replierID, err: &e}
}

// ReplierID returns the identifier of the replying node.
func (r Reply) ReplierID() uuid.UUID {
	return r.replierID
}

// IsOK reports whether r is the success variant.
func (r Reply) IsOK() bool {
	return r.ok != nil
}

// OK returns the success sample. The second return is false for the
// error variant.
func (r Reply) OK() (Sample, bool) {
	if r.ok == nil {
		return Sample{}, false
	}
	return *r.ok, true
}

// Err returns the error payload. The second return is false for the
// success variant.
func (r Reply) Err() (ReplyError, bool) {
	if r.err == nil {
		return ReplyError{}, false
	}
	return *r.err, true
}

// Equal reports whether two replies carry the same content. Success
// replies are equal iff their samples are equal; error replies are equal
// iff their error payloads are equal. The replier id is routing metadata
// and is excluded.
func (r Reply) Equal(other Reply) bool {
	switch {
	case r.ok != nil && other.ok != nil:
		return r.ok.Equal(*other.ok)
	case r.err != nil && other.err != nil:
		return r.err.Equal(*other.err)
	default:
		return false
	}
}
