package sample

import (
	"bytes"
	"time"

	"github.com/zlink-protocol/zlink-go/pkg/encoding"
	"github.com/zlink-protocol/zlink-go/pkg/keyexpr"
	"github.com/zlink-protocol/zlink-go/pkg/qos"
)

// Kind distinguishes data samples from delete markers.
type Kind uint8

const (
	// KindPut carries a data value for the key expression.
	KindPut Kind = 0

	// KindDelete marks the key expression's value as deleted.
	KindDelete Kind = 1
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPut:
		return "PUT"
	case KindDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// IsValid reports whether k is a defined kind.
func (k Kind) IsValid() bool {
	return k == KindPut || k == KindDelete
}

// Sample is the unit of data carried by publications and successful
// replies: a key expression, a payload with its encoding, a kind, and
// optional timestamp, QoS and attachment.
//
// Samples are value types. Once constructed they must be treated as
// immutable; the payload and attachment slices must not be mutated.
type Sample struct {
	// KeyExpr is the address the sample was produced on.
	KeyExpr keyexpr.KeyExpr

	// Payload is the sample data. May be empty for delete markers.
	Payload []byte

	// Encoding tags the payload format.
	Encoding encoding.Encoding

	// Kind distinguishes data from delete markers.
	Kind Kind

	// Timestamp is when the sample was produced. The zero time means
	// no timestamp was attached.
	Timestamp time.Time

	// QoS is the quality of service the sample was sent with.
	QoS qos.QoS

	// Attachment is optional application metadata riding along with the
	// payload. Nil means no attachment.
	Attachment []byte
}

// Equal reports whether two samples carry the same content: key
// expression, payload, encoding, kind, timestamp, QoS and attachment.
func (s Sample) Equal(other Sample) bool {
	return s.KeyExpr.Equal(other.KeyExpr) &&
		bytes.Equal(s.Payload, other.Payload) &&
		s.Encoding.Equal(other.Encoding) &&
		s.Kind == other.Kind &&
		s.Timestamp.Equal(other.Timestamp) &&
		s.QoS.Equal(other.QoS) &&
		bytes.Equal(s.Attachment, other.Attachment)
}
