package engine

import (
	"errors"

	"github.com/zlink-protocol/zlink-go/pkg/encoding"
	"github.com/zlink-protocol/zlink-go/pkg/keyexpr"
	"github.com/zlink-protocol/zlink-go/pkg/qos"
	"github.com/zlink-protocol/zlink-go/pkg/sample"
)

// ErrClosed is returned by engine implementations for operations on a
// closed engine.
var ErrClosed = errors.New("engine is closed")

// PublisherHandle is an opaque engine-side reference to a declared
// publisher. Only the engine that issued a handle may interpret it.
type PublisherHandle any

// QueryableHandle is an opaque engine-side reference to a declared
// queryable.
type QueryableHandle any

// QueryToken identifies one inbound query for the duration of its reply
// window. It is issued by the engine alongside the query and passed back
// verbatim with the reply.
type QueryToken any

// InboundQuery is one request delivered by the engine to a queryable
// callback. Payload, Encoding and Attachment are optional query body
// data; Token routes the reply back to the requester.
type InboundQuery struct {
	KeyExpr    keyexpr.KeyExpr
	Payload    []byte
	Encoding   encoding.Encoding
	Attachment []byte
	Token      QueryToken
}

// QueryCallback receives inbound queries. The engine invokes callbacks
// on its own worker goroutines; callbacks must not block indefinitely.
type QueryCallback func(InboundQuery)

// Engine is the contract this layer relies on from the native messaging
// engine (transport, routing, wire codec). Implementations must be safe
// for concurrent use; every method call is one atomic engine invocation.
//
// All methods are synchronous: they return once the engine has accepted
// (not necessarily delivered) the operation.
type Engine interface {
	// DeclarePublisher registers a publisher for ke with the given QoS
	// and returns its handle.
	DeclarePublisher(ke keyexpr.KeyExpr, q qos.QoS) (PublisherHandle, error)

	// UndeclarePublisher releases a publisher handle. Implementations
	// may treat repeated release as an error; callers guarantee exactly
	// one call per handle.
	UndeclarePublisher(h PublisherHandle) error

	// PublisherPut sends one data sample through a declared publisher.
	PublisherPut(h PublisherHandle, payload []byte, enc encoding.Encoding, attachment []byte) error

	// PublisherDelete sends one delete marker through a declared publisher.
	PublisherDelete(h PublisherHandle, attachment []byte) error

	// DeclareQueryable registers a queryable for ke. The callback is
	// invoked for every matching inbound query until the handle is
	// released. complete declares that this queryable can fully answer
	// queries on ke.
	DeclareQueryable(ke keyexpr.KeyExpr, complete bool, cb QueryCallback) (QueryableHandle, error)

	// UndeclareQueryable releases a queryable handle.
	UndeclareQueryable(h QueryableHandle) error

	// QueryReply sends one reply back to the requester identified by the
	// token. The engine fills in the replier id for locally originated
	// replies.
	QueryReply(tok QueryToken, r sample.Reply) error

	// Close shuts the engine down and releases its transport resources.
	Close() error
}
