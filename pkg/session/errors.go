package session

import "errors"

// Session package errors.
var (
	// ErrSessionClosed is returned when operating on a closed session.
	ErrSessionClosed = errors.New("session is closed")

	// ErrPublisherClosed is returned when operating on an undeclared
	// publisher.
	ErrPublisherClosed = errors.New("publisher is not valid")

	// ErrQueryableClosed is returned when operating on an undeclared
	// queryable.
	ErrQueryableClosed = errors.New("queryable is not valid")

	// ErrAlreadyReplied is returned when a second reply is attempted for
	// the same query.
	ErrAlreadyReplied = errors.New("query was already replied to")

	// ErrNilHandler is returned when declaring a queryable without a
	// handler.
	ErrNilHandler = errors.New("queryable handler is nil")

	// ErrInvalidKeyExpr is returned when declaring a resource with the
	// zero KeyExpr value.
	ErrInvalidKeyExpr = errors.New("key expression is not valid")
)
