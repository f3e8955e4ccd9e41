// Package engine defines the contract between the session layer and the
// native messaging engine that owns transport, routing and the wire
// codec.
//
// The engine is an external collaborator: this module never looks inside
// handles or tokens, it only carries them between declaration and use.
// The session layer guarantees in return that a released handle is never
// passed to the engine again.
package engine
