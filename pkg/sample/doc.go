// Package sample defines the data-bearing value types of the protocol:
// Sample (the unit carried by publications and successful replies) and
// Reply (the tagged success/error result of a query).
//
// # Reply Variants
//
// A Reply is exactly one of two variants:
//
//   - Success: carries a Sample (key expression, payload, encoding, kind,
//     optional timestamp/QoS/attachment).
//   - Error: carries an error payload and its encoding.
//
// The variant is fixed at construction (NewReplyOK / NewReplyErr), so a
// reply can never hold both a sample and an error payload. Equality
// compares content only; the replier id is routing metadata.
//
// # Attachments
//
// Attachments are opaque bytes to the engine. EncodeAttachment and
// DecodeAttachment offer a deterministic CBOR map codec for applications
// that want structured metadata.
package sample
