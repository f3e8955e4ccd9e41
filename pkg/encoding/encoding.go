// Package encoding defines the payload encoding tag carried alongside
// published data and replies.
//
// The tag is advisory metadata for the receiver; this layer never
// interprets payload bytes. Well-known tags follow the MIME-style
// "schema/subschema" convention.
package encoding

// Encoding tags a payload with its format. The zero value is Default.
type Encoding struct {
	id string
}

// Well-known encodings.
var (
	// Bytes is raw, uninterpreted bytes. This is the default encoding.
	Bytes = Encoding{id: "zlink/bytes"}

	// TextPlain is UTF-8 text.
	TextPlain = Encoding{id: "text/plain"}

	// ApplicationJSON is JSON-encoded data.
	ApplicationJSON = Encoding{id: "application/json"}

	// ApplicationCBOR is CBOR-encoded data.
	ApplicationCBOR = Encoding{id: "application/cbor"}

	// ApplicationOctetStream is an opaque binary blob.
	ApplicationOctetStream = Encoding{id: "application/octet-stream"}
)

// Default returns the default encoding (raw bytes).
func Default() Encoding {
	return Bytes
}

// New returns an encoding with an application-chosen tag.
func New(id string) Encoding {
	return Encoding{id: id}
}

// String returns the encoding tag. The zero value stringifies as the
// default tag.
func (e Encoding) String() string {
	if e.id == "" {
		return Bytes.id
	}
	return e.id
}

// Equal reports whether two encodings carry the same tag.
// The zero value compares equal to Bytes.
func (e Encoding) Equal(other Encoding) bool {
	return e.String() == other.String()
}
