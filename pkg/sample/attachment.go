package sample

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// attachEncMode is the CBOR encoder mode for attachments.
// Configured for deterministic output so equal attachment maps encode
// to equal bytes.
var attachEncMode cbor.EncMode

// attachDecMode is the CBOR decoder mode for attachments.
var attachDecMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	attachEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
	}
	attachDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// EncodeAttachment encodes a string-keyed metadata map into the byte
// form carried on the wire. Returns nil for an empty map.
//
// Attachments are opaque to the engine; this codec is a convenience for
// applications that want structured metadata rather than raw bytes.
func EncodeAttachment(attrs map[string][]byte) ([]byte, error) {
	if len(attrs) == 0 {
		return nil, nil
	}
	data, err := attachEncMode.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("encode attachment: %w", err)
	}
	return data, nil
}

// DecodeAttachment decodes attachment bytes produced by EncodeAttachment.
// Returns nil for empty input.
func DecodeAttachment(data []byte) (map[string][]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var attrs map[string][]byte
	if err := attachDecMode.Unmarshal(data, &attrs); err != nil {
		return nil, fmt.Errorf("decode attachment: %w", err)
	}
	return attrs, nil
}
