package hxel

import (
	"errors"
	"fmt"

	"github.com/pthm/hxel/lib/encoding"
)

// Encoder seals snapshots with a registry key.
type Encoder = encoding.Encoder

// State is the sealed content of a snapshot.
type State = encoding.State

// NewEncoder creates an encoder. Keys shorter than 32 bytes are stretched.
func NewEncoder(key []byte) (*Encoder, error) {
	return encoding.NewEncoder(key)
}

var decodeSentinels = []struct{ cause, sentinel error }{
	{encoding.ErrInvalidFormat, ErrInvalidFormat},
	{encoding.ErrSignatureInvalid, ErrSignatureInvalid},
	{encoding.ErrDecryptFailed, ErrDecryptFailed},
}

// decodeError marks a decode failure with the matching hxel sentinel. The
// cause stays in the chain.
func decodeError(err error) error {
	for _, m := range decodeSentinels {
		if errors.Is(err, m.cause) {
			return fmt.Errorf("%w: %w", m.sentinel, err)
		}
	}
	return err
}

// Snapshot seals the element's tag and attributes. Signed snapshots are
// readable but tamper-proof; sensitive ones are encrypted.
//
//	s, err := reg.Snapshot(panel, false)
//	// later, on a fresh element:
//	err = reg.Restore(other, s, false)
func (reg *Registry) Snapshot(h Host, sensitive bool) (string, error) {
	el := h.Base()
	s := State{Tag: el.TagName()}
	for _, a := range el.node.Attributes() {
		s.Attrs = append(s.Attrs, encoding.Attribute{Name: a.Name, Value: a.Value})
	}
	return reg.encoder.Encode(s, sensitive)
}

// Restore applies a snapshot's attributes to an element of the same tag.
// Observed attributes flow into their properties as usual.
func (reg *Registry) Restore(h Host, encoded string, sensitive bool) error {
	s, err := reg.encoder.Decode(encoded, sensitive)
	if err != nil {
		return decodeError(err)
	}

	el := h.Base()
	if s.Tag != el.TagName() {
		return fmt.Errorf("%w: snapshot of %s applied to %s", ErrInvalidFormat, s.Tag, el.TagName())
	}
	for _, a := range s.Attrs {
		el.node.SetAttribute(a.Name, a.Value)
	}
	return nil
}
