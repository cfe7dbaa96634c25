package textbuf

import (
	"fmt"

	"github.com/dshills/multibuf/internal/coords"
	"github.com/google/uuid"
)

// BufferID uniquely identifies a buffer.
type BufferID string

// NewBufferID generates a fresh buffer identity.
func NewBufferID() BufferID {
	return BufferID(uuid.New().String())
}

// Version identifies a buffer state. It starts at zero for a freshly
// created buffer and increases by one per applied edit.
type Version uint64

// Change describes one applied edit, in the form consumed by the
// aggregation engine's edit propagator: the replaced range in the old
// text, the replacement text, and the version transition.
type Change struct {
	// Buffer is the identity of the edited buffer.
	Buffer BufferID

	// Base is the version the edit was applied against.
	Base Version

	// Version is the resulting version (Base + 1).
	Version Version

	// Range is the replaced range in the old text.
	Range coords.Range

	// NewRange is the corresponding range in the new text.
	NewRange coords.Range

	// OldText is the text that was replaced.
	OldText string

	// NewText is the replacement text.
	NewText string
}

// String returns a human-readable representation of the change.
func (c Change) String() string {
	return fmt.Sprintf("v%d->v%d %s -> %q", c.Base, c.Version, c.Range, c.NewText)
}

// Delta returns the change in buffer length in bytes.
func (c Change) Delta() coords.ByteOffset {
	return coords.ByteOffset(len(c.NewText)) - c.Range.Len()
}
