package textbuf

import (
	"errors"
	"sync"

	"github.com/dshills/multibuf/internal/coords"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
)

// Buffer is an independently versioned text buffer. It owns its content,
// assigns monotonically increasing versions, and notifies subscribers of
// every applied edit in order.
//
// All methods are safe for concurrent use. Edits are serialized: a
// subscriber observes notifications in exactly the order the edits were
// applied, and no later edit is applied until all subscribers have seen
// the current one.
type Buffer struct {
	// applyMu serializes edits together with their notifications so the
	// notification stream never reorders.
	applyMu sync.Mutex

	mu      sync.RWMutex
	id      BufferID
	text    string
	version Version
	log     []Change

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

// NewBuffer creates a buffer with the given initial content at version zero.
func NewBuffer(text string) *Buffer {
	return &Buffer{
		id:   NewBufferID(),
		text: text,
		subs: make(map[int]func(Change)),
	}
}

// ID returns the buffer's identity.
func (b *Buffer) ID() BufferID {
	return b.id
}

// Version returns the current version.
func (b *Buffer) Version() Version {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// Len returns the current byte length.
func (b *Buffer) Len() coords.ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return coords.ByteOffset(len(b.text))
}

// Snapshot returns an immutable view of the current state.
func (b *Buffer) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Snapshot{
		id:      b.id,
		text:    b.text,
		version: b.version,
		log:     b.log[:len(b.log):len(b.log)],
	}
}

// Apply replaces the edit's range with its replacement text, producing a
// new version. The resulting Change is delivered to every subscriber
// before Apply returns.
func (b *Buffer) Apply(edit coords.Edit) (Change, error) {
	b.applyMu.Lock()
	defer b.applyMu.Unlock()

	b.mu.Lock()
	if !edit.Range.IsValid() {
		b.mu.Unlock()
		return Change{}, ErrRangeInvalid
	}
	if edit.Range.Start < 0 || edit.Range.End > coords.ByteOffset(len(b.text)) {
		b.mu.Unlock()
		return Change{}, ErrOffsetOutOfRange
	}

	old := b.text[edit.Range.Start:edit.Range.End]
	b.text = b.text[:edit.Range.Start] + edit.NewText + b.text[edit.Range.End:]

	change := Change{
		Buffer:   b.id,
		Base:     b.version,
		Version:  b.version + 1,
		Range:    edit.Range,
		NewRange: coords.Range{Start: edit.Range.Start, End: edit.Range.Start + coords.ByteOffset(len(edit.NewText))},
		OldText:  old,
		NewText:  edit.NewText,
	}
	b.version++
	b.log = append(b.log, change)

	b.subMu.Lock()
	handlers := make([]func(Change), 0, len(b.subs))
	for _, fn := range b.subs {
		handlers = append(handlers, fn)
	}
	b.subMu.Unlock()
	b.mu.Unlock()

	for _, fn := range handlers {
		fn(change)
	}
	return change, nil
}

// AnchorAt creates an anchor at the given offset in the current version.
func (b *Buffer) AnchorAt(offset coords.ByteOffset, bias Bias) (Anchor, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if offset < 0 || offset > coords.ByteOffset(len(b.text)) {
		return Anchor{}, ErrOffsetOutOfRange
	}
	return Anchor{Version: b.version, Offset: offset, Bias: bias}, nil
}

// Subscribe registers a handler for edit notifications. Handlers run
// synchronously, in edit order. The returned function unsubscribes.
func (b *Buffer) Subscribe(fn func(Change)) func() {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	return func() {
		b.subMu.Lock()
		defer b.subMu.Unlock()
		delete(b.subs, id)
	}
}
