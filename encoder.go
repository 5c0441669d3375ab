package main

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedController is returned for controllers with no mapping.
	// Nothing is encoded and the store is not touched.
	ErrUnsupportedController = errors.New("unsupported controller")

	// ErrMalformedMessage marks a message that was dropped because it
	// cannot be sent. It never stops the other messages of the same event.
	ErrMalformedMessage = errors.New("malformed message")
)

// Encoder turns controller events into FB-01 parameter changes. It owns the
// parameter store; every read and write of the store goes through it.
type Encoder struct {
	mu    sync.Mutex
	store *ParameterStore
}

func NewEncoder(store *ParameterStore) *Encoder {
	if store == nil {
		store = NewParameterStore()
	}
	return &Encoder{store: store}
}

// Encode applies value to the field mapped on controller and returns the
// messages to send, primary first. A value outside the field's range leaves
// the field as it was, but the current register is still sent.
//
// When a message is dropped as malformed the others are still returned,
// along with an error wrapping ErrMalformedMessage.
func (e *Encoder) Encode(controller, value, channel uint8) ([]Message, error) {
	c, ok := LookupControl(controller)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedController, "cc %d", controller)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// A change of the system channel goes out on the old one.
	sysch := e.store.Register(GroupSystem, sysChannelParam)
	scope := c.Scope()
	addr := addressFor(scope, channel)

	c.apply(e.store, value)

	var (
		out []Message
		err error
	)
	for i, f := range c.Fields() {
		m := buildMessage(scope, sysch, addr, f.Param, e.store.Register(f.Group, f.Param))
		if verr := m.Validate(scope); verr != nil {
			err = errors.Wrapf(ErrMalformedMessage, "cc %d value %d message %d (%s): %v", controller, value, i+1, m, verr)
			continue
		}
		out = append(out, m)
	}
	return out, err
}

// State returns a copy of the current register contents.
func (e *Encoder) State() StoreSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Snapshot()
}

// fieldValue returns the right-aligned value currently stored in f.
func (e *Encoder) fieldValue(f Field) byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return f.Value(e.store.Get(f))
}
