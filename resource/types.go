package resource

import (
	"unsafe"

	"github.com/wippyai/rttr/export"
	"github.com/wippyai/rttr/typeid"
)

// Handle is an opaque reference to an object in a table.
// Handle 0 is reserved and always invalid.
type Handle uint32

// Object is one table entry.
type Object struct {
	Type *export.RecordData
	Ptr  unsafe.Pointer
	// Owned objects are destroyed through Type.Dtor when removed.
	Owned bool
}

// TypeID returns the id of the object's record, or typeid.Nil.
func (o Object) TypeID() typeid.ID {
	if o.Type == nil {
		return typeid.Nil
	}
	return o.Type.ID
}

// EventType classifies lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
	EventBorrowed
	EventBorrowReturned
)

func (e EventType) String() string {
	switch e {
	case EventCreated:
		return "created"
	case EventDropped:
		return "dropped"
	case EventBorrowed:
		return "borrowed"
	case EventBorrowReturned:
		return "borrow-returned"
	default:
		return "unknown"
	}
}

// Event represents a resource lifecycle event.
type Event struct {
	Object Object
	Handle Handle
	Type   EventType
	// Err is set when the destructor failed on EventDropped.
	Err error
}

// Observer receives notifications about resource lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}
