package resource

import (
	stderrors "errors"
	"sync"

	"github.com/wippyai/rttr/typeid"
)

// Table manages objects with type information and observer support.
type Table struct {
	backend   *backend
	observers []Observer
	obsMu     sync.RWMutex
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{backend: newBackend()}
}

// Insert adds obj and returns its handle, or 0 if the table is closed.
func (t *Table) Insert(obj Object) Handle {
	handle, err := t.backend.create(obj)
	if err != nil {
		return 0
	}

	t.notify(Event{Type: EventCreated, Handle: handle, Object: obj})
	return handle
}

// Get retrieves an object by handle.
func (t *Table) Get(handle Handle) (Object, bool) {
	return t.backend.get(handle)
}

// GetTyped retrieves an object only if its record has the expected id.
func (t *Table) GetTyped(handle Handle, id typeid.ID) (Object, bool) {
	actual, ok := t.backend.typeID(handle)
	if !ok || actual != id {
		return Object{}, false
	}
	return t.backend.get(handle)
}

// Remove drops an entry. Owned objects are destroyed; the destructor's error
// is returned after the entry is gone.
func (t *Table) Remove(handle Handle) (Object, error) {
	obj, err := t.backend.drop(handle)
	if err != nil {
		return Object{}, err
	}

	derr := destroy(obj)
	t.notify(Event{Type: EventDropped, Handle: handle, Object: obj, Err: derr})
	return obj, derr
}

func destroy(obj Object) error {
	if !obj.Owned || obj.Type == nil || obj.Type.Dtor == nil || obj.Ptr == nil {
		return nil
	}
	return obj.Type.Dtor.Invoke(obj.Ptr)
}

// Borrow pins handle until ReturnBorrow.
func (t *Table) Borrow(handle Handle) bool {
	if !t.backend.borrow(handle) {
		return false
	}
	obj, _ := t.backend.get(handle)
	t.notify(Event{Type: EventBorrowed, Handle: handle, Object: obj})
	return true
}

func (t *Table) ReturnBorrow(handle Handle) bool {
	if !t.backend.returnBorrow(handle) {
		return false
	}
	obj, _ := t.backend.get(handle)
	t.notify(Event{Type: EventBorrowReturned, Handle: handle, Object: obj})
	return true
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of live entries.
func (t *Table) Len() int {
	return t.backend.len()
}

// Each iterates over live entries until fn returns false.
func (t *Table) Each(fn func(Handle, Object) bool) {
	t.backend.each(fn)
}

// Clear removes every entry without outstanding borrows.
func (t *Table) Clear() error {
	// Collect handles first to avoid holding the lock during Remove
	var handles []Handle
	t.backend.each(func(h Handle, _ Object) bool {
		handles = append(handles, h)
		return true
	})
	var errs []error
	for _, h := range handles {
		if _, err := t.Remove(h); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// Close destroys every owned object, borrowed or not, and stops accepting
// inserts.
func (t *Table) Close() error {
	var errs []error
	for _, obj := range t.backend.close() {
		if err := destroy(obj); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
