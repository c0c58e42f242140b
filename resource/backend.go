package resource

import (
	"errors"
	"sync"

	"github.com/wippyai/rttr/typeid"
)

var (
	ErrClosed            = errors.New("resource table closed")
	ErrOutstandingBorrow = errors.New("cannot drop object with outstanding borrows")
	ErrInvalidHandle     = errors.New("invalid handle")
)

// backend is the slot storage behind Table.
type backend struct {
	entries  []entry
	freeList []Handle
	mu       sync.RWMutex
	closed   bool
}

type entry struct {
	obj         Object
	borrowCount uint32
	valid       bool
}

func newBackend() *backend {
	return &backend{
		entries:  make([]entry, 0, 64),
		freeList: make([]Handle, 0, 16),
	}
}

func (b *backend) create(obj Object) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}

	e := entry{obj: obj, valid: true}

	if len(b.freeList) > 0 {
		handle := b.freeList[len(b.freeList)-1]
		b.freeList = b.freeList[:len(b.freeList)-1]
		b.entries[handle-1] = e
		return handle, nil
	}

	b.entries = append(b.entries, e)
	return Handle(len(b.entries)), nil
}

// lookup must be called with mu held.
func (b *backend) lookup(handle Handle) *entry {
	if handle == 0 || int(handle-1) >= len(b.entries) {
		return nil
	}
	e := &b.entries[handle-1]
	if !e.valid {
		return nil
	}
	return e
}

func (b *backend) get(handle Handle) (Object, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e := b.lookup(handle)
	if e == nil {
		return Object{}, false
	}
	return e.obj, true
}

func (b *backend) typeID(handle Handle) (typeid.ID, bool) {
	obj, ok := b.get(handle)
	if !ok {
		return typeid.Nil, false
	}
	return obj.TypeID(), true
}

func (b *backend) drop(handle Handle) (Object, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.lookup(handle)
	if e == nil {
		return Object{}, ErrInvalidHandle
	}
	if e.borrowCount > 0 {
		return Object{}, ErrOutstandingBorrow
	}

	obj := e.obj
	*e = entry{}
	b.freeList = append(b.freeList, handle)
	return obj, nil
}

func (b *backend) borrow(handle Handle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.lookup(handle)
	if e == nil {
		return false
	}
	e.borrowCount++
	return true
}

func (b *backend) returnBorrow(handle Handle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.lookup(handle)
	if e == nil || e.borrowCount == 0 {
		return false
	}
	e.borrowCount--
	return true
}

func (b *backend) len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, e := range b.entries {
		if e.valid {
			count++
		}
	}
	return count
}

func (b *backend) each(fn func(Handle, Object) bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i, e := range b.entries {
		if e.valid {
			if !fn(Handle(i+1), e.obj) {
				break
			}
		}
	}
}

// close marks the backend closed and hands back every live object.
func (b *backend) close() []Object {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	var live []Object
	for _, e := range b.entries {
		if e.valid {
			live = append(live, e.obj)
		}
	}
	b.entries = nil
	b.freeList = nil
	return live
}
