package builder

import (
	"io"
	"reflect"
	"sync"
	"unsafe"

	"github.com/wippyai/rttr"
	"github.com/wippyai/rttr/export"
)

var (
	lockerType = reflect.TypeFor[sync.Locker]()
	closerType = reflect.TypeFor[io.Closer]()
)

// Copyable reports whether values of t may be copied: t holds no lock by
// value, following the rule go vet's copylocks check applies.
func Copyable(t reflect.Type) bool {
	return !containsLock(t)
}

func containsLock(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Struct:
		if reflect.PointerTo(t).Implements(lockerType) {
			return true
		}
		for i := range t.NumField() {
			if containsLock(t.Field(i).Type) {
				return true
			}
		}
	case reflect.Array:
		return t.Len() > 0 && containsLock(t.Elem())
	}
	return false
}

// BasicInfo exports what every T supports: the zero-value constructor and
// the destructor always; copy and move constructors and the "=" operators
// when T is Copyable; "==" when T is comparable.
func (b *RecordBuilder[T]) BasicInfo() *RecordBuilder[T] {
	if !b.st.ok() {
		return b
	}
	t := b.rec.GoType

	b.Ctor(nil)

	if Copyable(t) {
		b.Ctor(func(src rttr.Ref[rttr.Const[T]]) T { return src.Get().Get() })
		b.Ctor(func(src rttr.RValueRef[T]) T { return src.Take() })
		b.ExternMethod("=", func(dst rttr.Ref[T], src rttr.Ref[rttr.Const[T]]) {
			*dst.Get() = src.Get().Get()
		}).Flag(export.MethodFlagOperator)
		b.ExternMethod("=", func(dst rttr.Ref[T], src rttr.RValueRef[T]) {
			*dst.Get() = src.Take()
		}).Flag(export.MethodFlagOperator)
	}

	if t.Comparable() {
		b.ExternMethod("==", func(a, c rttr.Ref[rttr.Const[T]]) bool {
			return any(a.Get().Get()) == any(c.Get().Get())
		}).Flag(export.MethodFlagOperator)
	}

	closes := reflect.PointerTo(t).Implements(closerType)
	b.rec.Dtor = &export.DtorData{
		Invoke: func(obj unsafe.Pointer) error {
			p := (*T)(obj)
			var err error
			if closes {
				err = any(p).(io.Closer).Close()
			}
			var zero T
			*p = zero
			return err
		},
		Attrs: export.Attributes{},
	}
	return b
}
