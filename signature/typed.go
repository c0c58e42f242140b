package signature

import (
	"reflect"
	"sync"
)

var typedCache sync.Map // reflect.Type -> TypeSignature

// Typed is the compile-time handle for T's signature. The encoding is computed
// once per type and shared.
type Typed[T any] struct{}

func (Typed[T]) Signature() TypeSignature {
	t := reflect.TypeFor[T]()
	if sig, ok := typedCache.Load(t); ok {
		return sig.(TypeSignature)
	}
	sig, _ := typedCache.LoadOrStore(t, Of(t))
	return sig.(TypeSignature)
}

func (t Typed[T]) View() View { return t.Signature().View() }

// BufferSize is the exact encoded size of T's signature.
func (Typed[T]) BufferSize() int { return SizeOf(reflect.TypeFor[T]()) }
