package stackproxy

import (
	"reflect"
	"sync"
)

const (
	poolMaxArgs  = 64
	poolInitArgs = 8
)

var argsPool = sync.Pool{
	New: func() any {
		buf := make([]reflect.Value, 0, poolInitArgs)
		return &buf
	},
}

func getArgs() *[]reflect.Value {
	return argsPool.Get().(*[]reflect.Value)
}

func putArgs(buf *[]reflect.Value) {
	if buf == nil || cap(*buf) > poolMaxArgs {
		return
	}
	clear(*buf)
	*buf = (*buf)[:0]
	argsPool.Put(buf)
}
