package stackproxy

import (
	"fmt"
	"reflect"
	"strconv"
	"unsafe"

	"github.com/wippyai/rttr/errors"
	"github.com/wippyai/rttr/signature"
)

type callable struct {
	fn    reflect.Value
	shape signature.Shape
	path  []string
}

func newCallable(fn any, skip int, path []string) (*callable, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return nil, errors.InvalidInput(errors.PhaseRegister, fmt.Sprintf("%T is not a func", fn))
	}
	shape, err := signature.ShapeOf(v.Type(), skip)
	if err != nil {
		return nil, err
	}
	return &callable{fn: v, shape: shape, path: path}, nil
}

func (c *callable) paramPath(i int) []string {
	return append(append([]string(nil), c.path...), "param["+strconv.Itoa(i)+"]")
}

// call stages the parameters, runs fn with recv prepended and returns its
// value result (invalid for void).
func (c *callable) call(recv []reflect.Value, proxy StackProxy) (ret reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			ret, err = reflect.Value{}, errors.Panicked(c.path, r)
		}
	}()

	if len(proxy.Params) != len(c.shape.Params) {
		return reflect.Value{}, errors.New(errors.PhaseInvoke, errors.KindInvalidInput).
			Path(c.path...).
			Detail("parameter count mismatch: expected %d, got %d", len(c.shape.Params), len(proxy.Params)).
			Build()
	}

	args := getArgs()
	defer putArgs(args)
	*args = append(*args, recv...)

	holders := make([]holder, len(c.shape.Params))
	for i, pt := range c.shape.Params {
		pb := proxy.Params[i]
		if pb.Write == nil {
			return reflect.Value{}, errors.New(errors.PhaseInvoke, errors.KindInvalidInput).
				Path(c.paramPath(i)...).
				Detail("no writer").
				Build()
		}
		h := newHolder(pt)
		if err := h.write(pb.Write, c.paramPath(i)); err != nil {
			return reflect.Value{}, err
		}
		holders[i] = h
		*args = append(*args, h.arg())
	}

	var out []reflect.Value
	if c.shape.Variadic {
		out = c.fn.CallSlice(*args)
	} else {
		out = c.fn.Call(*args)
	}

	for i, h := range holders {
		if r := proxy.Params[i].Read; r != nil {
			h.read(r)
		}
	}

	if c.shape.ReturnsError {
		if e := out[len(out)-1]; !e.IsNil() {
			return reflect.Value{}, e.Interface().(error)
		}
	}
	if c.shape.Ret != nil {
		ret = out[0]
	}
	return ret, nil
}

func (c *callable) readRet(ret reflect.Value, r RetReader) {
	if r == nil || !ret.IsValid() {
		return
	}
	tmp := reflect.New(ret.Type())
	tmp.Elem().Set(ret)
	r(newSlot(bare(ret.Type()), tmp.UnsafePointer(), HolderValue))
}

// NewFunc builds an invoker for a plain func. obj is ignored.
func NewFunc(fn any, path ...string) (Invoker, signature.Shape, error) {
	c, err := newCallable(fn, 0, path)
	if err != nil {
		return nil, signature.Shape{}, err
	}
	return func(_ unsafe.Pointer, proxy StackProxy) error {
		ret, err := c.call(nil, proxy)
		if err != nil {
			return err
		}
		return c.guard(func() { c.readRet(ret, proxy.Ret) })
	}, c.shape, nil
}

// NewMethod builds an invoker for a method expression such as (*Vec2).Add or
// Vec2.Len. obj must point to the receiver's base type. The returned shape
// excludes the receiver; valueRecv reports a value receiver.
func NewMethod(method any, path ...string) (inv Invoker, shape signature.Shape, valueRecv bool, err error) {
	c, err := newCallable(method, 1, path)
	if err != nil {
		return nil, signature.Shape{}, false, err
	}
	recv := c.fn.Type().In(0)
	base := recv
	if recv.Kind() == reflect.Pointer {
		base = recv.Elem()
	}
	valueRecv = base == recv

	inv = func(obj unsafe.Pointer, proxy StackProxy) error {
		if obj == nil {
			return errors.NilPointer(errors.PhaseInvoke, c.path, base.String())
		}
		r := reflect.NewAt(base, obj)
		if valueRecv {
			r = r.Elem()
		}
		ret, err := c.call([]reflect.Value{r}, proxy)
		if err != nil {
			return err
		}
		return c.guard(func() { c.readRet(ret, proxy.Ret) })
	}
	return inv, c.shape, valueRecv, nil
}

// NewCtor builds an invoker that constructs a t into obj. fn returns t or *t;
// a nil fn constructs the zero value and takes no parameters.
func NewCtor(t reflect.Type, fn any, path ...string) (Invoker, signature.Shape, error) {
	if fn == nil {
		return func(obj unsafe.Pointer, proxy StackProxy) error {
			if obj == nil {
				return errors.NilPointer(errors.PhaseInvoke, path, t.String())
			}
			if len(proxy.Params) != 0 {
				return errors.New(errors.PhaseInvoke, errors.KindInvalidInput).
					Path(path...).
					Detail("default constructor takes no parameters, got %d", len(proxy.Params)).
					Build()
			}
			reflect.NewAt(t, obj).Elem().SetZero()
			return nil
		}, signature.Shape{}, nil
	}

	c, err := newCallable(fn, 0, path)
	if err != nil {
		return nil, signature.Shape{}, err
	}
	byPtr := c.shape.Ret == reflect.PointerTo(t)
	if c.shape.Ret != t && !byPtr {
		return nil, signature.Shape{}, errors.New(errors.PhaseRegister, errors.KindTypeMismatch).
			Path(path...).
			GoType(c.fn.Type().String()).
			Detail("constructor must return %s or *%s", t, t).
			Build()
	}
	shape := c.shape
	shape.Ret = nil

	return func(obj unsafe.Pointer, proxy StackProxy) error {
		if obj == nil {
			return errors.NilPointer(errors.PhaseInvoke, c.path, t.String())
		}
		ret, err := c.call(nil, proxy)
		if err != nil {
			return err
		}
		if byPtr {
			if ret.IsNil() {
				return errors.NilPointer(errors.PhaseInvoke, c.path, "*"+t.String())
			}
			ret = ret.Elem()
		}
		reflect.NewAt(t, obj).Elem().Set(ret)
		return nil
	}, shape, nil
}

func (c *callable) guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Panicked(c.path, r)
		}
	}()
	fn()
	return nil
}
