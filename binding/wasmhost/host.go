package wasmhost

import (
	"context"
	"reflect"
	"strconv"
	"unsafe"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/rttr/binding/wasmhost/internal/reexport"
	"github.com/wippyai/rttr/errors"
	"github.com/wippyai/rttr/export"
	"github.com/wippyai/rttr/registry"
	"github.com/wippyai/rttr/resource"
	"github.com/wippyai/rttr/stackproxy"
)

// Export is one host function.
type Export struct {
	Name       string
	Record     *export.RecordData
	Member     string
	Params     []api.ValueType
	ParamNames []string
	Results    []api.ValueType
	Fn         api.GoModuleFunc
}

// Skipped records a member that has no core value mapping.
type Skipped struct {
	Record *export.RecordData
	Member string
	Err    error
}

// Host builds and serves the host functions for one registry.
type Host struct {
	reg     *registry.Registry
	opts    Options
	table   *resource.Table
	metrics *metrics
	exports []Export
	skipped []Skipped
}

// New derives the host functions for every record in reg.
func New(reg *registry.Registry, opts Options) (*Host, error) {
	if reg == nil {
		return nil, errors.InvalidInput(errors.PhaseBind, "nil registry")
	}
	if opts.ModuleName == "" {
		opts.ModuleName = DefaultModuleName
	}
	m, err := newMetrics(opts.Registerer)
	if err != nil {
		return nil, err
	}
	table := opts.Table
	if table == nil {
		table = resource.NewTable()
	}

	h := &Host{reg: reg, opts: opts, table: table, metrics: m}
	for _, rec := range reg.Records() {
		h.addRecord(rec)
	}

	Logger().Debug("host functions derived",
		zap.String("module", opts.ModuleName),
		zap.Int("exports", len(h.exports)),
		zap.Int("skipped", len(h.skipped)))
	return h, nil
}

// Exports returns the derived host functions in registration order.
func (h *Host) Exports() []Export { return h.exports }

// Skipped returns the members left out.
func (h *Host) Skipped() []Skipped { return h.skipped }

// Table returns the object table backing the handles.
func (h *Host) Table() *resource.Table { return h.table }

// ModuleName returns the host module name.
func (h *Host) ModuleName() string { return h.opts.ModuleName }

// Instantiate registers the host module in rt, for guests to import, and
// returns a companion module that re-exports every host function under the
// same name. Go callers use the companion's ExportedFunction, which wazero
// does not offer on host modules.
func (h *Host) Instantiate(ctx context.Context, rt wazero.Runtime) (api.Module, error) {
	builder := rt.NewHostModuleBuilder(h.opts.ModuleName)
	forward := reexport.New(h.opts.ModuleName)
	for _, e := range h.exports {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(e.Fn, e.Params, e.Results).
			WithParameterNames(e.ParamNames...).
			Export(e.Name)
		forward.AddFunc(e.Name, e.Params, e.Results)
	}
	if _, err := builder.Instantiate(ctx); err != nil {
		return nil, errors.Wrap(errors.PhaseBind, errors.KindRegistration, err, "instantiate "+h.opts.ModuleName)
	}

	name := h.ExportsModuleName()
	mod, err := rt.InstantiateWithConfig(ctx, forward.Build(), wazero.NewModuleConfig().WithName(name))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseBind, errors.KindRegistration, err, "instantiate "+name)
	}
	Logger().Debug("host module instantiated",
		zap.String("module", h.opts.ModuleName),
		zap.String("exports", name),
		zap.Int("functions", forward.Len()))
	return mod, nil
}

// ExportsModuleName is the name of the module Instantiate returns.
func (h *Host) ExportsModuleName() string { return h.opts.ModuleName + ExportsSuffix }

// Close destroys every object still in the table.
func (h *Host) Close() error {
	return h.table.Close()
}

type callKind uint8

const (
	callFunc callKind = iota
	callMethod
	callCtor
)

type binding struct {
	kind   callKind
	rec    *export.RecordData
	fn     *export.FunctionData
	params []value
	ret    *value
}

// overloads numbers same-named members: the first keeps the bare name, the
// rest get "#i" in declaration order.
type overloads map[string]int

func (o overloads) name(prefix, member string) string {
	i := o[member]
	o[member] = i + 1
	if i == 0 {
		return prefix + "." + member
	}
	return prefix + "." + member + "#" + strconv.Itoa(i)
}

func (h *Host) visible(access export.Access, flags export.Flag) bool {
	if access != export.AccessPublic {
		return false
	}
	return h.opts.IncludeHidden || !flags.Has(export.FlagHidden)
}

func (h *Host) addRecord(rec *export.RecordData) {
	prefix := rec.DisplayName()
	names := overloads{}

	for _, c := range rec.Ctors {
		h.addCallable(rec, names.name(prefix, "new"), "new", callCtor, &c.FunctionData)
	}
	h.add(Export{
		Name:       prefix + ".drop",
		Record:     rec,
		Member:     "drop",
		Params:     []api.ValueType{api.ValueTypeI32},
		ParamNames: []string{"self"},
		Fn:         h.handler(prefix+".drop", h.drop(rec)),
	})
	for _, m := range rec.Methods {
		h.addCallable(rec, names.name(prefix, m.Name), m.Name, callMethod, &m.FunctionData)
	}
	for _, m := range rec.StaticMethods {
		h.addCallable(rec, names.name(prefix, m.Name), m.Name, callFunc, &m.FunctionData)
	}
	for _, m := range rec.ExternMethods {
		h.addCallable(rec, names.name(prefix, m.Name), m.Name, callFunc, &m.FunctionData)
	}
	for _, f := range rec.Fields {
		h.addField(rec, prefix, f)
	}
	for _, f := range rec.StaticFields {
		h.addStaticField(rec, prefix, f)
	}
}

func (h *Host) add(e Export) {
	h.exports = append(h.exports, e)
}

func (h *Host) skip(rec *export.RecordData, member string, err error) {
	h.skipped = append(h.skipped, Skipped{Record: rec, Member: member, Err: err})
	Logger().Debug("member skipped",
		zap.String("record", rec.DisplayName()),
		zap.String("member", member),
		zap.Error(err))
}

func (h *Host) addCallable(rec *export.RecordData, name, member string, kind callKind, fd *export.FunctionData) {
	if !h.visible(fd.Access, fd.Flags) {
		return
	}
	b := &binding{kind: kind, rec: rec, fn: fd, params: make([]value, len(fd.Params))}
	var params []api.ValueType
	var names []string
	if kind == callMethod {
		params = append(params, api.ValueTypeI32)
		names = append(names, "self")
	}
	for i, p := range fd.Params {
		v, err := classify(h.reg, p.GoType)
		if err != nil {
			h.skip(rec, name, err)
			return
		}
		b.params[i] = v
		params = append(params, v.valueType())
		names = append(names, paramName(p, i))
	}

	var results []api.ValueType
	switch kind {
	case callCtor:
		results = []api.ValueType{api.ValueTypeI32}
	default:
		ret, err := classifyResult(h.reg, fd.RetGoType)
		if err != nil {
			h.skip(rec, name, err)
			return
		}
		b.ret = ret
		if ret != nil {
			results = []api.ValueType{ret.valueType()}
		}
	}

	h.add(Export{
		Name:       name,
		Record:     rec,
		Member:     member,
		Params:     params,
		ParamNames: names,
		Results:    results,
		Fn:         h.handler(name, func(stack []uint64) error { return h.invoke(b, stack) }),
	})
}

func paramName(p *export.ParamData, i int) string {
	if p.Name != "" {
		return p.Name
	}
	return "p" + strconv.Itoa(i)
}

func (h *Host) scalarField(rec *export.RecordData, name string, t reflect.Type, access export.Access, flags export.Flag) *scalar {
	if !h.visible(access, flags) {
		return nil
	}
	v, err := classify(h.reg, t)
	if err == nil && v.kind != valueScalar {
		err = unsupported(t)
	}
	if err != nil {
		h.skip(rec, name, err)
		return nil
	}
	return v.scalar
}

func (h *Host) addField(rec *export.RecordData, prefix string, f *export.FieldData) {
	get := prefix + ".get_" + f.Name
	s := h.scalarField(rec, get, f.GoType, f.Access, f.Flags)
	if s == nil {
		return
	}
	h.add(Export{
		Name:       get,
		Record:     rec,
		Member:     f.Name,
		Params:     []api.ValueType{api.ValueTypeI32},
		ParamNames: []string{"self"},
		Results:    []api.ValueType{s.vt},
		Fn: h.handler(get, func(stack []uint64) error {
			return h.withObject(rec, stack[0], func(p unsafe.Pointer) {
				stack[0] = s.store(f.Value(p))
			})
		}),
	})
	if f.Flags.Has(export.FieldFlagReadOnly) {
		return
	}
	set := prefix + ".set_" + f.Name
	h.add(Export{
		Name:       set,
		Record:     rec,
		Member:     f.Name,
		Params:     []api.ValueType{api.ValueTypeI32, s.vt},
		ParamNames: []string{"self", "value"},
		Fn: h.handler(set, func(stack []uint64) error {
			raw := stack[1]
			return h.withObject(rec, stack[0], func(p unsafe.Pointer) {
				s.load(f.Value(p), raw)
			})
		}),
	})
}

func (h *Host) addStaticField(rec *export.RecordData, prefix string, f *export.StaticFieldData) {
	get := prefix + ".get_" + f.Name
	s := h.scalarField(rec, get, f.GoType, f.Access, f.Flags)
	if s == nil {
		return
	}
	h.add(Export{
		Name:    get,
		Record:  rec,
		Member:  f.Name,
		Results: []api.ValueType{s.vt},
		Fn: h.handler(get, func(stack []uint64) error {
			stack[0] = s.store(f.Value())
			return nil
		}),
	})
	if f.Flags.Has(export.FieldFlagReadOnly) {
		return
	}
	set := prefix + ".set_" + f.Name
	h.add(Export{
		Name:       set,
		Record:     rec,
		Member:     f.Name,
		Params:     []api.ValueType{s.vt},
		ParamNames: []string{"value"},
		Fn: h.handler(set, func(stack []uint64) error {
			s.load(f.Value(), stack[0])
			return nil
		}),
	})
}

// handler counts the call and traps on error. wazero reports a panicking
// host function to the caller as the call's error.
func (h *Host) handler(name string, call func(stack []uint64) error) api.GoModuleFunc {
	return func(_ context.Context, _ api.Module, stack []uint64) {
		h.metrics.calls.WithLabelValues(name).Inc()
		if err := call(stack); err != nil {
			h.metrics.errors.WithLabelValues(name).Inc()
			Logger().Debug("host call failed", zap.String("export", name), zap.Error(err))
			panic(err)
		}
	}
}

func (h *Host) invoke(b *binding, stack []uint64) error {
	var pins pinSet
	defer h.release(&pins)

	var obj unsafe.Pointer
	args := stack
	if b.kind == callMethod {
		p, err := h.pin(handleOf(stack[0]), b.rec, &pins)
		if err != nil {
			return err
		}
		obj = p
		args = stack[1:]
	}

	params := make([]stackproxy.ParamBuilder, len(b.params))
	for i, v := range b.params {
		w, err := h.writer(v, args[i], &pins)
		if err != nil {
			return err
		}
		params[i] = stackproxy.ParamBuilder{Write: w}
	}
	proxy := stackproxy.StackProxy{Params: params}
	var out uint64
	if b.ret != nil {
		ret := *b.ret
		proxy.Ret = func(src stackproxy.Slot) { out = h.result(ret, src) }
	}

	if b.kind == callCtor {
		obj = b.rec.Alloc()
	}
	if err := b.fn.Invoke(obj, proxy); err != nil {
		return err
	}

	switch {
	case b.kind == callCtor:
		handle := h.table.Insert(resource.Object{Type: b.rec, Ptr: obj, Owned: true})
		if handle == 0 {
			return errors.NotInitialized(errors.PhaseBind, "resource table")
		}
		stack[0] = api.EncodeU32(uint32(handle))
	case b.ret != nil:
		stack[0] = out
	}
	return nil
}

func (h *Host) drop(rec *export.RecordData) func(stack []uint64) error {
	return func(stack []uint64) error {
		handle := handleOf(stack[0])
		obj, ok := h.table.Get(handle)
		if !ok || obj.Type == nil {
			return errors.NotFound(errors.PhaseBind, "handle", strconv.FormatUint(uint64(handle), 10))
		}
		if !obj.Type.IsA(rec.ID, h.reg) {
			return errors.TypeMismatch(errors.PhaseBind, nil, obj.Type.DisplayName(), rec.DisplayName())
		}
		_, err := h.table.Remove(handle)
		return err
	}
}

func (h *Host) withObject(rec *export.RecordData, raw uint64, fn func(unsafe.Pointer)) error {
	var pins pinSet
	defer h.release(&pins)
	p, err := h.pin(handleOf(raw), rec, &pins)
	if err != nil {
		return err
	}
	fn(p)
	return nil
}

// pinSet collects the handles borrowed for one call.
type pinSet struct {
	handles []resource.Handle
}

// pin borrows handle for the duration of a call and returns the storage of
// want inside it.
func (h *Host) pin(handle resource.Handle, want *export.RecordData, pins *pinSet) (unsafe.Pointer, error) {
	if !h.table.Borrow(handle) {
		return nil, errors.NotFound(errors.PhaseBind, "handle", strconv.FormatUint(uint64(handle), 10))
	}
	obj, ok := h.table.Get(handle)
	if ok && obj.Type != nil {
		if p, ok := obj.Type.UpcastTo(obj.Ptr, want.ID, h.reg); ok && p != nil {
			pins.handles = append(pins.handles, handle)
			return p, nil
		}
	}
	h.table.ReturnBorrow(handle)
	got := "<nil>"
	if obj.Type != nil {
		got = obj.Type.DisplayName()
	}
	return nil, errors.TypeMismatch(errors.PhaseBind, nil, got, want.DisplayName())
}

func (h *Host) release(pins *pinSet) {
	for _, handle := range pins.handles {
		h.table.ReturnBorrow(handle)
	}
}
