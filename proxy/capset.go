package proxy

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/hatchify/errors"

	ristretto "github.com/dgraph-io/ristretto/v2"
)

const (
	// ErrNilValue is returned when capabilities of a nil value are inspected
	ErrNilValue = errors.Error("cannot inspect capabilities of a nil value")
	// ErrNotStructured is returned when the value is a primitive rather than a structured object
	ErrNotStructured = errors.Error("value is not a structured object")
	// ErrNoSuchOperation is returned when an operation name does not resolve on the value
	ErrNoSuchOperation = errors.Error("no such operation")
	// ErrBadArity is returned when an operation is invoked with the wrong number of arguments
	ErrBadArity = errors.Error("operation arity mismatch")
	// ErrBadArgument is returned when an argument is not assignable to the operation's parameter
	ErrBadArgument = errors.Error("argument type mismatch")
)

// CapabilitySet is the reflected operation table of one value: every
// exported method reachable on the value, keyed by operation name.
// Invocations made through it run directly on the bound value, so panics
// and diagnostics raised inside an operation name the value's own type.
type CapabilitySet struct {
	self  reflect.Value
	typ   reflect.Type
	table *opTable
}

// CapabilitiesOf reflects the capability set of v. v must be a structured
// object: a struct, or a pointer to one. Primitives and nils are rejected,
// since they carry no operations to resolve against.
func CapabilitiesOf(v any) (*CapabilitySet, error) {
	if isNilValue(v) {
		return nil, fmt.Errorf("%w: %T", ErrNilValue, v)
	}
	rv := reflect.ValueOf(v)
	t := rv.Type()
	base := t
	if base.Kind() == reflect.Ptr {
		base = base.Elem()
	}
	if base.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: kind %s", ErrNotStructured, base.Kind())
	}
	return &CapabilitySet{
		self:  rv,
		typ:   t,
		table: tableOf(t),
	}, nil
}

// TypeName reports the runtime type of the underlying value.
func (cs *CapabilitySet) TypeName() string {
	return cs.typ.String()
}

// CanDo reports whether the value supports the named operation.
func (cs *CapabilitySet) CanDo(op string) bool {
	_, ok := cs.table.index[op]
	return ok
}

// IsA reports whether the value satisfies the target type: implements it
// when target is an interface, is assignable to it otherwise.
func (cs *CapabilitySet) IsA(target reflect.Type) bool {
	if target == nil {
		return false
	}
	if target.Kind() == reflect.Interface {
		return cs.typ.Implements(target)
	}
	return cs.typ.AssignableTo(target)
}

// Ops returns the sorted operation names of the set.
func (cs *CapabilitySet) Ops() []string {
	names := make([]string, len(cs.table.names))
	copy(names, cs.table.names)
	return names
}

// Fingerprint is a stable 64-bit digest over the value's type name and its
// sorted operation names. Two values of the same type always share one.
func (cs *CapabilitySet) Fingerprint() uint64 {
	return cs.table.fingerprint
}

// Invoke resolves op against the operation table and calls it directly on
// the bound value with the given arguments.
//
// This is the single formatting site for missing-operation failures, so the
// diagnostic is identical whether the lookup happens through a Proxy or
// against the value directly.
func (cs *CapabilitySet) Invoke(op string, args ...any) ([]any, error) {
	m, ok := cs.table.index[op]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no operation %q", ErrNoSuchOperation, cs.typ, op)
	}
	fn := cs.self.Method(m.Index)
	ft := fn.Type()

	if ft.IsVariadic() {
		if len(args) < ft.NumIn()-1 {
			return nil, fmt.Errorf("%w: operation %q of %s takes at least %d arguments, got %d",
				ErrBadArity, op, cs.typ, ft.NumIn()-1, len(args))
		}
	} else if len(args) != ft.NumIn() {
		return nil, fmt.Errorf("%w: operation %q of %s takes %d arguments, got %d",
			ErrBadArity, op, cs.typ, ft.NumIn(), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		want := argType(ft, i)
		if arg == nil {
			in[i] = reflect.Zero(want)
			continue
		}
		av := reflect.ValueOf(arg)
		if !av.Type().AssignableTo(want) {
			return nil, fmt.Errorf("%w: operation %q of %s wants %s at position %d, got %T",
				ErrBadArgument, op, cs.typ, want, i, arg)
		}
		in[i] = av
	}

	out := fn.Call(in)
	res := make([]any, len(out))
	for i, o := range out {
		res[i] = o.Interface()
	}
	return res, nil
}

// arity reports the number of arguments op requires, or -1 when op does not
// resolve.
func (cs *CapabilitySet) arity(op string) int {
	m, ok := cs.table.index[op]
	if !ok {
		return -1
	}
	return cs.self.Method(m.Index).Type().NumIn()
}

// argType resolves the parameter type for position i, unwrapping the slice
// element type for variadic tails.
func argType(ft reflect.Type, i int) reflect.Type {
	if ft.IsVariadic() && i >= ft.NumIn()-1 {
		return ft.In(ft.NumIn() - 1).Elem()
	}
	return ft.In(i)
}

// opTable is the per-type half of a capability set: the method index, the
// sorted names, and their fingerprint. It carries no value binding, so one
// table serves every value of its type.
type opTable struct {
	index       map[string]reflect.Method
	names       []string
	fingerprint uint64
}

// opTables memoizes reflected operation tables per type, so repeated wraps
// of the same inner type do not re-walk its method set. Read-through:
// a miss (including ristretto's buffered-write window) rebuilds the table.
var opTables *ristretto.Cache[string, *opTable]

func init() {
	var err error
	opTables, err = ristretto.NewCache(&ristretto.Config[string, *opTable]{
		NumCounters: 1 << 12,
		MaxCost:     1 << 10,
		BufferItems: 64,
	})
	if err != nil {
		panic(err)
	}
}

func tableOf(t reflect.Type) *opTable {
	key := typeKey(t)
	if key != "" {
		if tbl, ok := opTables.Get(key); ok {
			return tbl
		}
	}

	tbl := buildTable(t)
	if key != "" {
		opTables.Set(key, tbl, 1)
	}
	return tbl
}

func buildTable(t reflect.Type) *opTable {
	numOps := t.NumMethod()
	index := make(map[string]reflect.Method, numOps)
	names := make([]string, 0, numOps)
	for i := 0; i < numOps; i++ {
		m := t.Method(i)
		if !m.IsExported() {
			continue
		}
		index[m.Name] = m
		names = append(names, m.Name)
	}
	sort.Strings(names)

	digest := xxhash.New()
	digest.WriteString(t.String())
	for _, name := range names {
		digest.WriteString("/")
		digest.WriteString(name)
	}

	return &opTable{
		index:       index,
		names:       names,
		fingerprint: digest.Sum64(),
	}
}

// typeKey returns a package-qualified cache key, or "" for unnamed types,
// which are built fresh every time rather than risking a key collision.
func typeKey(t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		elem := t.Elem()
		if elem.PkgPath() == "" {
			return ""
		}
		return "*" + elem.PkgPath() + "." + elem.Name()
	}
	if t.PkgPath() == "" {
		return ""
	}
	return t.PkgPath() + "." + t.Name()
}

func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
