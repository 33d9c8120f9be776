package lang

import (
	"encoding"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the variant held by a [Value].
type Kind int

const (
	KindNull Kind = iota
	KindScalar
	KindList
	KindMap
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindObject:
		return "object"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Object is a host value that exposes named fields to templates.
type Object interface {
	Field(name string) (Value, bool)
}

// Value is the data model visible to templates. The zero Value is null.
// Values are immutable once constructed.
type Value struct {
	kind Kind
	text string
	list []Value
	dict map[string]Value
	obj  Object
}

// Null returns the null value.
func Null() Value { return Value{} }

// Scalar returns a value holding text.
func Scalar(text string) Value { return Value{kind: KindScalar, text: text} }

// List returns a value holding the given elements in order.
func List(items ...Value) Value {
	return Value{kind: KindList, list: items}
}

// Map returns a value holding a copy of entries.
func Map(entries map[string]Value) Value {
	return Value{kind: KindMap, dict: maps.Clone(entries)}
}

// FromObject returns a value wrapping a host object.
// A nil obj yields null.
func FromObject(obj Object) Value {
	if obj == nil {
		return Value{}
	}

	return Value{kind: KindObject, obj: obj}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Text returns the text of a scalar.
func (v Value) Text() (string, bool) {
	return v.text, v.kind == KindScalar
}

// Items returns the elements of a list. The result must not be modified.
func (v Value) Items() ([]Value, bool) {
	return v.list, v.kind == KindList
}

// Keys returns the sorted keys of a map.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}

	return slices.Sorted(maps.Keys(v.dict))
}

// Field returns the named entry of a map or field of an object.
func (v Value) Field(name string) (Value, bool) {
	switch v.kind {
	case KindMap:
		f, ok := v.dict[name]

		return f, ok

	case KindObject:
		return v.obj.Field(name)

	default:
		return Value{}, false
	}
}

// Lookup resolves a dotted path such as "user.address.city" against v.
// An empty path yields v itself.
func (v Value) Lookup(path string) (Value, bool) {
	if path == "" {
		return v, true
	}

	for name := range strings.SplitSeq(path, ".") {
		var ok bool
		if v, ok = v.Field(name); !ok {
			return Value{}, false
		}
	}

	return v, true
}

// String returns a debugging representation of v.
func (v Value) String() string {
	switch v.kind {
	case KindScalar:
		return strconv.Quote(v.text)

	case KindList:
		s := make([]string, len(v.list))
		for i, e := range v.list {
			s[i] = e.String()
		}

		return "[" + strings.Join(s, ", ") + "]"

	case KindMap:
		s := make([]string, 0, len(v.dict))
		for _, k := range v.Keys() {
			s = append(s, k+": "+v.dict[k].String())
		}

		return "{" + strings.Join(s, ", ") + "}"

	case KindObject:
		return fmt.Sprintf("<%T>", v.obj)

	default:
		return "null"
	}
}

// Native converts v into plain Go values: nil, string, []any, or
// map[string]any. Objects without a native form convert to their
// debugging representation.
func (v Value) Native() any {
	switch v.kind {
	case KindScalar:
		return v.text

	case KindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.Native()
		}

		return out

	case KindMap:
		out := make(map[string]any, len(v.dict))
		for k, e := range v.dict {
			out[k] = e.Native()
		}

		return out

	case KindObject:
		if s, ok := v.obj.(*structObject); ok {
			return s.rv.Interface()
		}

		return v.String()

	default:
		return nil
	}
}

// ValueOf converts a native Go value into a [Value].
//
//   - nil and nil pointers become null
//   - strings, booleans, numbers, [time.Time], [fmt.Stringer], and
//     [encoding.TextMarshaler] become scalars
//   - slices and arrays become lists
//   - maps become maps, with keys formatted by [fmt.Sprint]
//   - structs become objects whose fields are matched by Go name,
//     `json`/`yaml` tag name, or case-insensitively
//
// A [Value] or [Object] argument is returned as is.
func ValueOf(x any) Value {
	switch t := x.(type) {
	case nil:
		return Value{}
	case Value:
		return t
	case *Value:
		if t == nil {
			return Value{}
		}

		return *t
	case Object:
		return FromObject(t)
	case string:
		return Scalar(t)
	case []byte:
		return Scalar(string(t))
	case bool:
		return Scalar(strconv.FormatBool(t))
	case time.Time:
		return Scalar(t.Format(time.RFC3339))
	case fmt.Stringer:
		if rv := reflect.ValueOf(t); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return Value{}
		}

		return Scalar(t.String())
	case encoding.TextMarshaler:
		if rv := reflect.ValueOf(t); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return Value{}
		}

		b, err := t.MarshalText()
		if err != nil {
			return Value{}
		}

		return Scalar(string(b))
	}

	return valueOfReflect(reflect.ValueOf(x))
}

func valueOfReflect(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Value{}
		}

		return ValueOf(rv.Elem().Interface())

	case reflect.String:
		return Scalar(rv.String())

	case reflect.Bool:
		return Scalar(strconv.FormatBool(rv.Bool()))

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Scalar(strconv.FormatInt(rv.Int(), 10))

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return Scalar(strconv.FormatUint(rv.Uint(), 10))

	case reflect.Float32:
		return Scalar(strconv.FormatFloat(rv.Float(), 'g', -1, 32))

	case reflect.Float64:
		return Scalar(strconv.FormatFloat(rv.Float(), 'g', -1, 64))

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return List()
		}

		items := make([]Value, rv.Len())
		for i := range items {
			items[i] = ValueOf(rv.Index(i).Interface())
		}

		return List(items...)

	case reflect.Map:
		dict := make(map[string]Value, rv.Len())
		for it := rv.MapRange(); it.Next(); {
			dict[fmt.Sprint(it.Key().Interface())] = ValueOf(it.Value().Interface())
		}

		return Value{kind: KindMap, dict: dict}

	case reflect.Struct:
		return FromObject(&structObject{rv: rv})

	default:
		return Value{}
	}
}

// structObject exposes the exported fields of a struct.
type structObject struct {
	rv reflect.Value
}

func (s *structObject) Field(name string) (Value, bool) {
	if name == "" {
		return Value{}, false
	}

	fields := reflect.VisibleFields(s.rv.Type())

	match := func(pred func(reflect.StructField) bool) (Value, bool) {
		for _, f := range fields {
			if !f.IsExported() || f.Anonymous || !pred(f) {
				continue
			}

			fv, err := s.rv.FieldByIndexErr(f.Index)
			if err != nil {
				return Value{}, false
			}

			return ValueOf(fv.Interface()), true
		}

		return Value{}, false
	}

	if v, ok := match(func(f reflect.StructField) bool { return f.Name == name }); ok {
		return v, true
	}

	if v, ok := match(func(f reflect.StructField) bool {
		return tagName(f, "json") == name || tagName(f, "yaml") == name
	}); ok {
		return v, true
	}

	return match(func(f reflect.StructField) bool {
		return strings.EqualFold(f.Name, name)
	})
}

func tagName(f reflect.StructField, key string) string {
	name, _, _ := strings.Cut(f.Tag.Get(key), ",")
	if name == "-" {
		return ""
	}

	return name
}
