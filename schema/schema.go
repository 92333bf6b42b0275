// Package schema provides composable shape predicates used to validate
// component payloads and system state at well-defined boundaries.
// A Checker never mutates its input and holds no state of its own.
package schema

import (
	"errors"
	"math"
	"reflect"

	"github.com/rotisserie/eris"
)

// ErrMismatch is returned by Check when a value does not satisfy a Checker.
var ErrMismatch = errors.New("value does not match schema")

// Checker reports whether a value has the expected shape.
type Checker func(value any) bool

// Shape maps field names to the checker each field must satisfy.
type Shape map[string]Checker

// missing is handed to field checkers by Object when the field is absent.
type missing struct{}

// Check validates value against c. A nil checker accepts everything.
func Check(c Checker, value any) error {
	if c == nil || c(value) {
		return nil
	}
	return eris.Wrapf(ErrMismatch, "unexpected value of type %T", value)
}

// Any accepts every value, including nil.
func Any() Checker {
	return func(any) bool { return true }
}

func String() Checker {
	return func(value any) bool {
		v := reflect.ValueOf(value)
		return v.IsValid() && v.Kind() == reflect.String
	}
}

// Number accepts any integer or floating point kind. NaN is rejected.
func Number() Checker {
	return func(value any) bool {
		v := reflect.ValueOf(value)
		if !v.IsValid() {
			return false
		}
		switch v.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return true
		case reflect.Float32, reflect.Float64:
			return !math.IsNaN(v.Float())
		}
		return false
	}
}

func Bool() Checker {
	return func(value any) bool {
		v := reflect.ValueOf(value)
		return v.IsValid() && v.Kind() == reflect.Bool
	}
}

// Null accepts nil and typed nil pointers, maps, slices, funcs and channels.
func Null() Checker {
	return func(value any) bool {
		if value == nil {
			return true
		}
		v := reflect.ValueOf(value)
		switch v.Kind() {
		case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
			return v.IsNil()
		}
		return false
	}
}

// Missing accepts only the marker Object passes for absent fields.
func Missing() Checker {
	return func(value any) bool {
		_, ok := value.(missing)
		return ok
	}
}

func Or(a, b Checker) Checker {
	return func(value any) bool {
		return a(value) || b(value)
	}
}

func Nullable(c Checker) Checker {
	return Or(Null(), c)
}

// Optional allows an Object field to be absent.
func Optional(c Checker) Checker {
	return Or(Missing(), c)
}

// ArrayOf accepts slices and arrays whose every element satisfies c.
func ArrayOf(c Checker) Checker {
	return func(value any) bool {
		v := reflect.ValueOf(value)
		if !v.IsValid() || (v.Kind() != reflect.Slice && v.Kind() != reflect.Array) {
			return false
		}
		for i := 0; i < v.Len(); i++ {
			if !c(v.Index(i).Interface()) {
				return false
			}
		}
		return true
	}
}

// Object accepts string-keyed maps and structs (or pointers to them) whose
// fields satisfy the shape. Struct fields are looked up by their `schema`
// tag first, then by name. Fields not named in the shape are ignored.
func Object(shape Shape) Checker {
	return func(value any) bool {
		v := reflect.ValueOf(value)
		for v.IsValid() && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return false
			}
			v = v.Elem()
		}
		if !v.IsValid() {
			return false
		}

		var lookup func(name string) any
		switch v.Kind() {
		case reflect.Map:
			if v.Type().Key().Kind() != reflect.String {
				return false
			}
			lookup = func(name string) any {
				field := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
				if !field.IsValid() {
					return missing{}
				}
				return field.Interface()
			}
		case reflect.Struct:
			fields := structFields(v.Type())
			lookup = func(name string) any {
				idx, ok := fields[name]
				if !ok {
					return missing{}
				}
				return v.Field(idx).Interface()
			}
		default:
			return false
		}

		for name, check := range shape {
			if !check(lookup(name)) {
				return false
			}
		}
		return true
	}
}

// InstanceOf accepts values whose dynamic type is (or implements) T.
func InstanceOf[T any]() Checker {
	return func(value any) bool {
		_, ok := value.(T)
		return ok
	}
}

func structFields(t reflect.Type) map[string]int {
	fields := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if _, ok := fields[field.Name]; !ok {
			fields[field.Name] = i
		}
		if tag := field.Tag.Get("schema"); tag != "" {
			fields[tag] = i
		}
	}
	return fields
}
