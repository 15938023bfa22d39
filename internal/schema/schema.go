// Package schema provides declarative runtime validation of response bodies.
//
// Every backend response is checked against a declared shape before it is
// decoded into a typed value. Validation is all-or-nothing: a payload that
// does not conform yields a SchemaError and no value, so callers never see a
// partially-typed response.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	terrors "tradegate/internal/errors"
)

type kind int

const (
	kindString kind = iota
	kindNumber
	kindBool
	kindEnum
	kindArray
	kindObject
	kindAny
)

// Type describes the expected shape of one JSON value.
type Type struct {
	kind     kind
	enum     []string
	elem     *Type
	fields   []Field
	nullable bool
}

// Field describes one property of an object shape.
type Field struct {
	name     string
	typ      *Type
	optional bool
}

// String matches a JSON string.
func String() *Type { return &Type{kind: kindString} }

// Number matches a JSON number.
func Number() *Type { return &Type{kind: kindNumber} }

// Bool matches a JSON boolean.
func Bool() *Type { return &Type{kind: kindBool} }

// Enum matches a JSON string restricted to the given values.
func Enum(values ...string) *Type { return &Type{kind: kindEnum, enum: values} }

// Array matches a JSON array whose elements all match elem.
func Array(elem *Type) *Type { return &Type{kind: kindArray, elem: elem} }

// Object matches a JSON object with the given fields. Unknown properties
// are tolerated; the backend may add fields without breaking old clients.
func Object(fields ...Field) *Type { return &Type{kind: kindObject, fields: fields} }

// Any matches any JSON value.
func Any() *Type { return &Type{kind: kindAny} }

// Nullable allows a JSON null in place of the value.
func Nullable(t *Type) *Type {
	c := *t
	c.nullable = true
	return &c
}

// F declares a required object field.
func F(name string, t *Type) Field { return Field{name: name, typ: t} }

// Opt declares an optional object field. When present it must still match.
func Opt(name string, t *Type) Field { return Field{name: name, typ: t, optional: true} }

// Schema is a named, declared response shape.
type Schema struct {
	name string
	root *Type
}

// New declares a named schema with the given root shape.
func New(name string, root *Type) *Schema {
	return &Schema{name: name, root: root}
}

// Name returns the declared schema name.
func (s *Schema) Name() string { return s.name }

// Validate checks raw against the declared shape. It returns nil when the
// payload conforms and a SchemaError describing the first mismatch otherwise.
func (s *Schema) Validate(raw []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return terrors.NewSchemaError(s.name, "valid JSON", fmt.Sprintf("unparseable body: %v", err))
	}
	return s.check(s.root, value, "$")
}

func (s *Schema) check(t *Type, value interface{}, path string) error {
	if value == nil {
		if t.nullable || t.kind == kindAny {
			return nil
		}
		return s.mismatch(t, "null", path)
	}

	switch t.kind {
	case kindAny:
		return nil
	case kindString:
		if _, ok := value.(string); !ok {
			return s.mismatch(t, describe(value), path)
		}
	case kindNumber:
		if _, ok := value.(json.Number); !ok {
			return s.mismatch(t, describe(value), path)
		}
	case kindBool:
		if _, ok := value.(bool); !ok {
			return s.mismatch(t, describe(value), path)
		}
	case kindEnum:
		str, ok := value.(string)
		if !ok {
			return s.mismatch(t, describe(value), path)
		}
		for _, v := range t.enum {
			if str == v {
				return nil
			}
		}
		return s.mismatch(t, fmt.Sprintf("%q", str), path)
	case kindArray:
		arr, ok := value.([]interface{})
		if !ok {
			return s.mismatch(t, describe(value), path)
		}
		for i, elem := range arr {
			if err := s.check(t.elem, elem, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case kindObject:
		obj, ok := value.(map[string]interface{})
		if !ok {
			return s.mismatch(t, describe(value), path)
		}
		for _, f := range t.fields {
			fv, present := obj[f.name]
			if !present {
				if f.optional {
					continue
				}
				return terrors.NewSchemaError(s.name, expected(f.typ), fmt.Sprintf("missing required field %s.%s", path, f.name))
			}
			if err := s.check(f.typ, fv, path+"."+f.name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Schema) mismatch(t *Type, received, path string) error {
	return terrors.NewSchemaError(s.name, fmt.Sprintf("%s at %s", expected(t), path), received)
}

func expected(t *Type) string {
	switch t.kind {
	case kindString:
		return "string"
	case kindNumber:
		return "number"
	case kindBool:
		return "boolean"
	case kindEnum:
		vals := append([]string(nil), t.enum...)
		sort.Strings(vals)
		return "one of [" + strings.Join(vals, " ") + "]"
	case kindArray:
		return "array of " + expected(t.elem)
	case kindObject:
		return "object"
	default:
		return "any"
	}
}

func describe(value interface{}) string {
	switch value.(type) {
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}
