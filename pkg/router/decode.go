package router

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Decode populates a struct from bound parameters. The target must be a
// pointer to a struct whose fields carry `param` tags. Missing parameters
// leave their field untouched.
//
//	var p struct {
//		ID   int      `param:"id"`
//		Slug []string `param:"slug"`
//	}
//	err := m.Params.Decode(&p)
func (p Params) Decode(target any) error {
	return decode(target, func(name string) (Value, bool) {
		v, ok := p[name]
		return v, ok
	})
}

// DecodeParams is Decode for endpoint parameters, where catch-alls are
// bound as the remaining path joined by "/".
func DecodeParams(params map[string]string, target any) error {
	return decode(target, func(name string) (Value, bool) {
		s, ok := params[name]
		return Value{Scalar: s}, ok
	})
}

func decode(target any, lookup func(string) (Value, bool)) error {
	if target == nil {
		return nil
	}

	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr {
		return fmt.Errorf("target must be a pointer, got %s", v.Kind())
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("target must be a pointer to struct, got pointer to %s", v.Kind())
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Tag.Get("param")
		if name == "" {
			continue
		}

		value, ok := lookup(name)
		if !ok {
			continue
		}

		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}

		if err := setField(fv, value); err != nil {
			return fmt.Errorf("decoding param %q: %w", name, err)
		}
	}

	return nil
}

func setField(field reflect.Value, value Value) error {
	s := value.String()

	switch field.Kind() {
	case reflect.String:
		field.SetString(s)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %s", s)
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer: %s", s)
		}
		field.SetUint(n)

	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(s, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float: %s", s)
		}
		field.SetFloat(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", s)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice element type: %s", field.Type().Elem().Kind())
		}
		parts := value.List
		if !value.IsList && s != "" {
			parts = strings.Split(s, "/")
		}
		field.Set(reflect.ValueOf(append([]string(nil), parts...)))

	default:
		return fmt.Errorf("unsupported type: %s", field.Kind())
	}

	return nil
}
