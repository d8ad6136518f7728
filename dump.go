package logging

import (
	"fmt"
	"reflect"
)

const (
	// Maximum recursion depth to prevent stack overflow
	maxDumpDepth = 10
	// Elements of a slice or array beyond this are summarised.
	maxDumpElements = 10
)

// Dump writes the contents of v at Debug level, one line per leaf value.
// Structs list exported fields, maps and slices list their elements, pointer
// cycles are reported instead of followed.
func (h *Handle) Dump(v interface{}) {
	if h == nil || h.closed.Load() || h.logger.Load() == nil || h.Level() > LevelDebug {
		return
	}
	if v == nil {
		h.event(LevelDebug).Msg("Dump: <nil>")
		return
	}
	d := &dumper{visited: make(map[uintptr]bool)}
	d.value(reflect.ValueOf(v), emptyString, 0)
	// Lines are emitted here so the caller field names the code that called Dump.
	for _, line := range d.lines {
		h.event(LevelDebug).Msg(line)
	}
}

type dumper struct {
	lines   []string
	visited map[uintptr]bool
}

func (d *dumper) printf(format string, v ...interface{}) {
	d.lines = append(d.lines, fmt.Sprintf(format, v...))
}

// typeName falls back to the type literal for anonymous types.
func typeName(typ reflect.Type) string {
	if name := typ.Name(); name != emptyString {
		return name
	}
	return typ.String()
}

func (d *dumper) value(val reflect.Value, prefix string, depth int) {
	if depth > maxDumpDepth {
		d.printf("%s: <max depth reached>", prefix)
		return
	}

	for val.Kind() == reflect.Interface || val.Kind() == reflect.Ptr {
		if val.IsNil() {
			d.printf("%s: <nil>", prefix)
			return
		}
		if val.Kind() == reflect.Ptr {
			ptr := val.Pointer()
			if d.visited[ptr] {
				d.printf("%s: <circular reference>", prefix)
				return
			}
			d.visited[ptr] = true
		}
		val = val.Elem()
	}

	if !val.IsValid() {
		d.printf("%s: <invalid>", prefix)
		return
	}
	typ := val.Type()

	switch val.Kind() {
	case reflect.Struct:
		if prefix == emptyString {
			d.printf("Struct: %s", typeName(typ))
		} else {
			d.printf("%s: %s {", prefix, typeName(typ))
		}
		for i := 0; i < val.NumField(); i++ {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			name := field.Name
			if prefix != emptyString {
				name = prefix + "." + field.Name
			}
			d.value(val.Field(i), name, depth+1)
		}
		if prefix != emptyString {
			d.printf("%s: }", prefix)
		}

	case reflect.Map:
		d.printf("%s: map[%s]%s (len: %d) {", prefix, typ.Key(), typ.Elem(), val.Len())
		iter := val.MapRange()
		for iter.Next() {
			key := fmt.Sprintf("%s[%v]", prefix, iter.Key().Interface())
			d.value(iter.Value(), key, depth+1)
		}
		d.printf("%s: }", prefix)

	case reflect.Slice, reflect.Array:
		d.printf("%s: %s (len: %d) {", prefix, typ, val.Len())
		for i := 0; i < val.Len() && i < maxDumpElements; i++ {
			d.value(val.Index(i), fmt.Sprintf("%s[%d]", prefix, i), depth+1)
		}
		if val.Len() > maxDumpElements {
			d.printf("%s: ... (%d more elements)", prefix, val.Len()-maxDumpElements)
		}
		d.printf("%s: }", prefix)

	default:
		if val.CanInterface() {
			d.printf("%s: %v", prefix, val.Interface())
		} else {
			d.printf("%s: %v", prefix, val)
		}
	}
}
