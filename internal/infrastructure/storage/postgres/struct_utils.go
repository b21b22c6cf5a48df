package postgres

import (
	"reflect"
	"sync"
)

// ExtractDBColumns returns the "db" tag of every field of T, descending into
// embedded structs such as customer.Snapshot.
func ExtractDBColumns[T any]() []string {
	var zero T
	return columnsOf(reflect.TypeOf(zero))
}

func columnsOf(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var cols []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			cols = append(cols, columnsOf(field.Type)...)
			continue
		}
		if tag := field.Tag.Get("db"); tag != "" && tag != "-" {
			cols = append(cols, tag)
		}
	}
	return cols
}

// fieldPath locates a tagged field, possibly inside embedded structs.
type fieldPath struct {
	column string
	index  []int
}

var pathCache sync.Map // map[reflect.Type][]fieldPath

func pathsOf(t reflect.Type) []fieldPath {
	if cached, ok := pathCache.Load(t); ok {
		return cached.([]fieldPath)
	}

	var paths []fieldPath
	var walk func(t reflect.Type, prefix []int)
	walk = func(t reflect.Type, prefix []int) {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			idx := append(append([]int(nil), prefix...), i)
			if field.Anonymous && field.Type.Kind() == reflect.Struct {
				walk(field.Type, idx)
				continue
			}
			if tag := field.Tag.Get("db"); tag != "" && tag != "-" {
				paths = append(paths, fieldPath{column: tag, index: idx})
			}
		}
	}
	walk(t, nil)

	pathCache.Store(t, paths)
	return paths
}

// StructToMap converts a struct to a column → value map using "db" tags.
// Type metadata is computed once per type.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	paths := pathsOf(rv.Type())
	res := make(map[string]any, len(paths))
	for _, p := range paths {
		res[p.column] = rv.FieldByIndex(p.index).Interface()
	}
	return res
}
