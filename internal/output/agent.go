package output

import (
	"cmp"
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// ApplyAgentOptions applies --result-limit/--result-sort-by/--result-desc to
// list output. Anything that is not a slice passes through unchanged.
func ApplyAgentOptions(ctx context.Context, data interface{}) interface{} {
	limit := LimitFromContext(ctx)
	sortBy, desc := SortFromContext(ctx)
	if data == nil || (limit == 0 && sortBy == "") {
		return data
	}

	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return data
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return data
	}

	return applyToSlice(v, limit, sortBy, desc).Interface()
}

// applyToSlice copies, sorts, and limits a slice value.
func applyToSlice(v reflect.Value, limit int, sortBy string, desc bool) reflect.Value {
	length := v.Len()
	sliceType := v.Type()
	if v.Kind() == reflect.Array {
		sliceType = reflect.SliceOf(v.Type().Elem())
	}
	out := reflect.MakeSlice(sliceType, length, length)
	reflect.Copy(out, v)

	if sortBy != "" {
		path := strings.Split(sortBy, ".")
		sort.SliceStable(out.Interface(), func(i, j int) bool {
			a, aok := extractSortableValue(out.Index(i), path)
			b, bok := extractSortableValue(out.Index(j), path)
			if !aok || !bok {
				return aok && !bok
			}
			c := compareValues(a, b)
			if desc {
				return c > 0
			}
			return c < 0
		})
	}

	if limit > 0 && limit < out.Len() {
		return out.Slice(0, limit)
	}
	return out
}

func extractSortableValue(v reflect.Value, path []string) (interface{}, bool) {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if len(path) == 0 {
		return nil, false
	}

	var next reflect.Value
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		for _, key := range v.MapKeys() {
			if normalizeName(key.String()) == normalizeName(path[0]) {
				next = v.MapIndex(key)
				break
			}
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			f := v.Type().Field(i)
			if f.IsExported() && normalizeName(fieldLabel(f)) == normalizeName(path[0]) {
				next = v.Field(i)
				break
			}
		}
	}
	if !next.IsValid() {
		return nil, false
	}
	if len(path) == 1 {
		return next.Interface(), true
	}
	return extractSortableValue(next, path[1:])
}

func normalizeName(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(s, "_", ""), "-", ""))
}

func compareValues(a, b interface{}) int {
	switch va := a.(type) {
	case string:
		if vb, ok := b.(string); ok {
			return strings.Compare(va, vb)
		}
	case int:
		if vb, ok := b.(int); ok {
			return cmp.Compare(va, vb)
		}
	case float64:
		if vb, ok := b.(float64); ok {
			return cmp.Compare(va, vb)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
