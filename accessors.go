package hubclient

import (
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// FromObjectPath walks obj using the keys of path in order and returns the
// value found. The boolean is false when any segment is missing or the
// value at that point cannot be indexed; it never panics, since response
// bodies come from the service under test and may be malformed.
//
// Maps are indexed by key, slices and arrays by a decimal index, http.Header
// case-insensitively, and a *Response through its Fields view. Header names
// below a response's "headers" are matched case-insensitively too.
func FromObjectPath(path []string, obj any) (any, bool) {
	current := obj
	inResponseHeaders := false
	for _, segment := range path {
		if inResponseHeaders {
			segment = strings.ToLower(segment)
		}
		_, isResponse := current.(*Response)
		inResponseHeaders = isResponse && segment == "headers"

		next, ok := GetProp(segment, current)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// GetProp is the single-level variant of FromObjectPath.
func GetProp(name string, obj any) (any, bool) {
	switch v := obj.(type) {
	case nil:
		return nil, false
	case *Response:
		if v == nil {
			return nil, false
		}
		return GetProp(name, v.Fields())
	case map[string]any:
		value, ok := v[name]
		return value, ok
	case map[string]string:
		value, ok := v[name]
		return value, ok
	case http.Header:
		values := v.Values(name)
		if len(values) == 0 {
			return nil, false
		}
		return strings.Join(values, ", "), true
	case []any:
		index, ok := sliceIndex(name, len(v))
		if !ok {
			return nil, false
		}
		return v[index], true
	case []string:
		index, ok := sliceIndex(name, len(v))
		if !ok {
			return nil, false
		}
		return v[index], true
	}
	return reflectProp(name, obj)
}

// reflectProp covers other map and slice types, e.g. map[string]int.
func reflectProp(name string, obj any) (any, bool) {
	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		value := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !value.IsValid() {
			return nil, false
		}
		return value.Interface(), true
	case reflect.Slice, reflect.Array:
		index, ok := sliceIndex(name, rv.Len())
		if !ok {
			return nil, false
		}
		return rv.Index(index).Interface(), true
	}
	return nil, false
}

func sliceIndex(segment string, length int) (int, bool) {
	index, err := strconv.Atoi(segment)
	if err != nil || index < 0 || index >= length {
		return 0, false
	}
	return index, true
}

// FromJSONPath evaluates a JSONPath expression such as "$.body.owner" against
// obj. A *Response is evaluated through its Fields view. The boolean is false
// when the expression is invalid or matches nothing.
func FromJSONPath(expr string, obj any) (any, bool) {
	if resp, ok := obj.(*Response); ok {
		if resp == nil {
			return nil, false
		}
		obj = resp.Fields()
	}
	value, err := jsonpath.Get(expr, obj)
	if err != nil {
		return nil, false
	}
	if matches, ok := value.([]any); ok && len(matches) == 0 && strings.ContainsAny(expr, "*[") {
		return nil, false
	}
	return value, true
}

// StringFromObjectPath is FromObjectPath for string values.
func StringFromObjectPath(path []string, obj any) (string, bool) {
	value, ok := FromObjectPath(path, obj)
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

// IntFromObjectPath is FromObjectPath for integral values. JSON numbers decode
// as float64 and are accepted when they hold a whole number.
func IntFromObjectPath(path []string, obj any) (int, bool) {
	value, ok := FromObjectPath(path, obj)
	if !ok {
		return 0, false
	}
	switch n := value.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
