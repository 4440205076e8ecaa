package helpers

import "reflect"

// StrPanic panics with panicMessage if s is empty; otherwise returns s.
// Used for fail-fast validation of required constructor strings.
func StrPanic(s string, panicMessage string) string {
	if s == "" {
		panic(panicMessage)
	}
	return s
}

// NilPanic panics with panicMessage if v is nil — including a nil interface,
// pointer, slice, map, chan or func — otherwise returns v unchanged.
func NilPanic[T any](v T, panicMessage string) T {
	if isNil(v) {
		panic(panicMessage)
	}
	return v
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
