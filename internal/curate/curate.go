// Package curate turns Garmin Connect responses into compact, stably named
// results. Every exported function takes an api.Upstream and request
// parameters and returns a Result whose keys are snake_case with unit
// suffixes. Null and absent values never appear in a Result, and an empty
// upstream answer is reported as a single "error" key.
package curate

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"reflect"
)

// Result is a curated tool response.
type Result = map[string]any

// NotFound returns the uniform "no data" shape.
func NotFound(format string, args ...any) Result {
	return Result{"error": fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether r is the "no data" shape.
func IsNotFound(r Result) bool {
	_, ok := r["error"]
	return ok && len(r) == 1
}

// Prune drops nil values recursively. Pointers are dereferenced, maps are
// rebuilt without nil entries and slices lose their nil elements. Nil maps
// and slices count as nil.
func Prune(v any) any {
	return prune(reflect.ValueOf(v))
}

func prune(rv reflect.Value) any {
	if !rv.IsValid() {
		return nil
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return prune(rv.Elem())
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		if rv.Type().Key().Kind() != reflect.String {
			return rv.Interface()
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			if v := prune(iter.Value()); v != nil {
				out[iter.Key().String()] = v
			}
		}
		return out
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Interface()
		}
		out := make([]any, 0, rv.Len())
		for i := range rv.Len() {
			if v := prune(rv.Index(i)); v != nil {
				out = append(out, v)
			}
		}
		return out
	}
	return rv.Interface()
}

// clean prunes a result built by a curation function.
func clean(r Result) Result {
	return Prune(r).(map[string]any)
}

// attempt runs a best-effort lookup. Failures are logged and reported as
// absent.
func attempt[T any](ctx context.Context, what string, fn func() (T, error)) (T, bool) {
	v, err := fn()
	if err != nil {
		slog.DebugContext(ctx, "best-effort lookup failed", slog.String("lookup", what), slog.Any("error", err))
		var zero T
		return zero, false
	}
	return v, true
}

func dateRange(start, end string) Result {
	return Result{"start": start, "end": end}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// scaled divides *p by div, rounded to one decimal. Nil stays nil.
func scaled(p *float64, div float64) *float64 {
	if p == nil {
		return nil
	}
	v := round1(*p / div)
	return &v
}

// scaledPositive is scaled, but treats zero and negative values as absent.
func scaledPositive(p *float64, div float64) *float64 {
	if p == nil || *p <= 0 {
		return nil
	}
	return scaled(p, div)
}

// celsius converts a Fahrenheit reading, rounded to one decimal.
func celsius(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := round1((*f - 32) * 5 / 9)
	return &v
}

// trueOrNil keeps only positive flags so that false is omitted.
func trueOrNil(b bool) *bool {
	if !b {
		return nil
	}
	return &b
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func firstString(vals ...*string) *string {
	for _, v := range vals {
		if v != nil && *v != "" {
			return v
		}
	}
	return nil
}
