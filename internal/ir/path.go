package ir

import (
	"strconv"
	"strings"
)

// Lookup walks a dotted path through v and returns the value found there.
//
// Segments address object keys; a segment made only of digits addresses an
// array index ("items.0.price"). The walk never fails: a missing key, an
// index out of range, a null, or a scalar where a container was expected all
// stop the walk and return (IRNull{}, false). An explicit null at the end of
// the path also reports false, since it carries no value.
//
// An empty path returns v itself.
func Lookup(v IRValue, path string) (IRValue, bool) {
	cur := v
	if path != "" {
		for _, seg := range strings.Split(path, ".") {
			next, ok := step(cur, seg)
			if !ok {
				return IRNull{}, false
			}
			cur = next
		}
	}
	if IsNull(cur) {
		return IRNull{}, false
	}
	return cur, true
}

// Get is Lookup with a default: it returns def whenever Lookup reports false.
func Get(v IRValue, path string, def IRValue) IRValue {
	if got, ok := Lookup(v, path); ok {
		return got
	}
	return def
}

// GetString returns the value at path as a string. Strings are returned as
// is, integers and numbers as their decimal text, booleans as "true"/"false".
// Absent values and composites return "".
func GetString(v IRValue, path string) string {
	switch val := Get(v, path, IRNull{}).(type) {
	case IRString:
		return string(val)
	case IRInt:
		return strconv.FormatInt(int64(val), 10)
	case IRNumber:
		return string(val)
	case IRBool:
		return strconv.FormatBool(bool(val))
	default:
		return ""
	}
}

func step(cur IRValue, seg string) (IRValue, bool) {
	switch c := cur.(type) {
	case IRObject:
		next, ok := c[seg]
		if !ok || next == nil {
			return nil, false
		}
		return next, true
	case IRArray:
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 || idx >= len(c) || seg != strconv.Itoa(idx) {
			return nil, false
		}
		if c[idx] == nil {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
