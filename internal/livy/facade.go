package livy

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/AltairaLabs/livy-mcp/internal/livy/marshal"
)

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	callablePattern   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
)

// RunFile submits the contents of a local file as one statement
func (s *Session) RunFile(ctx context.Context, path string) (string, error) {
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("%w: %s", ErrRelativePath, path)
	}
	code, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s.Run(ctx, string(code))
}

// Call invokes a remote callable with positional and keyword arguments and
// reads its return value.
func (s *Session) Call(ctx context.Context, fname string, args []any, kwargs map[string]any) (marshal.Value, error) {
	expr, err := CallExpr(fname, args, kwargs)
	if err != nil {
		return nil, err
	}
	return s.Read(ctx, expr)
}

// CallExpr renders fname(*[args...], **{kwargs...}) as a Python expression
func CallExpr(fname string, args []any, kwargs map[string]any) (string, error) {
	if !callablePattern.MatchString(fname) {
		return "", fmt.Errorf("%w: bad callable name %q", ErrInvalidCall, fname)
	}

	positional, err := PythonLiteral(args)
	if err != nil {
		return "", err
	}
	if args == nil {
		positional = "[]"
	}

	keys := make([]string, 0, len(kwargs))
	for k := range kwargs {
		if !identifierPattern.MatchString(k) {
			return "", fmt.Errorf("%w: bad keyword argument %q", ErrInvalidCall, k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		lit, err := PythonLiteral(kwargs[k])
		if err != nil {
			return "", err
		}
		parts = append(parts, quotePython(k)+": "+lit)
	}

	return fmt.Sprintf("%s(*%s, **{%s})", fname, positional, strings.Join(parts, ", ")), nil
}

// PythonLiteral renders a Go value as a Python literal. Supported values are
// nil, booleans, numbers, strings, json.Number, slices, arrays and maps with
// string keys.
func PythonLiteral(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "None", nil
	case json.Number:
		return x.String(), nil
	case string:
		return quotePython(x), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			return "True", nil
		}
		return "False", nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		switch {
		case math.IsNaN(f):
			return "float('nan')", nil
		case math.IsInf(f, 1):
			return "float('inf')", nil
		case math.IsInf(f, -1):
			return "float('-inf')", nil
		}
		s := strconv.FormatFloat(f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s, nil
	case reflect.String:
		return quotePython(rv.String()), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return "None", nil
		}
		items := make([]string, rv.Len())
		for i := range items {
			lit, err := PythonLiteral(rv.Index(i).Interface())
			if err != nil {
				return "", err
			}
			items[i] = lit
		}
		return "[" + strings.Join(items, ", ") + "]", nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return "", fmt.Errorf("%w: map keys must be strings, got %s", ErrInvalidCall, rv.Type().Key())
		}
		if rv.IsNil() {
			return "None", nil
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		items := make([]string, len(keys))
		for i, k := range keys {
			lit, err := PythonLiteral(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return "", err
			}
			items[i] = quotePython(k) + ": " + lit
		}
		return "{" + strings.Join(items, ", ") + "}", nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "None", nil
		}
		return PythonLiteral(rv.Elem().Interface())
	default:
		return "", fmt.Errorf("%w: unsupported argument type %T", ErrInvalidCall, v)
	}
}

// quotePython produces a double-quoted literal valid in both JSON and Python
func quotePython(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
