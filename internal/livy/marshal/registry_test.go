package marshal

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"testing"
)

func decode(t *testing.T, r *Registry, tag, raw string) (Value, error) {
	t.Helper()
	return r.Resolve(tag).Decode(tag, raw)
}

func TestRegistryScalars(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		tag  string
		raw  string
		want any
	}{
		{TagInt, "42", int64(42)},
		{TagInt, "-7\n", int64(-7)},
		{TagFloat, "3.25", 3.25},
		{TagBool, "True", true},
		{TagBool, "False", false},
		{TagStr, "'hello'", "hello"},
		{TagStr, `"it's"`, "it's"},
		{TagStr, "''''", "''"},
	}

	for _, tt := range tests {
		t.Run(tt.tag+"/"+tt.raw, func(t *testing.T) {
			v, err := decode(t, r, tt.tag, tt.raw)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if v.Interface() != tt.want {
				t.Errorf("Expected %v (%T), got %v (%T)", tt.want, tt.want, v.Interface(), v.Interface())
			}
			if v.Tag() != tt.tag {
				t.Errorf("Expected tag %s, got %s", tt.tag, v.Tag())
			}
		})
	}
}

func TestRegistryFloatSpecials(t *testing.T) {
	r := NewRegistry()

	v, err := decode(t, r, TagFloat, "nan")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !math.IsNaN(float64(v.(Float))) {
		t.Errorf("Expected NaN, got %v", v)
	}

	v, err = decode(t, r, TagFloat, "-inf")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !math.IsInf(float64(v.(Float)), -1) {
		t.Errorf("Expected -Inf, got %v", v)
	}
}

func TestRegistryScalarErrors(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		tag string
		raw string
	}{
		{TagInt, "12345678901234567890123"},
		{TagInt, "4.2"},
		{TagFloat, "abc"},
		{TagBool, "true"},
		{TagStr, "'"},
	}

	for _, tt := range tests {
		t.Run(tt.tag+"/"+tt.raw, func(t *testing.T) {
			_, err := decode(t, r, tt.tag, tt.raw)
			var mErr *MarshallingError
			if !errors.As(err, &mErr) {
				t.Fatalf("Expected MarshallingError, got %v", err)
			}
			if mErr.Tag != tt.tag || mErr.Raw != tt.raw {
				t.Errorf("Expected tag %q raw %q, got %q %q", tt.tag, tt.raw, mErr.Tag, mErr.Raw)
			}
		})
	}
}

func TestRegistryIntOutOfRange(t *testing.T) {
	r := NewRegistry()

	for _, raw := range []string{"9223372036854775808", "-9223372036854775809"} {
		_, err := decode(t, r, TagInt, raw)
		if !errors.Is(err, strconv.ErrRange) {
			t.Errorf("Expected ErrRange for %s, got %v", raw, err)
		}
	}

	v, err := decode(t, r, TagInt, "9223372036854775807")
	if err != nil || int64(v.(Int)) != 9223372036854775807 {
		t.Errorf("Expected max int64, got %v %v", v, err)
	}
}

func TestRegistryStructural(t *testing.T) {
	r := NewRegistry()

	v, err := decode(t, r, TagDict, `{"a": 1, "b": [true, null]}`)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	m, ok := v.Interface().(map[string]any)
	if !ok {
		t.Fatalf("Expected map, got %T", v.Interface())
	}
	if m["a"] != float64(1) {
		t.Errorf("Expected a=1, got %v", m["a"])
	}

	v, err = decode(t, r, TagTuple, `[1, "x"]`)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if l, ok := v.Interface().([]any); !ok || len(l) != 2 {
		t.Errorf("Expected 2-element list, got %v", v.Interface())
	}

	v, err = decode(t, r, TagNone, "null")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if v.Interface() != nil {
		t.Errorf("Expected nil, got %v", v.Interface())
	}
}

func TestRegistryShapeMismatch(t *testing.T) {
	r := NewRegistry()

	_, err := decode(t, r, TagDict, `[1, 2]`)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch, got %v", err)
	}
}

func TestRegistryUnknownTagMalformedPayload(t *testing.T) {
	r := NewRegistry()

	_, err := decode(t, r, "Decimal", "{oops")
	var mErr *MarshallingError
	if !errors.As(err, &mErr) {
		t.Fatalf("Expected MarshallingError, got %v", err)
	}
	if mErr.Tag != "Decimal" {
		t.Errorf("Expected tag Decimal, got %s", mErr.Tag)
	}
	if mErr.Raw != "{oops" {
		t.Errorf("Expected raw payload, got %q", mErr.Raw)
	}
	if mErr.Err == nil || errors.Is(err, ErrUnknownTag) {
		t.Errorf("Expected the parse failure, got %v", mErr.Err)
	}
}

func TestRegistryUnknownTagRejected(t *testing.T) {
	r := NewRegistry()

	if e := r.Resolve("Decimal"); e.Strategy != FetchJSON {
		t.Errorf("Expected unknown tags to fetch JSON, got %s", e.Strategy)
	}

	_, err := decode(t, r, "Decimal", `"1.5"`)
	if !errors.Is(err, ErrUnknownTag) {
		t.Errorf("Expected ErrUnknownTag, got %v", err)
	}
}

func TestRegistryAllowGeneric(t *testing.T) {
	r := NewRegistry()
	r.SetAllowGeneric(true)

	v, err := decode(t, r, "Row", `{"id": 3}`)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	s, ok := v.(*Structured)
	if !ok {
		t.Fatalf("Expected *Structured, got %T", v)
	}
	if s.Tag() != "Row" {
		t.Errorf("Expected tag Row, got %s", s.Tag())
	}
}

func TestRegistryRegisterOverride(t *testing.T) {
	r := NewRegistry()
	r.Register("Decimal", Entry{
		Strategy: FetchRepr,
		Decode: func(tag, raw string) (Value, error) {
			return String(raw), nil
		},
	})

	e, ok := r.Lookup("Decimal")
	if !ok || e.Strategy != FetchRepr {
		t.Fatalf("Expected Decimal entry with repr strategy")
	}

	tags := r.Tags()
	sort.Strings(tags)
	want := []string{"DataFrame", "Decimal", "NoneType", "bool", "dict", "float", "int", "list", "str", "tuple"}
	if len(tags) != len(want) {
		t.Fatalf("Expected %d tags, got %v", len(want), tags)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("tag %d: expected %s, got %s", i, want[i], tags[i])
		}
	}
}

func TestMarshallingErrorMessage(t *testing.T) {
	err := &MarshallingError{Tag: "set", Raw: "{1}", Err: errors.New("boom")}
	msg := err.Error()
	for _, part := range []string{`"set"`, `"{1}"`, "boom"} {
		if !strings.Contains(msg, part) {
			t.Errorf("Expected %q in %q", part, msg)
		}
	}
}
