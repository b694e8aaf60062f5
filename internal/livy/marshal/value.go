// Package marshal reconstructs remote interpreter values on the client side
// from a type tag plus the textual payload fetched for it.
package marshal

import (
	"google.golang.org/protobuf/types/known/structpb"
)

// Type tags with built-in reconstruction
const (
	TagInt       = "int"
	TagFloat     = "float"
	TagBool      = "bool"
	TagStr       = "str"
	TagDataFrame = "DataFrame"
	TagDict      = "dict"
	TagList      = "list"
	TagTuple     = "tuple"
	TagNone      = "NoneType"
)

// Value is a reconstructed remote value. The concrete type is one of Int,
// Float, Bool, String, *Table or *Structured.
type Value interface {
	// Tag is the remote type tag the value was read under
	Tag() string
	// Interface returns the value as plain Go data
	Interface() any

	value()
}

// Int is a remote integer. Values outside the int64 range are not
// representable and fail to decode with strconv.ErrRange.
type Int int64

// Float is a remote float
type Float float64

// Bool is a remote boolean
type Bool bool

// String is a remote string
type String string

func (Int) Tag() string    { return TagInt }
func (Float) Tag() string  { return TagFloat }
func (Bool) Tag() string   { return TagBool }
func (String) Tag() string { return TagStr }

func (v Int) Interface() any    { return int64(v) }
func (v Float) Interface() any  { return float64(v) }
func (v Bool) Interface() any   { return bool(v) }
func (v String) Interface() any { return string(v) }

func (Int) value()    {}
func (Float) value()  {}
func (Bool) value()   {}
func (String) value() {}

// Structured is a JSON-shaped remote value such as a dict or list
type Structured struct {
	TypeTag string
	Data    *structpb.Value
}

// Tag returns the remote type tag
func (s *Structured) Tag() string { return s.TypeTag }

// Interface returns the data as map[string]any, []any, scalars or nil
func (s *Structured) Interface() any {
	if s.Data == nil {
		return nil
	}
	return s.Data.AsInterface()
}

func (*Structured) value() {}
