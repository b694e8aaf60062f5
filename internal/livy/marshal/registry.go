package marshal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	// ErrUnknownTag is wrapped by MarshallingError when a tag has no registered reconstruction
	ErrUnknownTag = errors.New("no reconstruction registered for type tag")
	// ErrShapeMismatch is wrapped when a payload does not have the shape its tag requires
	ErrShapeMismatch = errors.New("payload shape does not match type tag")
)

// MarshallingError reports a value that could not be reconstructed locally
type MarshallingError struct {
	Tag string // remote type tag
	Raw string // raw text fetched from the remote side
	Err error  // underlying failure
}

func (e *MarshallingError) Error() string {
	return fmt.Sprintf("failed to fetch a %q object: %q; additional error info: %v", e.Tag, e.Raw, e.Err)
}

func (e *MarshallingError) Unwrap() error {
	return e.Err
}

// Strategy selects how the payload for a tag is fetched from the remote side
type Strategy int

const (
	// FetchRepr fetches the textual representation of the bound name
	FetchRepr Strategy = iota
	// FetchRows runs a loop printing one JSON document per table row
	FetchRows
	// FetchJSON prints the bound name serialized as a single JSON document
	FetchJSON
)

func (s Strategy) String() string {
	switch s {
	case FetchRepr:
		return "repr"
	case FetchRows:
		return "rows"
	case FetchJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Decoder reconstructs a value from the raw payload fetched for tag
type Decoder func(tag, raw string) (Value, error)

// Entry pairs a fetch strategy with its decoder
type Entry struct {
	Strategy Strategy
	Decode   Decoder
}

// Registry is a closed mapping from type tags to reconstruction entries.
// Tags outside the registry are never resolved dynamically.
type Registry struct {
	mu           sync.RWMutex
	entries      map[string]Entry
	allowGeneric bool
}

// NewRegistry creates a registry with the built-in scalar, table and
// structural tags registered.
func NewRegistry() *Registry {
	r := &Registry{
		entries: make(map[string]Entry),
	}
	r.Register(TagInt, Entry{Strategy: FetchRepr, Decode: decodeInt})
	r.Register(TagFloat, Entry{Strategy: FetchRepr, Decode: decodeFloat})
	r.Register(TagBool, Entry{Strategy: FetchRepr, Decode: decodeBool})
	r.Register(TagStr, Entry{Strategy: FetchRepr, Decode: decodeString})
	r.Register(TagDataFrame, Entry{Strategy: FetchRows, Decode: decodeTable})
	r.Register(TagDict, Entry{Strategy: FetchJSON, Decode: structural(isStruct)})
	r.Register(TagList, Entry{Strategy: FetchJSON, Decode: structural(isList)})
	r.Register(TagTuple, Entry{Strategy: FetchJSON, Decode: structural(isList)})
	r.Register(TagNone, Entry{Strategy: FetchJSON, Decode: structural(isNull)})
	return r
}

// SetAllowGeneric makes unregistered tags decode to *Structured holding raw
// JSON data instead of failing with ErrUnknownTag.
func (r *Registry) SetAllowGeneric(allow bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allowGeneric = allow
}

// AllowsGeneric reports whether unregistered tags decode to *Structured
func (r *Registry) AllowsGeneric() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.allowGeneric
}

// Register adds or replaces the entry for a tag
func (r *Registry) Register(tag string, entry Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[tag] = entry
}

// Lookup returns the entry registered for tag
func (r *Registry) Lookup(tag string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[tag]
	return e, ok
}

// Resolve returns the entry to use for tag. Unregistered tags still fetch
// JSON so malformed payloads are reported with their parse failure; a
// well-formed payload is then rejected unless generic decoding is allowed.
func (r *Registry) Resolve(tag string) Entry {
	if e, ok := r.Lookup(tag); ok {
		return e
	}

	r.mu.RLock()
	allow := r.allowGeneric
	r.mu.RUnlock()

	return Entry{
		Strategy: FetchJSON,
		Decode: func(tag, raw string) (Value, error) {
			v, err := decodeJSON(tag, raw)
			if err != nil {
				return nil, err
			}
			if !allow {
				return nil, &MarshallingError{Tag: tag, Raw: raw, Err: ErrUnknownTag}
			}
			return v, nil
		},
	}
}

// Tags returns the registered tags
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.entries))
	for tag := range r.entries {
		tags = append(tags, tag)
	}
	return tags
}

// Unquote strips exactly one layer of quoting from a textual representation
func Unquote(s string) (string, error) {
	if len(s) < 2 {
		return "", fmt.Errorf("%q is too short to be quoted", s)
	}
	return s[1 : len(s)-1], nil
}

func decodeInt(tag, raw string) (Value, error) {
	i, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil, &MarshallingError{Tag: tag, Raw: raw, Err: err}
	}
	return Int(i), nil
}

func decodeFloat(tag, raw string) (Value, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, &MarshallingError{Tag: tag, Raw: raw, Err: err}
	}
	return Float(f), nil
}

func decodeBool(tag, raw string) (Value, error) {
	switch strings.TrimSpace(raw) {
	case "True":
		return Bool(true), nil
	case "False":
		return Bool(false), nil
	default:
		return nil, &MarshallingError{Tag: tag, Raw: raw, Err: fmt.Errorf("not a boolean literal")}
	}
}

func decodeString(tag, raw string) (Value, error) {
	s, err := Unquote(raw)
	if err != nil {
		return nil, &MarshallingError{Tag: tag, Raw: raw, Err: err}
	}
	return String(s), nil
}

func decodeTable(tag, raw string) (Value, error) {
	t, err := ParseRows(raw)
	if err != nil {
		return nil, &MarshallingError{Tag: tag, Raw: raw, Err: err}
	}
	return t, nil
}

func decodeJSON(tag, raw string) (*Structured, error) {
	v := &structpb.Value{}
	if err := protojson.Unmarshal([]byte(strings.TrimSpace(raw)), v); err != nil {
		return nil, &MarshallingError{Tag: tag, Raw: raw, Err: err}
	}
	return &Structured{TypeTag: tag, Data: v}, nil
}

func structural(shape func(*structpb.Value) bool) Decoder {
	return func(tag, raw string) (Value, error) {
		v, err := decodeJSON(tag, raw)
		if err != nil {
			return nil, err
		}
		if !shape(v.Data) {
			return nil, &MarshallingError{Tag: tag, Raw: raw, Err: ErrShapeMismatch}
		}
		return v, nil
	}
}

func isStruct(v *structpb.Value) bool {
	_, ok := v.GetKind().(*structpb.Value_StructValue)
	return ok
}

func isList(v *structpb.Value) bool {
	_, ok := v.GetKind().(*structpb.Value_ListValue)
	return ok
}

func isNull(v *structpb.Value) bool {
	_, ok := v.GetKind().(*structpb.Value_NullValue)
	return ok
}
