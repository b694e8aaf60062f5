package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/AltairaLabs/livy-mcp/internal/livy/marshal"
	"github.com/AltairaLabs/livy-mcp/internal/types"
)

// TablePayload is the JSON shape of a table value
type TablePayload struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// FormatValue renders a value read from a session as the JSON tool payload
func FormatValue(session string, v marshal.Value) (string, error) {
	resp := types.ValueResponse{
		Session: session,
		Tag:     v.Tag(),
		Value:   payload(v),
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s value: %w", v.Tag(), err)
	}
	return string(data), nil
}

func payload(v marshal.Value) any {
	switch x := v.(type) {
	case *marshal.Table:
		return TablePayload{Columns: x.Columns, Rows: x.Rows}
	case marshal.Float:
		// JSON has no encoding for these
		f := float64(x)
		switch {
		case math.IsNaN(f):
			return "NaN"
		case math.IsInf(f, 1):
			return "Infinity"
		case math.IsInf(f, -1):
			return "-Infinity"
		}
		return f
	default:
		return v.Interface()
	}
}

// DecodeArgs re-decodes a tool argument so JSON numbers keep their literal
// form. An integer argument then renders as a Python int, not a float.
func DecodeArgs(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseJars splits a comma separated package list, dropping empty items
func ParseJars(s string) []string {
	var jars []string
	for _, jar := range strings.Split(s, ",") {
		if jar = strings.TrimSpace(jar); jar != "" {
			jars = append(jars, jar)
		}
	}
	return jars
}
