package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/AltairaLabs/livy-mcp/internal/livy"
)

var _ Session = (*livy.Session)(nil)

func TestSessionInfoJSON(t *testing.T) {
	info := &SessionInfo{
		Name:       "default",
		ID:         7,
		Host:       "http://livy:8998",
		Kind:       "pyspark",
		State:      "idle",
		Statements: 3,
		CreatedAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for _, key := range []string{"name", "id", "host", "kind", "state", "bindings", "statements", "created_at", "last_active"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("Expected key %q in %s", key, data)
		}
	}
	if fields["created_at"] != "2024-01-02T03:04:05Z" {
		t.Errorf("Unexpected created_at %v", fields["created_at"])
	}
}

func TestValueResponseJSON(t *testing.T) {
	data, err := json.Marshal(ValueResponse{Session: "default", Tag: "int", Value: 42})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"session":"default","tag":"int","value":42}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}
}
