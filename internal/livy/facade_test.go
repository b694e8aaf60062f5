package livy

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPythonLiteral(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "None"},
		{"true", true, "True"},
		{"false", false, "False"},
		{"int", 42, "42"},
		{"negative", int32(-7), "-7"},
		{"uint", uint8(9), "9"},
		{"integral float", 3.0, "3.0"},
		{"float", 2.5, "2.5"},
		{"exponent", 1e21, "1e+21"},
		{"nan", math.NaN(), "float('nan')"},
		{"inf", math.Inf(1), "float('inf')"},
		{"neg inf", math.Inf(-1), "float('-inf')"},
		{"json number", json.Number("12.50"), "12.50"},
		{"string", `it's "quoted"`, `"it's \"quoted\""`},
		{"list", []any{1, "a", nil}, `[1, "a", None]`},
		{"nil slice", []int(nil), "None"},
		{"map", map[string]any{"b": 2, "a": []string{"x"}}, `{"a": ["x"], "b": 2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PythonLiteral(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestPythonLiteralRejectsUnsupported(t *testing.T) {
	_, err := PythonLiteral(map[int]string{1: "a"})
	require.ErrorIs(t, err, ErrInvalidCall)

	_, err = PythonLiteral(struct{}{})
	require.ErrorIs(t, err, ErrInvalidCall)

	_, err = PythonLiteral(make(chan int))
	require.ErrorIs(t, err, ErrInvalidCall)
}

func TestCallExpr(t *testing.T) {
	expr, err := CallExpr("helpers.scale", []any{2, "col"}, map[string]any{"factor": 1.5, "dry_run": true})
	require.NoError(t, err)
	require.Equal(t, `helpers.scale(*[2, "col"], **{"dry_run": True, "factor": 1.5})`, expr)

	expr, err = CallExpr("f", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "f(*[], **{})", expr)
}

func TestCallExprRejectsBadNames(t *testing.T) {
	_, err := CallExpr("os.system('rm'); f", nil, nil)
	require.ErrorIs(t, err, ErrInvalidCall)

	_, err = CallExpr("f", nil, map[string]any{"not valid": 1})
	require.ErrorIs(t, err, ErrInvalidCall)
}

func TestCallReadsReturnValue(t *testing.T) {
	g := newFakeGateway(t)
	s := openWith(t, g, remote{`add(*[1, 2], **{})`: {"int", "3"}})

	v, err := s.Call(context.Background(), "add", []any{1, 2}, nil)
	require.NoError(t, err)
	require.Equal(t, int64(3), v.Interface())
}

func TestRunFileRequiresAbsolutePath(t *testing.T) {
	g := newFakeGateway(t)
	s := openWith(t, g, remote{})

	_, err := s.RunFile(context.Background(), "jobs/etl.py")
	require.True(t, errors.Is(err, ErrRelativePath), "got %v", err)
	require.Empty(t, g.codes())
}

func TestRunFileSubmitsContents(t *testing.T) {
	g := newFakeGateway(t)
	g.respond = func(code string) (StatementState, *Output) {
		return StatementAvailable, textOutput("done")
	}
	s, err := g.open(context.Background())
	require.NoError(t, err)
	defer s.Close(context.Background())

	path := filepath.Join(t.TempDir(), "job.py")
	require.NoError(t, os.WriteFile(path, []byte("print('done')\n"), 0o600))

	out, err := s.RunFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "done", out)
	require.Equal(t, []string{"print('done')\n"}, g.codes())
}

func TestRunFileMissing(t *testing.T) {
	g := newFakeGateway(t)
	s := openWith(t, g, remote{})

	_, err := s.RunFile(context.Background(), filepath.Join(t.TempDir(), "absent.py"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
