package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopState struct{}

func noop(context.Context, noopState) (Update[noopState], error) { return nil, nil }

func TestNew_Layers(t *testing.T) {
	g, err := New("test",
		Stage[noopState]{Name: "a", Run: noop},
		Stage[noopState]{Name: "b", DependsOn: []string{"a"}, Run: noop},
		Stage[noopState]{Name: "c", DependsOn: []string{"a"}, Run: noop},
		Stage[noopState]{Name: "d", DependsOn: []string{"b", "c"}, Run: noop},
		Stage[noopState]{Name: "e", Run: noop},
	)
	require.NoError(t, err)

	assert.Equal(t, "test", g.Name())
	assert.Equal(t, [][]string{{"a", "e"}, {"b", "c"}, {"d"}}, g.Layers())
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		stages  []Stage[noopState]
		wantErr string
	}{
		{
			name:    "no stages",
			wantErr: "no stages",
		},
		{
			name:    "duplicate",
			stages:  []Stage[noopState]{{Name: "a", Run: noop}, {Name: "a", Run: noop}},
			wantErr: "duplicate stage a",
		},
		{
			name:    "unknown dependency",
			stages:  []Stage[noopState]{{Name: "a", DependsOn: []string{"zzz"}, Run: noop}},
			wantErr: "missing dependencies: zzz",
		},
		{
			name: "cycle",
			stages: []Stage[noopState]{
				{Name: "a", Run: noop},
				{Name: "b", DependsOn: []string{"a", "c"}, Run: noop},
				{Name: "c", DependsOn: []string{"b"}, Run: noop},
			},
			wantErr: "dependency cycle among stages: b, c",
		},
		{
			name:    "missing run",
			stages:  []Stage[noopState]{{Name: "a"}},
			wantErr: "no run function",
		},
		{
			name:    "missing name",
			stages:  []Stage[noopState]{{Run: noop}},
			wantErr: "has no name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("test", tt.stages...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNew_UnknownDependencyType(t *testing.T) {
	_, err := New("test", Stage[noopState]{Name: "a", DependsOn: []string{"b"}, Run: noop})

	var depErr *DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "a", depErr.Stage)
	assert.Equal(t, []string{"b"}, depErr.MissingDependencies)
}
