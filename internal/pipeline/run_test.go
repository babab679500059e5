package pipeline

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonathan/resume-verifier/internal/apperr"
	"github.com/jonathan/resume-verifier/internal/observability"
)

type state struct {
	Input  string
	Length int
	Notes  []string
	Seen   []string
}

func TestInvoke_AppliesUpdatesInDeclarationOrder(t *testing.T) {
	release := make(chan struct{})
	g, err := New("test",
		Stage[state]{Name: "measure", Run: func(_ context.Context, s state) (Update[state], error) {
			n := len(s.Input)
			return func(s *state) { s.Length = n }, nil
		}},
		Stage[state]{Name: "slow", DependsOn: []string{"measure"}, Run: func(_ context.Context, s state) (Update[state], error) {
			<-release
			length := s.Length
			return func(s *state) {
				s.Notes = append(s.Notes, "slow saw length")
				s.Seen = append(s.Seen, strconv.Itoa(length))
			}, nil
		}},
		Stage[state]{Name: "fast", DependsOn: []string{"measure"}, Run: func(_ context.Context, s state) (Update[state], error) {
			defer close(release)
			return func(s *state) { s.Notes = append(s.Notes, "fast") }, nil
		}},
	)
	require.NoError(t, err)

	run, err := g.Invoke(context.Background(), state{Input: "résumé"})
	require.NoError(t, err)

	assert.Equal(t, 8, run.State.Length)
	// fast finished first but slow is declared first
	assert.Equal(t, []string{"slow saw length", "fast"}, run.State.Notes)
	assert.Equal(t, []string{"8"}, run.State.Seen)

	require.Len(t, run.Stages, 3)
	for _, rec := range run.Stages {
		assert.Equal(t, StageCompleted, rec.Status, rec.Name)
	}
	assert.Len(t, run.Durations(), 3)
	assert.Empty(t, run.Failed())
}

func TestInvoke_BranchesSeeTheSameSnapshot(t *testing.T) {
	var mu sync.Mutex
	var seen []int

	record := func(_ context.Context, s state) (Update[state], error) {
		mu.Lock()
		seen = append(seen, len(s.Notes))
		mu.Unlock()
		return func(s *state) { s.Notes = append(s.Notes, "x") }, nil
	}

	g, err := New("test",
		Stage[state]{Name: "a", Run: record},
		Stage[state]{Name: "b", Run: record},
		Stage[state]{Name: "c", Run: record},
	)
	require.NoError(t, err)

	run, err := g.Invoke(context.Background(), state{})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 0, 0}, seen)
	assert.Len(t, run.State.Notes, 3)
}

func TestInvoke_RunIDInContext(t *testing.T) {
	var got string
	g, err := New("test", Stage[state]{Name: "a", Run: func(ctx context.Context, _ state) (Update[state], error) {
		got = RunID(ctx)
		return nil, nil
	}})
	require.NoError(t, err)

	run, err := g.Invoke(context.Background(), state{})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, run.ID, got)

	second, err := g.Invoke(context.Background(), state{})
	require.NoError(t, err)
	assert.NotEqual(t, run.ID, second.ID)

	fixed, err := g.Invoke(context.Background(), state{}, WithRunID("run-1"))
	require.NoError(t, err)
	assert.Equal(t, "run-1", fixed.ID)
	assert.Equal(t, "run-1", got)

	assert.Empty(t, RunID(context.Background()))
}

func TestInvoke_RequiredFailureAborts(t *testing.T) {
	boom := apperr.New(apperr.KindSchema, "test", "bad output")
	var laterRan atomic.Bool

	g, err := New("test",
		Stage[state]{Name: "extract", Run: func(context.Context, state) (Update[state], error) {
			return nil, boom
		}},
		Stage[state]{Name: "score", DependsOn: []string{"extract"}, Run: func(context.Context, state) (Update[state], error) {
			laterRan.Store(true)
			return nil, nil
		}},
	)
	require.NoError(t, err)

	run, err := g.Invoke(context.Background(), state{})
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "extract", stageErr.Stage)
	assert.Equal(t, apperr.KindRunFatal, apperr.KindOf(err))
	assert.True(t, apperr.IsKind(err, apperr.KindSchema))
	assert.ErrorIs(t, err, boom)
	assert.False(t, laterRan.Load())

	require.Len(t, run.Stages, 2)
	assert.Equal(t, StageFailed, run.Stages[0].Status)
	assert.Equal(t, StageSkipped, run.Stages[1].Status)
	assert.Len(t, run.Failed(), 1)
}

func TestInvoke_OptionalFailureIsRecorded(t *testing.T) {
	g, err := New("test",
		Stage[state]{Name: "narrative", Optional: true, Run: func(context.Context, state) (Update[state], error) {
			return func(s *state) { s.Notes = append(s.Notes, "must not apply") }, errors.New("provider down")
		}},
		Stage[state]{Name: "score", Run: func(context.Context, state) (Update[state], error) {
			return func(s *state) { s.Length = 42 }, nil
		}},
	)
	require.NoError(t, err)

	run, err := g.Invoke(context.Background(), state{})
	require.NoError(t, err)

	assert.Equal(t, 42, run.State.Length)
	assert.Empty(t, run.State.Notes)
	failed := run.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "narrative", failed[0].Name)
	assert.EqualError(t, failed[0].Err, "provider down")
}

func TestInvoke_CanceledBeforeStart(t *testing.T) {
	var ran atomic.Bool
	g, err := New("test", Stage[state]{Name: "a", Run: func(context.Context, state) (Update[state], error) {
		ran.Store(true)
		return nil, nil
	}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := g.Invoke(ctx, state{})
	require.Error(t, err)
	assert.Equal(t, apperr.KindCanceled, apperr.KindOf(err))
	assert.False(t, ran.Load())
	require.Len(t, run.Stages, 1)
	assert.Equal(t, StageSkipped, run.Stages[0].Status)
}

func TestInvoke_CanceledBetweenLayers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var secondRan atomic.Bool
	g, err := New("test",
		Stage[state]{Name: "first", Run: func(context.Context, state) (Update[state], error) {
			cancel()
			return nil, nil
		}},
		Stage[state]{Name: "second", DependsOn: []string{"first"}, Run: func(context.Context, state) (Update[state], error) {
			secondRan.Store(true)
			return nil, nil
		}},
	)
	require.NoError(t, err)

	_, err = g.Invoke(ctx, state{})
	assert.Equal(t, apperr.KindCanceled, apperr.KindOf(err))
	assert.False(t, secondRan.Load())
}

func TestInvoke_RequiredFailureDuringCancelIsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g, err := New("test", Stage[state]{Name: "a", Run: func(ctx context.Context, _ state) (Update[state], error) {
		cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	}})
	require.NoError(t, err)

	_, err = g.Invoke(ctx, state{})
	assert.Equal(t, apperr.KindCanceled, apperr.KindOf(err))
	var stageErr *StageError
	assert.ErrorAs(t, err, &stageErr)
}

func TestInvoke_ProgressLogsAndMetrics(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	g, err := New("linkedin",
		Stage[state]{Name: "extract", Run: func(context.Context, state) (Update[state], error) {
			time.Sleep(time.Millisecond)
			return nil, nil
		}},
		Stage[state]{Name: "narrative", Optional: true, DependsOn: []string{"extract"}, Run: func(context.Context, state) (Update[state], error) {
			return nil, errors.New("nope")
		}},
	)
	require.NoError(t, err)

	var events []ProgressEvent
	run, err := g.Invoke(context.Background(), state{},
		WithLogger(zap.New(core)),
		WithMetrics(metrics),
		WithProgress(func(e ProgressEvent) { events = append(events, e) }),
	)
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, "extract", events[0].Step)
	assert.Equal(t, StageCompleted, events[0].Status)
	assert.Equal(t, run.ID, events[0].RunID)
	assert.Equal(t, "linkedin", events[0].Pipeline)
	assert.Equal(t, StageFailed, events[1].Status)
	assert.Contains(t, events[1].Message, "optional")

	warned := logs.FilterMessage("optional stage failed").All()
	require.Len(t, warned, 1)
	assert.Equal(t, "narrative", warned[0].ContextMap()["stage"])
	assert.Equal(t, run.ID, warned[0].ContextMap()["run_id"])

	assert.Equal(t, 1, logs.FilterMessage("pipeline completed").Len())
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "resume_verifier_pipeline_runs_total"))
}
