package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/petermattis/goid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowsOf(pairs ...[2]any) []Row {
	var out []Row
	for _, p := range pairs {
		out = append(out, Row{{Name: "id", Value: p[0]}, {Name: "name", Value: p[1]}})
	}
	return out
}

// collect submits req and waits for the single completion.
func collect(t *testing.T, e *Executor, text string) (Result, int64) {
	t.Helper()
	var (
		calls int32
		mu    sync.Mutex
		got   Result
		gid   int64
	)
	done := make(chan struct{})
	task := e.Submit(context.Background(), NewRequest(text), func(r Result) {
		mu.Lock()
		got = r
		gid = goid.Get()
		mu.Unlock()
		if atomic.AddInt32(&calls, 1) == 1 {
			close(done)
		}
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("completion never arrived")
	}
	<-task.Done()
	// Give a misbehaving executor the chance to call twice.
	time.Sleep(20 * time.Millisecond)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls), "onComplete must fire exactly once")

	mu.Lock()
	defer mu.Unlock()
	return got, gid
}

func TestExecutor_Submit(t *testing.T) {
	tests := []struct {
		name     string
		db       DatabaseFunc
		text     string
		wantRows []Row
		wantErr  string
	}{
		{
			name: "rows keep database order",
			db: func(ctx context.Context, text string) ([]Row, error) {
				if text != "SELECT * FROM t" {
					return nil, errors.New("unexpected query")
				}
				return rowsOf([2]any{1, "a"}, [2]any{2, "b"}), nil
			},
			text:     "SELECT * FROM t",
			wantRows: rowsOf([2]any{1, "a"}, [2]any{2, "b"}),
		},
		{
			name: "empty result is still a success",
			db: func(ctx context.Context, text string) ([]Row, error) {
				return nil, nil
			},
			text:     "SELECT 1 WHERE false",
			wantRows: []Row{},
		},
		{
			name: "database error becomes failure message",
			db: func(ctx context.Context, text string) ([]Row, error) {
				return nil, errors.New("syntax error")
			},
			text:    "SELEKT x",
			wantErr: "syntax error",
		},
		{
			name: "empty text is forwarded",
			db: func(ctx context.Context, text string) ([]Row, error) {
				if text == "" {
					return nil, errors.New("empty query")
				}
				return nil, nil
			},
			text:    "",
			wantErr: "empty query",
		},
		{
			name: "panic in collaborator is contained",
			db: func(ctx context.Context, text string) ([]Row, error) {
				panic("driver exploded")
			},
			text:    "SELECT 1",
			wantErr: "panic: driver exploded",
		},
		{
			name: "credentials are masked",
			db: func(ctx context.Context, text string) ([]Row, error) {
				return nil, errors.New("dial postgres://admin:hunter2@db:5432/app failed")
			},
			text:    "SELECT 1",
			wantErr: "dial postgres://*:*@db:5432/app failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExecutor(tt.db)
			res, _ := collect(t, e, tt.text)

			rows, okRows := res.Rows()
			msg, okFail := res.Failure()
			assert.NotEqual(t, okRows, okFail, "exactly one variant must be populated")

			if tt.wantErr != "" {
				require.True(t, okFail)
				assert.Equal(t, tt.wantErr, msg)
				return
			}
			require.True(t, okRows)
			assert.Equal(t, tt.wantRows, rows)
		})
	}
}

func TestExecutor_CompletesOffCallerGoroutine(t *testing.T) {
	e := NewExecutor(DatabaseFunc(func(ctx context.Context, text string) ([]Row, error) {
		return rowsOf([2]any{1, "a"}), nil
	}))

	_, gid := collect(t, e, "SELECT 1")
	assert.NotEqual(t, goid.Get(), gid)
}

func TestExecutor_Timeout(t *testing.T) {
	e := NewExecutor(DatabaseFunc(func(ctx context.Context, text string) ([]Row, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), WithTimeout(20*time.Millisecond))

	res, _ := collect(t, e, "SELECT pg_sleep(10)")
	msg, failed := res.Failure()
	require.True(t, failed)
	assert.Equal(t, context.DeadlineExceeded.Error(), msg)
}

func TestTask_CancelAndWait(t *testing.T) {
	started := make(chan struct{})
	e := NewExecutor(DatabaseFunc(func(ctx context.Context, text string) ([]Row, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}))

	req := NewRequest("SELECT 1")
	task := e.Submit(context.Background(), req, nil)
	assert.Equal(t, req.ID, task.ID())

	<-started
	task.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := task.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, req.ID, res.RequestID)
	msg, failed := res.Failure()
	require.True(t, failed)
	assert.Equal(t, context.Canceled.Error(), msg)
}

func TestTask_WaitHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	e := NewExecutor(DatabaseFunc(func(ctx context.Context, text string) ([]Row, error) {
		<-release
		return nil, nil
	}))

	task := e.Submit(context.Background(), NewRequest("SELECT 1"), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := task.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
