package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/crucial707/todo-api/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedCounter struct {
	n   int
	err error
}

func (f fixedCounter) Count(context.Context) (int, error) { return f.n, f.err }

func TestStatsRefresher_Refresh(t *testing.T) {
	s := &StatsRefresher{Users: fixedCounter{n: 2}, Todos: fixedCounter{n: 9}}
	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.UsersTotal))
	assert.Equal(t, 9.0, testutil.ToFloat64(metrics.TodosTotal))
}

func TestStatsRefresher_ErrorLeavesGauges(t *testing.T) {
	metrics.SetCounts(5, 6)
	s := &StatsRefresher{Users: fixedCounter{n: 1}, Todos: fixedCounter{err: errors.New("db down")}}
	err := s.Refresh(context.Background())
	assert.ErrorContains(t, err, "count todos")
	assert.Equal(t, 5.0, testutil.ToFloat64(metrics.UsersTotal))
	assert.Equal(t, 6.0, testutil.ToFloat64(metrics.TodosTotal))
}

func TestStart(t *testing.T) {
	c, err := Start("", &StatsRefresher{})
	assert.NoError(t, err)
	assert.Nil(t, c)

	_, err = Start("not a cron spec", &StatsRefresher{Users: fixedCounter{}, Todos: fixedCounter{}})
	assert.Error(t, err)

	c, err = Start("@every 1h", &StatsRefresher{Users: fixedCounter{n: 3}, Todos: fixedCounter{n: 4}})
	require.NoError(t, err)
	require.NotNil(t, c)
	defer c.Stop()
	assert.Len(t, c.Entries(), 1)
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.UsersTotal), "initial refresh runs synchronously")
}
