package dashboard_test

import (
	"testing"
	"time"

	"github.com/dynaflex/basing/internal/domain/dashboard"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNormalizeValue(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	local := time.FixedZone("X", 2*60*60)
	ts := time.Date(2024, 5, 6, 9, 0, 0, 0, local)
	dur := 2.5

	require.Nil(t, dashboard.NormalizeValue(nil))
	require.Equal(t, id.String(), dashboard.NormalizeValue(id))
	require.Equal(t, id.String(), dashboard.NormalizeValue([16]byte(id)))
	require.Equal(t, "abc", dashboard.NormalizeValue([]byte("abc")))
	require.Equal(t, "2024-05-06T07:00:00Z", dashboard.NormalizeValue(ts))
	require.Equal(t, "2.500", dashboard.NormalizeValue(dur))
	require.Equal(t, "2.500", dashboard.NormalizeValue(&dur))
	require.Nil(t, dashboard.NormalizeValue((*float64)(nil)))
	require.Equal(t, int64(7), dashboard.NormalizeValue(int64(7)))
	require.Equal(t, "pending", dashboard.NormalizeValue("pending"))
}

func TestNormalizeRow(t *testing.T) {
	row := dashboard.NormalizeRow(
		[]string{"task_id", "task_duration"},
		[]any{[]byte("t1"), nil},
	)
	require.Equal(t, dashboard.Row{"task_id": "t1", "task_duration": nil}, row)
}

func TestFormatDecimal(t *testing.T) {
	require.Equal(t, "0.000", dashboard.FormatDecimal(0))
	require.Equal(t, "1.250", dashboard.FormatDecimal(1.25))
	require.Equal(t, "10.000", dashboard.FormatDecimal(10))
}

func TestRequestOffset(t *testing.T) {
	require.Equal(t, 0, dashboard.Request{Page: 1, Limit: 100}.Offset())
	require.Equal(t, 200, dashboard.Request{Page: 3, Limit: 100}.Offset())
}

func TestTaskStatusValid(t *testing.T) {
	require.True(t, dashboard.StatusInProgress.Valid())
	require.False(t, dashboard.TaskStatus("running").Valid())
}
