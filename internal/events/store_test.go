package events

import (
	"fmt"
	"testing"

	"github.com/MRSt3Ss/rat2/internal/models"

	"github.com/stretchr/testify/require"
)

func TestAppendAndQueryLast(t *testing.T) {
	s := NewStore()

	for i := 0; i < 5; i++ {
		s.Append("dev-1", models.EventSMSLog, map[string]any{"n": i})
	}
	s.Append("dev-1", models.EventCallLog, map[string]any{"n": 99})

	results := s.QueryLast("dev-1", models.EventSMSLog, 3)
	require.Len(t, results, 3)
	// Newest first
	require.Equal(t, 4, results[0].Payload["n"])
	require.Equal(t, 3, results[1].Payload["n"])
	require.Equal(t, 2, results[2].Payload["n"])
	for _, e := range results {
		require.Equal(t, models.EventSMSLog, e.Kind)
	}
}

func TestQueryLastUnknownDevice(t *testing.T) {
	s := NewStore()

	results := s.QueryLast("missing", models.EventSMSLog, 10)
	require.Empty(t, results)
}

func TestQueryLastAnyMatchesKindSet(t *testing.T) {
	s := NewStore()

	s.Append("dev-1", models.EventShellLsResult, map[string]any{"n": 1})
	s.Append("dev-1", models.EventSMSLog, map[string]any{"n": 2})
	s.Append("dev-1", models.EventFileManagerResult, map[string]any{"n": 3})

	kinds := []models.EventKind{models.EventShellLsResult, models.EventFileManagerResult}
	results := s.QueryLastAny("dev-1", kinds, 10)
	require.Len(t, results, 2)
	require.Equal(t, 3, results[0].Payload["n"])
	require.Equal(t, 1, results[1].Payload["n"])
}

func TestWatermarkTruncation(t *testing.T) {
	s := NewStore()

	// 1000 appends stay untrimmed; the 1001st crosses the high
	// watermark and cuts the log back to the 500 most recent.
	for i := 0; i < DefaultHighWatermark; i++ {
		s.Append("dev-1", models.EventSMSLog, map[string]any{"n": i})
	}
	require.Equal(t, DefaultHighWatermark, s.Len("dev-1"))

	s.Append("dev-1", models.EventSMSLog, map[string]any{"n": DefaultHighWatermark})
	require.Equal(t, DefaultLowWatermark, s.Len("dev-1"))

	// Retained entries are the most recent ones, newest first.
	results := s.QueryLast("dev-1", models.EventSMSLog, DefaultLowWatermark)
	require.Len(t, results, DefaultLowWatermark)
	require.Equal(t, DefaultHighWatermark, results[0].Payload["n"])
	last := results[len(results)-1]
	require.Equal(t, DefaultHighWatermark-DefaultLowWatermark+1, last.Payload["n"])
}

func TestCustomWatermarks(t *testing.T) {
	s := NewStoreWithWatermarks(10, 4)

	for i := 0; i < 11; i++ {
		s.Append("dev-1", models.EventCallLog, map[string]any{"n": i})
	}
	require.Equal(t, 4, s.Len("dev-1"))

	results := s.QueryLast("dev-1", models.EventCallLog, 10)
	require.Len(t, results, 4)
	require.Equal(t, 10, results[0].Payload["n"])
}

func TestLogsAreIsolatedPerDevice(t *testing.T) {
	s := NewStoreWithWatermarks(10, 4)

	for i := 0; i < 11; i++ {
		s.Append("dev-1", models.EventSMSLog, map[string]any{"n": i})
	}
	s.Append("dev-2", models.EventSMSLog, map[string]any{"n": 0})

	require.Equal(t, 4, s.Len("dev-1"))
	require.Equal(t, 1, s.Len("dev-2"))
}

func TestQueryLastNeverExceedsLimit(t *testing.T) {
	s := NewStore()

	for i := 0; i < 20; i++ {
		s.Append("dev-1", models.EventNotificationData, map[string]any{"n": fmt.Sprint(i)})
	}

	require.Len(t, s.QueryLast("dev-1", models.EventNotificationData, 7), 7)
	require.Len(t, s.QueryLast("dev-1", models.EventNotificationData, 50), 20)
}
