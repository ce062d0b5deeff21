package telemetry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	rec := NewRecorder(t)
	scoped := NewScopedAPI("edapi", NewScopedAPI("client", rec))

	scoped.ReportBroken("list-threads", "boom")
	scoped.ReportWarning("get-thread")
	scoped.ReportCount("threads", 3)
	scoped.ReportDebug("paging", 100)

	broken := rec.Reports("broken", "")
	require.Len(t, broken, 1)
	require.Equal(t, "client: edapi: list-threads", broken[0].Id)
	require.Equal(t, []any{"boom"}, broken[0].Params)

	require.Len(t, rec.Reports("warning", "get-thread"), 1)
	require.Equal(t, []any{int64(3)}, rec.Reports("count", "threads")[0].Params)
	require.Len(t, rec.Reports("debug", "paging"), 1)
	require.Empty(t, rec.Reports("broken", "get-thread"))
}
