package browse

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResultWindowSlidesWithCursor(t *testing.T) {
	svc := newStub()
	m := newTestModel(t, svc)
	m = apply(t, m, key("enter"))

	start, end := m.resultWindow()
	require.Equal(t, 0, start)
	require.Equal(t, visibleRows, end)

	// Walk to the last row of the 20-item page; the window slides so the
	// cursor stays on screen without fetching anything.
	calls := len(svc.calls)
	for i := 0; i < visibleRows+1; i++ {
		m = apply(t, m, key("down"))
	}
	require.Equal(t, visibleRows+1, m.cursor)
	require.Len(t, svc.calls, calls)

	start, end = m.resultWindow()
	require.Equal(t, end-visibleRows, start)
	require.GreaterOrEqual(t, m.cursor, start)
	require.Less(t, m.cursor, end)
	require.Equal(t, len(m.result.Items), end)
}

func TestResultWindowShortPage(t *testing.T) {
	svc := newStub()
	svc.total = 5
	m := newTestModel(t, svc)
	m = apply(t, m, key("enter"))

	start, end := m.resultWindow()
	require.Equal(t, 0, start)
	require.Equal(t, 5, end)
}
