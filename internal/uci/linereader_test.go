package uci_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/asmb/a64browse/internal/uci"
	"github.com/asmb/a64browse/internal/uci/ucitest"
)

func newLineReader(t *testing.T, fp *ucitest.FakePort) *uci.LineReader {
	t.Helper()
	n := newNetwork(fp)
	sock, st, err := n.Connect("a64.example.org", 6464, uci.TCP)
	require.NoError(t, err)
	require.True(t, st.OK())
	return uci.NewLineReader(n, sock)
}

func TestLineReaderGreeting(t *testing.T) {
	fp := ucitest.NewFakePort()
	r := newLineReader(t, fp)

	line, ok, err := r.NextLine()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "OK Assembly64 Browser", line)

	_, ok, err = r.NextLine()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLineReaderAssemblesAcrossChunks(t *testing.T) {
	fp := ucitest.NewFakePort()
	fp.ChunkLimit = 3
	fp.Greeting = "OK 2 5\r\nfirst line\r\nsecond\n"
	r := newLineReader(t, fp)

	want := []string{"OK 2 5", "first line", "second"}
	for _, w := range want {
		line, ok, err := r.NextLine()
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, w, line)
	}
}

func TestLineReaderEmptyLineMidStream(t *testing.T) {
	fp := ucitest.NewFakePort()
	fp.Greeting = "one\n\ntwo\n"
	r := newLineReader(t, fp)

	line, ok, err := r.NextLine()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "one", line)

	line, ok, err = r.NextLine()
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, line)

	line, ok, err = r.NextLine()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "two", line)
}

func TestLineReaderPartialLineAtEOF(t *testing.T) {
	fp := ucitest.NewFakePort()
	fp.Greeting = "no newline"
	r := newLineReader(t, fp)

	line, ok, err := r.NextLine()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "no newline", line)
}

func TestLineReaderRidesOutRetries(t *testing.T) {
	fp := ucitest.NewFakePort()
	fp.RetryReads = 3
	r := newLineReader(t, fp)

	line, ok, err := r.NextLine()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "OK Assembly64 Browser", line)
}
