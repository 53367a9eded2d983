package uci_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/asmb/a64browse/internal/uci"
	"github.com/asmb/a64browse/internal/uci/ucitest"
)

func newDriver(fp *ucitest.FakePort) *uci.Driver {
	return uci.NewDriver(fp, uci.WithPollTimeout(50*time.Millisecond), uci.WithRetries(3, time.Millisecond))
}

func TestDriverRoundTrip(t *testing.T) {
	fp := ucitest.NewFakePort()
	d := newDriver(fp)

	require.NoError(t, d.Submit(uci.Frame{Target: 0x01, Op: 0x01}))
	data := d.ReadData()
	st := d.ReadStatus()
	require.NoError(t, d.Accept())

	require.Equal(t, "ULTIMATE 64/II+ TESTBED", string(data))
	require.True(t, st.OK())
	require.Equal(t, "OK", st.Message)
}

func TestDriverRetriesFlaggedErrors(t *testing.T) {
	fp := ucitest.NewFakePort()
	fp.FailPushes = 2
	d := newDriver(fp)

	require.NoError(t, d.Submit(uci.Frame{Target: 0x01, Op: 0x01}))
	d.ReadData()
	st := d.ReadStatus()
	require.NoError(t, d.Accept())
	require.True(t, st.OK())
}

func TestDriverGivesUpAfterRetryBudget(t *testing.T) {
	fp := ucitest.NewFakePort()
	fp.FailPushes = 10
	d := newDriver(fp)

	err := d.Submit(uci.Frame{Target: 0x01, Op: 0x01})
	require.ErrorIs(t, err, uci.ErrChannel)
}

func TestDriverTimesOutWhenNotAccepted(t *testing.T) {
	fp := ucitest.NewFakePort()
	d := newDriver(fp)

	require.NoError(t, d.Submit(uci.Frame{Target: 0x01, Op: 0x01}))
	// No drain, no accept: the controller stays in the data state and the
	// next submission cannot reach idle.
	err := d.Submit(uci.Frame{Target: 0x01, Op: 0x01})
	require.ErrorIs(t, err, uci.ErrTimeout)
}

func TestDriverRejectsOversizedPayload(t *testing.T) {
	fp := ucitest.NewFakePort()
	d := newDriver(fp)

	err := d.Submit(uci.Frame{Target: 0x03, Op: 0x11, Payload: make([]byte, uci.MaxPayload+1)})
	require.ErrorIs(t, err, uci.ErrPayloadSize)
}

func TestDriverBuffersDoNotLeakAcrossCommands(t *testing.T) {
	fp := ucitest.NewFakePort()
	d := newDriver(fp)

	require.NoError(t, d.Submit(uci.Frame{Target: 0x01, Op: 0x01}))
	first := string(d.ReadData())
	d.ReadStatus()
	require.NoError(t, d.Accept())

	require.NoError(t, d.Submit(uci.Frame{Target: 0x03, Op: 0x05, Payload: []byte{0x00}}))
	second := string(d.ReadData())
	d.ReadStatus()
	require.NoError(t, d.Accept())

	require.Equal(t, "ULTIMATE 64/II+ TESTBED", first)
	require.Equal(t, "192.168.1.64", second)
	require.Empty(t, d.ReadData())
}

func TestParseStatus(t *testing.T) {
	st := uci.ParseStatus([]byte("00,OK"))
	require.True(t, st.OK())
	require.Equal(t, "OK", st.Message)

	st = uci.ParseStatus([]byte("85,NO SUCH SOCKET"))
	require.False(t, st.OK())
	require.Equal(t, "85", st.Code)

	st = uci.ParseStatus(nil)
	require.False(t, st.OK())
}
