package bridge

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spatial-input/internal/spatial"
)

// mockPort implements Port over a fixed byte stream, then blocks until
// closed so the monitor goroutine stays alive like it would on hardware.
type mockPort struct {
	data   []byte
	closed chan struct{}
}

func newMockPort(data []byte) *mockPort {
	return &mockPort{data: data, closed: make(chan struct{})}
}

func (m *mockPort) Read(p []byte) (int, error) {
	if len(m.data) == 0 {
		<-m.closed
		return 0, io.EOF
	}
	n := copy(p, m.data)
	m.data = m.data[n:]
	return n, nil
}

func (m *mockPort) Close() error {
	close(m.closed)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEnumerator_parsesFrames(t *testing.T) {
	lines := []byte(`garbage that is not json
{"time":"2024-05-01T12:00:00Z","sources":[{"id":7,"snapshot":{"kind":"controller","handedness":"right","position_available":true}}]}
`)
	e := NewEnumerator(newMockPort(lines), time.Minute, testLogger())
	defer e.Close()

	var entries []spatial.SourceEntry
	require.Eventually(t, func() bool {
		var err error
		entries, err = e.Enumerate(time.Now())
		return err == nil
	}, time.Second, 5*time.Millisecond, "no frame became available")

	require.Len(t, entries, 1)
	assert.Equal(t, spatial.SourceID(7), entries[0].ID)
	assert.Equal(t, spatial.KindController, entries[0].Snapshot.Kind)
	assert.Equal(t, spatial.HandRight, entries[0].Snapshot.Handedness)
	assert.True(t, entries[0].Snapshot.PositionAvailable)
	// Snapshots without their own timestamp inherit the frame's.
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), entries[0].Snapshot.Time)
}

func TestEnumerator_unavailableBeforeFirstFrame(t *testing.T) {
	e := NewEnumerator(newMockPort(nil), time.Minute, testLogger())
	defer e.Close()

	_, err := e.Enumerate(time.Now())
	assert.ErrorIs(t, err, spatial.ErrUnavailable)
}

func TestEnumerator_staleFrameIsUnavailable(t *testing.T) {
	line := []byte(`{"time":"2024-05-01T12:00:00Z","sources":[]}` + "\n")
	e := NewEnumerator(newMockPort(line), 10*time.Millisecond, testLogger())
	defer e.Close()

	require.Eventually(t, func() bool {
		_, err := e.Enumerate(time.Now())
		return err == nil
	}, time.Second, time.Millisecond)

	time.Sleep(25 * time.Millisecond)
	_, err := e.Enumerate(time.Now())
	assert.ErrorIs(t, err, spatial.ErrUnavailable)
}

func TestEnumerator_close(t *testing.T) {
	e := NewEnumerator(newMockPort(nil), time.Minute, testLogger())
	require.NoError(t, e.Close())
}
