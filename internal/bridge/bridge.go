// Package bridge reads source frames from a serial-attached tracker bridge.
// The bridge streams one JSON frame per line; each frame carries the full
// set of currently detected sources, so the newest frame always supersedes
// older ones.
package bridge

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.bug.st/serial"

	"spatial-input/internal/spatial"
)

// Frame is one line of the bridge protocol.
type Frame struct {
	Time    time.Time             `json:"time"`
	Sources []spatial.SourceEntry `json:"sources"`
}

// Port is the minimal interface needed from the serial port.
type Port interface {
	io.Reader
	io.Closer
}

// Enumerator implements spatial.Enumerator over a serial tracker bridge. A
// monitor goroutine keeps the latest frame; Enumerate serves it until it
// goes stale (older than maxAge), after which enumeration reports
// unavailable rather than pretending the last frame is current.
type Enumerator struct {
	mu       sync.Mutex
	frame    *Frame
	received time.Time

	maxAge time.Duration
	port   Port
	log    *slog.Logger
	done   chan struct{}
}

// Open opens the serial port at path and starts monitoring it.
func Open(path string, baudRate int, maxAge time.Duration, log *slog.Logger) (*Enumerator, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, err
	}
	return NewEnumerator(port, maxAge, log), nil
}

// NewEnumerator wraps an already-open port. Used directly in tests with a
// mock port.
func NewEnumerator(port Port, maxAge time.Duration, log *slog.Logger) *Enumerator {
	if maxAge <= 0 {
		maxAge = 250 * time.Millisecond
	}
	e := &Enumerator{
		maxAge: maxAge,
		port:   port,
		log:    log,
		done:   make(chan struct{}),
	}
	go e.monitor()
	return e
}

func (e *Enumerator) monitor() {
	defer close(e.done)
	scan := bufio.NewScanner(e.port)
	scan.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scan.Scan() {
		line := scan.Bytes()
		if len(line) == 0 {
			continue
		}
		var frame Frame
		if err := json.Unmarshal(line, &frame); err != nil {
			e.log.Debug("malformed bridge frame", slog.String("error", err.Error()))
			continue
		}
		e.mu.Lock()
		e.frame = &frame
		e.received = time.Now()
		e.mu.Unlock()
	}
	if err := scan.Err(); err != nil {
		e.log.Warn("bridge port read failed", slog.String("error", err.Error()))
	}
}

// Enumerate implements spatial.Enumerator.
func (e *Enumerator) Enumerate(now time.Time) ([]spatial.SourceEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.frame == nil || now.Sub(e.received) > e.maxAge {
		return nil, spatial.ErrUnavailable
	}
	out := make([]spatial.SourceEntry, len(e.frame.Sources))
	copy(out, e.frame.Sources)
	for i := range out {
		if out[i].Snapshot.Time.IsZero() {
			out[i].Snapshot.Time = e.frame.Time
		}
	}
	return out, nil
}

// Close closes the port and waits for the monitor goroutine to exit.
func (e *Enumerator) Close() error {
	err := e.port.Close()
	<-e.done
	return err
}
