// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The openknob authors

package cmd

import (
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/openknob/knobctl/pkg/knob"
)

const (
	// connectSettleDelay gives the device time to finish its reset after
	// the host opens the port (many boards reboot on DTR toggle).
	connectSettleDelay = 2 * time.Second

	// reconnectBackoff is the pause between failed connection attempts.
	reconnectBackoff = 3 * time.Second

	// readIdleYield bounds CPU usage when a poll returns no input.
	readIdleYield = 5 * time.Millisecond
)

// Messages the session publishes to its sink. TUI models receive them via
// tea.Program.Send; CLI commands consume them from a plain callback.
type positionMsg int

type snapshotMsg knob.Config

type sessionConnectedMsg struct {
	info string
}

type sessionLostMsg struct {
	err error
}

type sessionLogMsg struct {
	text    string
	isError bool
}

// session owns the transport for one device: it runs the read loop,
// classifies protocol lines, maintains connect/reconnect state, and is the
// single path for outgoing commands. Shared state lives behind one mutex
// and is only ever read or written whole.
type session struct {
	mu          sync.Mutex
	conn        Connection
	connected   bool
	lastErr     error
	position    int
	hasPosition bool
	snapshot    knob.Config
	hasSnapshot bool

	address string
	dial    Dialer
	notify  func(tea.Msg)
	persist func(address string)

	settle  time.Duration
	backoff time.Duration
	idle    time.Duration

	dec *knob.LineDecoder
	asm *knob.Assembler

	done     chan struct{}
	stopOnce sync.Once
}

// newSession creates a session for address. notify must be safe to call
// from the session's read goroutine; persist (optional) is invoked with the
// address after every successful connect.
func newSession(address string, dial Dialer, notify func(tea.Msg), persist func(address string)) *session {
	return &session{
		address: address,
		dial:    dial,
		notify:  notify,
		persist: persist,
		settle:  connectSettleDelay,
		backoff: reconnectBackoff,
		idle:    readIdleYield,
		dec:     knob.NewLineDecoder(),
		asm:     knob.NewAssembler(),
		done:    make(chan struct{}),
	}
}

// stop terminates the read loop and releases the transport.
func (s *session) stop() {
	s.stopOnce.Do(func() { close(s.done) })
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLocked(nil)
}

func (s *session) isConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *session) currentConn() Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// lastPosition returns the most recent step position, if any was seen.
func (s *session) lastPosition() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position, s.hasPosition
}

// currentSnapshot returns the most recently published configuration.
func (s *session) currentSnapshot() (knob.Config, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot, s.hasSnapshot
}

// releaseLocked drops the transport handle and records err. Callers hold mu.
func (s *session) releaseLocked(err error) {
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.connected = false
	if err != nil {
		s.lastErr = err
	}
}

// connect opens the transport, waits out the settle delay, persists the
// address and requests the device's current settings.
func (s *session) connect() error {
	conn, err := s.dial(s.address)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.connected = false
		s.mu.Unlock()
		return err
	}

	// Device reset grace period.
	select {
	case <-s.done:
		conn.Close()
		return fmt.Errorf("session stopped")
	case <-time.After(s.settle):
	}

	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.lastErr = nil
	s.dec.Reset()
	s.asm.Reset()
	s.mu.Unlock()

	if s.persist != nil {
		s.persist(s.address)
	}
	s.notify(sessionConnectedMsg{info: describeAddress(s.address)})

	if err := s.send(knob.RequestSettings()); err != nil {
		return err
	}
	return nil
}

// send writes a command followed by the newline terminator. A write failure
// forces the session into the disconnected state and releases the handle,
// never leaving it half-open.
func (s *session) send(command string) error {
	s.mu.Lock()
	if !s.connected || s.conn == nil {
		s.mu.Unlock()
		return fmt.Errorf("not connected")
	}
	conn := s.conn
	s.mu.Unlock()

	if _, err := conn.Write([]byte(command + "\n")); err != nil {
		s.mu.Lock()
		s.releaseLocked(err)
		s.mu.Unlock()
		s.notify(sessionLostMsg{err: err})
		return fmt.Errorf("send %q: %w", command, err)
	}
	return nil
}

// run is the read loop. It reconnects with the last known address after
// every transport fault and never escalates an error beyond the session;
// only stop ends it.
func (s *session) run() {
	buf := make([]byte, 128)

	for {
		select {
		case <-s.done:
			return
		default:
		}

		if !s.isConnected() {
			if err := s.connect(); err != nil {
				select {
				case <-s.done:
					return
				case <-time.After(s.backoff):
				}
			}
			continue
		}

		conn := s.currentConn()
		if conn == nil {
			continue
		}

		n, err := conn.Read(buf)
		if err != nil {
			s.transportFault(err)
			continue
		}
		if n == 0 {
			// Poll timeout: nothing buffered, yield briefly.
			select {
			case <-s.done:
				return
			case <-time.After(s.idle):
			}
			continue
		}

		for _, b := range buf[:n] {
			if line, ok := s.dec.DecodeByte(b); ok {
				s.handleLine(line)
			}
		}
	}
}

// transportFault records a mid-read failure and drops the handle; the next
// loop iteration falls into the reconnect branch.
func (s *session) transportFault(err error) {
	s.mu.Lock()
	s.releaseLocked(err)
	s.dec.Reset()
	s.asm.Reset()
	s.mu.Unlock()
	s.notify(sessionLostMsg{err: err})
}

// handleLine classifies one complete protocol line. Position updates are
// the latency-sensitive path and are published before any settings block
// work; they also flow while a block is being accumulated (visual
// responsiveness is preferred over block atomicity).
func (s *session) handleLine(line string) {
	if knob.Classify(line) == knob.KindStep {
		pos, err := knob.ParseStep(line)
		if err != nil {
			s.notify(sessionLogMsg{text: err.Error(), isError: true})
			return
		}

		s.mu.Lock()
		changed := !s.hasPosition || pos != s.position
		s.position = pos
		s.hasPosition = true
		s.mu.Unlock()

		// Unchanged values short-circuit: no redundant visual update.
		if changed {
			s.notify(positionMsg(pos))
		}
		return
	}

	cfg, err := s.asm.Feed(line)
	if err != nil {
		s.notify(sessionLogMsg{text: err.Error(), isError: true})
	}
	if cfg != nil {
		s.mu.Lock()
		s.snapshot = *cfg
		s.hasSnapshot = true
		s.mu.Unlock()
		s.notify(snapshotMsg(*cfg))
	}
}
