// rfid-util
// Copyright (c) 2025 The rfid-util Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of rfid-util.
//
// rfid-util is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// rfid-util is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with rfid-util; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package rfidutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/lxxxxl/rfid-util/internal/frame"
)

// IdentityMarker is the substring of the VersionCheck reply that identifies
// the reader firmware.
const IdentityMarker = "rfid-util"

// DefaultHandshakeTimeout bounds the wait for a VersionCheck reply
const DefaultHandshakeTimeout = 100 * time.Millisecond

// ProbeState represents the discovery state machine
type ProbeState int

const (
	ProbeIdle ProbeState = iota
	ProbeOpening
	ProbeAwaitingHandshake
	ProbeConfirmed
	ProbeExhausted
)

// String returns the state name
func (s ProbeState) String() string {
	switch s {
	case ProbeIdle:
		return "idle"
	case ProbeOpening:
		return "opening"
	case ProbeAwaitingHandshake:
		return "awaiting-handshake"
	case ProbeConfirmed:
		return "confirmed"
	case ProbeExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("ProbeState(%d)", int(s))
	}
}

// ProbeHost is implemented by the component driving a Prober. Opened
// transports must deliver their reads back through the Prober's Handle
// methods; timers armed here must call HandleTimeout when they fire unless
// cancelled first.
type ProbeHost interface {
	Open(path string) (Transport, error)
	ArmTimer(d time.Duration) (cancel func())
}

// ProbeConfig configures the discovery pass
type ProbeConfig struct {
	IdentityMarker   string
	HandshakeTimeout time.Duration
	Revision         Revision
}

// DefaultProbeConfig returns the firmware defaults
func DefaultProbeConfig() *ProbeConfig {
	return &ProbeConfig{
		IdentityMarker:   IdentityMarker,
		HandshakeTimeout: DefaultHandshakeTimeout,
		Revision:         RevisionSectorDump,
	}
}

// Identity is the parsed VersionCheck reply
type Identity struct {
	Line    string
	Version string
}

// ParseIdentity reports whether line carries marker and extracts the firmware
// version that follows it, e.g. "rfid-util-1" yields version "1".
func ParseIdentity(line, marker string) (Identity, bool) {
	line = frame.TrimLine(line)
	idx := strings.Index(line, marker)
	if marker == "" || idx < 0 {
		return Identity{}, false
	}
	rest := strings.TrimPrefix(line[idx+len(marker):], "-")
	return Identity{Line: line, Version: strings.TrimSpace(rest)}, true
}

// Handoff carries a confirmed endpoint out of the Prober
type Handoff struct {
	Transport Transport
	Identity  Identity
	Path      string
	// Pending holds bytes received after the handshake line
	Pending []byte
}

// Prober drives discovery: it tries each candidate endpoint once, sends a
// VersionCheck and waits a bounded time for the identity marker. Every
// per-candidate failure moves on to the next candidate; running out of
// candidates is the only terminal failure.
//
// A Prober is not safe for concurrent use. Its driver must serialize calls.
type Prober struct {
	host        ProbeHost
	config      *ProbeConfig
	transport   Transport
	cancelTimer func()
	lastErr     error
	candidates  []string
	pending     []byte
	current     string
	identity    Identity
	buf         frame.Buffer
	attempts    int
	state       ProbeState
}

// NewProber creates a prober driven by host
func NewProber(host ProbeHost, config *ProbeConfig) *Prober {
	if config == nil {
		config = DefaultProbeConfig()
	}
	return &Prober{
		host:   host,
		config: config,
	}
}

// State returns the current discovery state
func (p *Prober) State() ProbeState {
	return p.state
}

// Current returns the candidate being probed, if any
func (p *Prober) Current() string {
	return p.current
}

// Remaining returns the number of untried candidates
func (p *Prober) Remaining() int {
	return len(p.candidates)
}

// Attempts returns the number of candidates tried in this pass
func (p *Prober) Attempts() int {
	return p.attempts
}

// LastError returns the failure of the most recently rejected candidate
func (p *Prober) LastError() error {
	return p.lastErr
}

// Start begins a discovery pass over candidates. Any endpoint held from an
// earlier pass is closed first.
func (p *Prober) Start(candidates []string) {
	p.release()
	p.candidates = append([]string(nil), candidates...)
	p.attempts = 0
	p.lastErr = nil
	p.identity = Identity{}
	p.pending = nil
	p.state = ProbeIdle
	debugf("discovery started with %d candidate(s)", len(p.candidates))
	p.openNext()
}

// Stop abandons the pass and closes any endpoint under probe
func (p *Prober) Stop() {
	p.release()
	p.candidates = nil
	p.current = ""
	p.state = ProbeIdle
}

// HandleBytes feeds bytes read from the endpoint under probe
func (p *Prober) HandleBytes(data []byte) {
	if p.state != ProbeAwaitingHandshake {
		return
	}

	lines := p.buf.Feed(data)
	for i, line := range lines {
		if id, ok := ParseIdentity(line, p.config.IdentityMarker); ok {
			p.confirm(id, lines[i+1:])
			return
		}
		debugf("candidate %s answered %q", p.current, frame.TrimLine(line))
		p.reject(NewTransportError("handshake", p.current, ErrHandshakeMismatch, ErrorTypeTransient))
		return
	}
}

// HandleTimeout is called when the handshake timer fires
func (p *Prober) HandleTimeout() {
	if p.state != ProbeAwaitingHandshake {
		return
	}
	p.cancelTimer = nil
	p.reject(NewTimeoutError("handshake", p.current))
}

// HandleReadError is called when the endpoint under probe fails
func (p *Prober) HandleReadError(err error) {
	if p.state != ProbeAwaitingHandshake {
		return
	}
	p.reject(NewTransportError("read", p.current, fmt.Errorf("%w: %w", ErrTransportRead, err), ErrorTypeTransient))
}

// Handoff moves the confirmed endpoint out of the prober. Afterwards the
// prober holds no reference to it and is back in ProbeIdle.
func (p *Prober) Handoff() (Handoff, error) {
	if p.state != ProbeConfirmed || p.transport == nil {
		return Handoff{}, fmt.Errorf("handoff in state %s: %w", p.state, ErrNotConnected)
	}

	h := Handoff{
		Transport: p.transport,
		Identity:  p.identity,
		Path:      p.current,
		Pending:   p.pending,
	}
	p.transport = nil
	p.pending = nil
	p.candidates = nil
	p.current = ""
	p.buf.Reset()
	p.state = ProbeIdle
	return h, nil
}

func (p *Prober) confirm(id Identity, rest []string) {
	p.stopTimer()
	p.identity = id
	for _, line := range rest {
		p.pending = append(p.pending, line...)
	}
	p.pending = append(p.pending, p.buf.Pending()...)
	p.buf.Reset()
	p.state = ProbeConfirmed
	debugf("reader confirmed on %s (firmware %q)", p.current, id.Version)
}

func (p *Prober) reject(err error) {
	p.lastErr = err
	debugf("candidate rejected: %v", err)
	p.openNext()
}

// openNext closes the current endpoint and opens candidates until one accepts
// the VersionCheck or none are left.
func (p *Prober) openNext() {
	p.release()

	for len(p.candidates) > 0 {
		last := len(p.candidates) - 1
		path := p.candidates[last]
		p.candidates = p.candidates[:last]
		p.current = path
		p.state = ProbeOpening
		p.attempts++

		transport, err := p.host.Open(path)
		if err != nil {
			p.lastErr = NewTransportError("open", path, fmt.Errorf("%w: %w", ErrEndpointOpenFailed, err), ErrorTypeTransient)
			debugf("open %s failed: %v", path, err)
			continue
		}
		p.transport = transport

		if err := p.sendVersionCheck(); err != nil {
			p.lastErr = NewTransportError("write", path, fmt.Errorf("%w: %w", ErrTransportWrite, err), ErrorTypeTransient)
			debugf("version check on %s failed: %v", path, err)
			p.release()
			continue
		}
		return
	}

	p.current = ""
	p.state = ProbeExhausted
	debugln("discovery exhausted: ", ErrDiscoveryExhausted)
}

func (p *Prober) sendVersionCheck() error {
	data, err := Command{Kind: CmdVersionCheck}.Encode(p.config.Revision)
	if err != nil {
		return err
	}
	p.state = ProbeAwaitingHandshake
	p.cancelTimer = p.host.ArmTimer(p.config.HandshakeTimeout)
	if err := p.transport.Write(data); err != nil {
		p.stopTimer()
		return err
	}
	return nil
}

func (p *Prober) stopTimer() {
	if p.cancelTimer != nil {
		p.cancelTimer()
		p.cancelTimer = nil
	}
}

func (p *Prober) release() {
	p.stopTimer()
	p.buf.Reset()
	if p.transport != nil {
		if err := p.transport.Close(); err != nil {
			debugf("close %s: %v", p.transport.Path(), err)
		}
		p.transport = nil
	}
}
