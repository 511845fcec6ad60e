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

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	rfidutil "github.com/lxxxxl/rfid-util"
	"github.com/lxxxxl/rfid-util/detection"
	"github.com/lxxxxl/rfid-util/internal/frame"
	"github.com/lxxxxl/rfid-util/transport/uart"
)

var (
	// ErrAlreadyRunning is returned when Run is called more than once
	ErrAlreadyRunning = errors.New("controller already running")
	// ErrStopped is returned when the controller loop has exited
	ErrStopped = errors.New("controller stopped")
)

// Enumerator lists candidate endpoints for one discovery pass
type Enumerator func() []string

type event any

type readEvent struct {
	err  error
	data []byte
	gen  uint64
}

type timerEvent struct {
	gen uint64
}

type (
	discoverEvent struct{}
	rescanEvent   struct{}
)

type issueEvent struct {
	reply chan error
	cmd   rfidutil.Command
}

type deviceSession struct {
	transport rfidutil.Transport
	buf       frame.Buffer
}

// Controller owns the reader lifecycle: it discovers the reader, holds the
// confirmed endpoint and routes device lines to the Dispatcher. All protocol
// state is touched only by the goroutine running Run.
type Controller struct {
	opener     rfidutil.Opener
	config     *Config
	enumerate  Enumerator
	callbacks  *rfidutil.Callbacks
	builder    *rfidutil.Builder
	prober     *rfidutil.Prober
	dispatcher *rfidutil.Dispatcher
	session    *deviceSession
	rescan     *time.Timer
	events     chan event
	stopped    chan struct{}
	changed    chan struct{}
	info       atomic.Pointer[Info]
	mu         sync.Mutex
	running    atomic.Bool
	state      atomic.Int32

	// loop-owned generation counters
	epGen    uint64
	timerGen uint64

	// Atomic counters for metrics
	probes      int64
	passes      int64
	handshakes  int64
	exhaustions int64
	lines       int64
	commands    int64
	reconnects  int64
}

// New creates a Controller. Without options it probes real serial ports
// listed by the detection package.
func New(opts ...Option) (*Controller, error) {
	c := &Controller{
		config:    DefaultConfig(),
		opener:    uart.NewOpener(),
		enumerate: defaultEnumerator,
		callbacks: &rfidutil.Callbacks{},
		stopped:   make(chan struct{}),
		changed:   make(chan struct{}),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	if err := c.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	c.events = make(chan event, c.config.EventQueueSize)
	c.builder = rfidutil.NewBuilder(c.config.Revision, c.config.Addressing)
	c.dispatcher = rfidutil.NewDispatcher(c.config.Revision, c.callbacks)
	c.prober = rfidutil.NewProber(probeHost{c: c}, &rfidutil.ProbeConfig{
		IdentityMarker:   rfidutil.IdentityMarker,
		HandshakeTimeout: c.config.HandshakeTimeout,
		Revision:         c.config.Revision,
	})
	return c, nil
}

func defaultEnumerator() []string {
	return detection.ListCandidates(detection.DefaultOptions())
}

// Run starts discovery and processes events until ctx is cancelled. It may
// only be called once.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer c.shutdown()

	c.startDiscovery()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-c.events:
			c.handle(ev)
		}
	}
}

// StartDiscovery re-enumerates endpoints and starts a new discovery pass.
// It is ignored while a reader is connected. An exhausted controller reports
// StateDiscovering before StartDiscovery returns, so a following
// WaitConnected waits for the new pass.
func (c *Controller) StartDiscovery() {
	if c.state.CompareAndSwap(int32(StateExhausted), int32(StateDiscovering)) {
		c.notifyChanged()
	}
	c.post(discoverEvent{})
}

// Issue sends cmd to the connected reader. It returns once the frame is
// written; replies arrive through the Callbacks.
func (c *Controller) Issue(ctx context.Context, cmd rfidutil.Command) error {
	if _, err := cmd.Encode(c.config.Revision); err != nil {
		return err
	}
	if c.State() != StateConnected {
		return rfidutil.ErrNotConnected
	}

	reply := make(chan error, 1)
	select {
	case c.events <- issueEvent{cmd: cmd, reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	case <-c.stopped:
		return ErrStopped
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-c.stopped:
		return ErrStopped
	}
}

// Request builds the command for intent and issues it. Invalid params are
// rejected before anything is written.
func (c *Controller) Request(ctx context.Context, intent rfidutil.Intent, params rfidutil.Params) error {
	cmd, err := c.builder.Build(intent, params)
	if err != nil {
		return err
	}
	return c.Issue(ctx, cmd)
}

// ReadUID asks the reader for the UID of the next card
func (c *Controller) ReadUID(ctx context.Context) error {
	return c.Request(ctx, rfidutil.IntentReadUID, rfidutil.Params{})
}

// WriteUID writes uid, given as hex, to the next card
func (c *Controller) WriteUID(ctx context.Context, uid string) error {
	return c.Request(ctx, rfidutil.IntentWriteUID, rfidutil.Params{UID: uid})
}

// ReadSector reads one sector of the next card as text
func (c *Controller) ReadSector(ctx context.Context, sector int) error {
	return c.Request(ctx, rfidutil.IntentReadSector, rfidutil.Params{Sector: sector})
}

// ReadAllSectors dumps every sector of the next card
func (c *Controller) ReadAllSectors(ctx context.Context) error {
	return c.Request(ctx, rfidutil.IntentReadAllSectors, rfidutil.Params{})
}

// WriteSector writes data to one sector of the next card
func (c *Controller) WriteSector(ctx context.Context, sector int, data string) error {
	return c.Request(ctx, rfidutil.IntentWriteSector, rfidutil.Params{Sector: sector, Data: data})
}

// WaitConnected blocks until a reader is confirmed. It fails with
// ErrDiscoveryExhausted when a pass finds nothing and no rescan is configured.
func (c *Controller) WaitConnected(ctx context.Context) error {
	for {
		c.mu.Lock()
		changed := c.changed
		c.mu.Unlock()

		switch c.State() {
		case StateConnected:
			return nil
		case StateExhausted:
			if c.config.RescanInterval == 0 {
				return rfidutil.ErrDiscoveryExhausted
			}
		case StateIdle, StateDiscovering:
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopped:
			return ErrStopped
		}
	}
}

// State returns the current lifecycle state
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Info returns details of the connected session
func (c *Controller) Info() (Info, bool) {
	info := c.info.Load()
	if info == nil {
		return Info{}, false
	}
	return *info, true
}

// SessionID returns the id of the connected session, or "" when disconnected
func (c *Controller) SessionID() string {
	info, _ := c.Info()
	return info.ID
}

// Metrics returns current operational metrics
func (c *Controller) Metrics() Metrics {
	return Metrics{
		Probes:      atomic.LoadInt64(&c.probes),
		Passes:      atomic.LoadInt64(&c.passes),
		Handshakes:  atomic.LoadInt64(&c.handshakes),
		Exhaustions: atomic.LoadInt64(&c.exhaustions),
		Lines:       atomic.LoadInt64(&c.lines),
		Commands:    atomic.LoadInt64(&c.commands),
		Reconnects:  atomic.LoadInt64(&c.reconnects),
	}
}

func (c *Controller) post(ev event) {
	select {
	case c.events <- ev:
	case <-c.stopped:
	}
}

func (c *Controller) setState(s State) {
	c.state.Store(int32(s))
	c.notifyChanged()
}

func (c *Controller) notifyChanged() {
	c.mu.Lock()
	close(c.changed)
	c.changed = make(chan struct{})
	c.mu.Unlock()
}

func (c *Controller) handle(ev event) {
	switch e := ev.(type) {
	case readEvent:
		c.handleRead(e)
	case timerEvent:
		if e.gen != c.timerGen {
			return
		}
		c.prober.HandleTimeout()
		c.afterProbe()
	case issueEvent:
		e.reply <- c.handleIssue(e.cmd)
	case discoverEvent:
		if c.session != nil {
			debugf("discovery ignored while connected to %s", c.SessionID())
			return
		}
		c.startDiscovery()
	case rescanEvent:
		if c.State() == StateExhausted {
			c.startDiscovery()
		}
	default:
		debugf("unknown event %T", ev)
	}
}

func (c *Controller) handleRead(ev readEvent) {
	if ev.gen != c.epGen {
		return
	}

	if c.session != nil {
		if ev.err != nil {
			c.connectionLost(ev.err)
			return
		}
		c.feedSession(ev.data)
		return
	}

	if ev.err != nil {
		c.prober.HandleReadError(ev.err)
	} else {
		c.prober.HandleBytes(ev.data)
	}
	c.afterProbe()
}

func (c *Controller) handleIssue(cmd rfidutil.Command) error {
	if c.session == nil {
		return rfidutil.ErrNotConnected
	}

	data, err := cmd.Encode(c.config.Revision)
	if err != nil {
		return err
	}

	c.dispatcher.Begin(cmd.Kind)
	if err := c.session.transport.Write(data); err != nil {
		c.connectionLost(err)
		return fmt.Errorf("%w: %w", rfidutil.ErrConnectionLost, err)
	}
	atomic.AddInt64(&c.commands, 1)
	debugf("sent %s (% X)", cmd.Kind, data)
	return nil
}

func (c *Controller) startDiscovery() {
	safeTimerStop(c.rescan)
	c.rescan = nil

	c.setState(StateDiscovering)
	c.callbacks.Status(rfidutil.StatusLooking)
	atomic.AddInt64(&c.passes, 1)

	candidates := c.enumerate()
	rfidutil.Logger().Debug().Strs("candidates", candidates).Msg("starting discovery")
	c.prober.Start(candidates)
	c.afterProbe()
}

func (c *Controller) afterProbe() {
	switch c.prober.State() {
	case rfidutil.ProbeConfirmed:
		c.confirm()
	case rfidutil.ProbeExhausted:
		c.exhausted()
	case rfidutil.ProbeIdle, rfidutil.ProbeOpening, rfidutil.ProbeAwaitingHandshake:
	}
}

func (c *Controller) confirm() {
	handoff, err := c.prober.Handoff()
	if err != nil {
		rfidutil.Logger().Error().Err(err).Msg("handoff failed")
		return
	}

	c.session = &deviceSession{transport: handoff.Transport}
	c.info.Store(&Info{
		ID:          uuid.NewString(),
		Path:        handoff.Path,
		Firmware:    handoff.Identity.Version,
		ConnectedAt: time.Now(),
	})
	atomic.AddInt64(&c.handshakes, 1)

	rfidutil.Logger().Info().
		Str("path", handoff.Path).
		Str("firmware", handoff.Identity.Version).
		Str("session", c.SessionID()).
		Msg("reader connected")
	c.callbacks.Status(rfidutil.StatusConnected)
	c.setState(StateConnected)

	if len(handoff.Pending) > 0 {
		c.feedSession(handoff.Pending)
	}
}

func (c *Controller) exhausted() {
	c.prober.Stop()
	atomic.AddInt64(&c.exhaustions, 1)

	rfidutil.Logger().Warn().Err(c.prober.LastError()).Msg("reader not found")
	c.callbacks.Status(rfidutil.StatusNotFound)
	c.setState(StateExhausted)

	if interval := c.config.RescanInterval; interval > 0 {
		c.rescan = time.AfterFunc(interval, func() {
			c.post(rescanEvent{})
		})
	}
}

func (c *Controller) feedSession(data []byte) {
	for _, line := range c.session.buf.Feed(data) {
		atomic.AddInt64(&c.lines, 1)
		c.dispatcher.Dispatch(line)
	}
}

func (c *Controller) connectionLost(err error) {
	rfidutil.Logger().Warn().Err(err).Str("session", c.SessionID()).Msg("connection lost")
	c.closeSession()
	atomic.AddInt64(&c.reconnects, 1)
	c.startDiscovery()
}

func (c *Controller) closeSession() {
	if c.session == nil {
		return
	}
	if err := c.session.transport.Close(); err != nil {
		debugf("close %s: %v", c.session.transport.Path(), err)
	}
	c.session = nil
	c.epGen++
	c.info.Store(nil)
}

func (c *Controller) shutdown() {
	safeTimerStop(c.rescan)
	c.rescan = nil
	c.prober.Stop()
	c.closeSession()
	c.setState(StateIdle)
	close(c.stopped)
}

// probeHost opens endpoints and arms timers for the Prober on behalf of the
// controller loop.
type probeHost struct {
	c *Controller
}

func (h probeHost) Open(path string) (rfidutil.Transport, error) {
	c := h.c
	c.epGen++
	gen := c.epGen
	atomic.AddInt64(&c.probes, 1)
	transport, err := c.opener.Open(path, c.readFunc(gen))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return transport, nil
}

func (h probeHost) ArmTimer(d time.Duration) func() {
	c := h.c
	c.timerGen++
	gen := c.timerGen
	timer := time.AfterFunc(d, func() {
		c.post(timerEvent{gen: gen})
	})
	return func() {
		safeTimerStop(timer)
		if c.timerGen == gen {
			c.timerGen++
		}
	}
}

func (c *Controller) readFunc(gen uint64) rfidutil.ReadFunc {
	return func(data []byte, err error) {
		c.post(readEvent{gen: gen, data: append([]byte(nil), data...), err: err})
	}
}
