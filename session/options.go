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
	"errors"
	"time"

	rfidutil "github.com/lxxxxl/rfid-util"
)

// Config contains configuration options for the Controller
type Config struct {
	// HandshakeTimeout bounds the wait for the VersionCheck reply per candidate
	HandshakeTimeout time.Duration
	// RescanInterval restarts discovery after an exhausted pass; 0 disables
	RescanInterval time.Duration
	// EventQueueSize is the capacity of the controller's event channel
	EventQueueSize int
	// Revision selects the firmware tag mapping
	Revision rfidutil.Revision
	// Addressing selects how WriteSector addresses the card
	Addressing rfidutil.WriteAddressing
}

// DefaultConfig returns default controller configuration
func DefaultConfig() *Config {
	return &Config{
		HandshakeTimeout: rfidutil.DefaultHandshakeTimeout,
		RescanInterval:   0,
		EventQueueSize:   64,
		Revision:         rfidutil.RevisionSectorDump,
		Addressing:       rfidutil.AddressBlock,
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.HandshakeTimeout <= 0 {
		return errors.New("handshake timeout must be positive")
	}
	if c.RescanInterval < 0 {
		return errors.New("rescan interval cannot be negative")
	}
	if c.EventQueueSize <= 0 {
		return errors.New("event queue size must be positive")
	}
	return nil
}

// Option configures a Controller
type Option func(*Controller) error

// WithConfig replaces the whole configuration
func WithConfig(config *Config) Option {
	return func(c *Controller) error {
		if config == nil {
			return errors.New("config cannot be nil")
		}
		cfg := *config
		c.config = &cfg
		return nil
	}
}

// WithOpener sets how candidate endpoints are opened
func WithOpener(opener rfidutil.Opener) Option {
	return func(c *Controller) error {
		if opener == nil {
			return errors.New("opener cannot be nil")
		}
		c.opener = opener
		return nil
	}
}

// WithEnumerator sets how candidate endpoints are listed
func WithEnumerator(enumerate Enumerator) Option {
	return func(c *Controller) error {
		if enumerate == nil {
			return errors.New("enumerator cannot be nil")
		}
		c.enumerate = enumerate
		return nil
	}
}

// WithCallbacks sets the presentation layer notifications
func WithCallbacks(callbacks rfidutil.Callbacks) Option {
	return func(c *Controller) error {
		c.callbacks = &callbacks
		return nil
	}
}

// WithHandshakeTimeout sets the per candidate handshake timeout
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(c *Controller) error {
		c.config.HandshakeTimeout = timeout
		return nil
	}
}

// WithRescanInterval enables automatic rediscovery after exhaustion
func WithRescanInterval(interval time.Duration) Option {
	return func(c *Controller) error {
		c.config.RescanInterval = interval
		return nil
	}
}

// WithRevision sets the firmware tag mapping
func WithRevision(revision rfidutil.Revision) Option {
	return func(c *Controller) error {
		c.config.Revision = revision
		return nil
	}
}

// WithAddressing sets the WriteData addressing mode
func WithAddressing(addressing rfidutil.WriteAddressing) Option {
	return func(c *Controller) error {
		c.config.Addressing = addressing
		return nil
	}
}
