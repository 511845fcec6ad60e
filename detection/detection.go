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

// Package detection lists serial endpoints that may host the reader.
package detection

import (
	"path/filepath"
	"strings"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Port describes one serial endpoint found on the host
type Port struct {
	Path         string
	VIDPID       string
	Product      string
	SerialNumber string
	IsUSB        bool
}

// Options filters the endpoints returned by List
type Options struct {
	// IgnorePaths lists endpoints that must never be probed
	IgnorePaths []string
	// Blocklist lists USB devices (VID:PID) that must never be probed
	Blocklist []string
	// USBOnly skips endpoints without USB metadata
	USBOnly bool
}

// DefaultOptions returns the default filters
func DefaultOptions() *Options {
	return &Options{
		Blocklist: DefaultBlocklist(),
	}
}

// Enumeration backends, replaced in tests
var (
	listDetailed = enumerator.GetDetailedPortsList
	listNames    = serial.GetPortsList
)

// List returns the serial endpoints present right now. Enumeration failures
// yield an empty list.
func List(opts *Options) []Port {
	if opts == nil {
		opts = DefaultOptions()
	}

	ports := enumerate()
	ports = preferCallout(ports)

	result := make([]Port, 0, len(ports))
	for _, port := range ports {
		if !includePort(port, opts) {
			continue
		}
		result = append(result, port)
	}
	return result
}

// ListCandidates returns the paths of List in enumeration order
func ListCandidates(opts *Options) []string {
	ports := List(opts)
	paths := make([]string, 0, len(ports))
	for _, port := range ports {
		paths = append(paths, port.Path)
	}
	return paths
}

func enumerate() []Port {
	details, err := listDetailed()
	if err == nil {
		ports := make([]Port, 0, len(details))
		for _, d := range details {
			if d == nil || d.Name == "" {
				continue
			}
			port := Port{
				Path:         d.Name,
				IsUSB:        d.IsUSB,
				Product:      d.Product,
				SerialNumber: d.SerialNumber,
			}
			if d.IsUSB {
				port.VIDPID = formatVIDPID(d.VID, d.PID)
			}
			ports = append(ports, port)
		}
		return ports
	}

	names, err := listNames()
	if err != nil {
		return nil
	}
	ports := make([]Port, 0, len(names))
	for _, name := range names {
		if name != "" {
			ports = append(ports, Port{Path: name})
		}
	}
	return ports
}

func includePort(port Port, opts *Options) bool {
	if IsPathIgnored(port.Path, opts.IgnorePaths) {
		return false
	}
	if opts.USBOnly && !port.IsUSB {
		return false
	}
	if port.VIDPID != "" && IsBlocked(port.VIDPID, opts.Blocklist) {
		return false
	}
	return !isSystemPort(filepath.Base(port.Path))
}

// isSystemPort filters endpoints that are never a USB serial adapter
func isSystemPort(name string) bool {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "bluetooth") {
		return true
	}
	for _, pattern := range []string{"console", "debug-console", "wlan-debug"} {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// preferCallout drops macOS /dev/tty.* entries that have a /dev/cu.* twin
func preferCallout(ports []Port) []Port {
	callout := make(map[string]bool)
	for _, port := range ports {
		if strings.HasPrefix(port.Path, "/dev/cu.") {
			callout[strings.TrimPrefix(port.Path, "/dev/cu.")] = true
		}
	}
	if len(callout) == 0 {
		return ports
	}

	result := ports[:0:0]
	for _, port := range ports {
		if name, ok := strings.CutPrefix(port.Path, "/dev/tty."); ok && callout[name] {
			continue
		}
		result = append(result, port)
	}
	return result
}
