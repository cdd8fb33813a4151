/*
 * Copyright (c) 2026 CrabDB Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Package discovery announces a CrabDB server on the local network via mDNS
and finds running servers from the client side.

Servers advertise as _crabdb._tcp.local. with the protocol port and a
version TXT record, so `crab-cli -discover` works without any
configuration.
*/
package discovery

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service type for CrabDB servers.
const ServiceType = "_crabdb._tcp"

// DefaultTimeout is the default discovery query timeout.
const DefaultTimeout = 3 * time.Second

// Server is a discoverable server found on the network.
type Server struct {
	Instance string
	Addr     string
	Port     int
	Version  string
}

// Announcer keeps one server advertised until Stop.
type Announcer struct {
	server *mdns.Server
}

// Announce starts advertising this server on the local network.
func Announce(port int, version string) (*Announcer, error) {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "crabdb"
	}
	instance := fmt.Sprintf("%s-%d", hostname, port)

	service, err := mdns.NewMDNSService(
		instance,    // Instance name
		ServiceType, // Service type
		"",          // Domain (empty = .local)
		"",          // Host name (empty = auto)
		port,        // Port
		nil,         // IPs (auto)
		[]string{fmt.Sprintf("version=%s", version)},
	)
	if err != nil {
		return nil, fmt.Errorf("create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("start mDNS server: %w", err)
	}
	return &Announcer{server: server}, nil
}

// Stop withdraws the advertisement.
func (a *Announcer) Stop() error {
	return a.server.Shutdown()
}

// Discover queries the local network for CrabDB servers for up to timeout
// (DefaultTimeout when zero).
func Discover(timeout time.Duration) ([]Server, error) {
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	entriesCh := make(chan *mdns.ServiceEntry, 10)
	done := make(chan []Server, 1)
	go func() {
		var servers []Server
		for entry := range entriesCh {
			servers = append(servers, parseEntry(entry))
		}
		done <- servers
	}()

	params := &mdns.QueryParam{
		Service:             ServiceType,
		Domain:              "local",
		Timeout:             timeout,
		Entries:             entriesCh,
		WantUnicastResponse: true,
	}
	if err := mdns.Query(params); err != nil {
		close(entriesCh)
		return nil, fmt.Errorf("mDNS query failed: %w", err)
	}
	close(entriesCh)
	return <-done, nil
}

// parseEntry converts one mDNS answer into a Server.
func parseEntry(entry *mdns.ServiceEntry) Server {
	s := Server{
		Instance: entry.Name,
		Port:     entry.Port,
	}
	if entry.AddrV4 != nil {
		s.Addr = fmt.Sprintf("%s:%d", entry.AddrV4, entry.Port)
	} else if entry.AddrV6 != nil {
		s.Addr = fmt.Sprintf("[%s]:%d", entry.AddrV6, entry.Port)
	}
	for _, txt := range entry.InfoFields {
		if v, ok := strings.CutPrefix(txt, "version="); ok {
			s.Version = v
		}
	}
	return s
}
