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
Package server implements CrabDB's TCP front end.

Connection Lifecycle:
=====================

 1. The accept loop hands each connection to the worker pool
 2. A worker runs the session: read request, dispatch, write response
 3. The session ends on CLOSE, EOF, or an unframeable stream

Requests that parse but fail (unknown command payloads, storage errors)
are answered with the protocol's error marker and the session continues;
once the stream can no longer be trusted to be frame-aligned (oversized
frame, short read) the connection is dropped.

Reads go straight to the store; GET applies link resolution when the
client asked for it. SET and DELETE answer with the previous object, per
the Store contract.
*/
package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"crabdb/internal/engine"
	"crabdb/internal/logging"
	"crabdb/internal/metrics"
	"crabdb/internal/object"
	"crabdb/internal/pool"
	"crabdb/internal/protocol"
	"crabdb/internal/storage"
)

// Options configures a Server.
type Options struct {
	// Workers is the connection worker pool size. Zero means
	// pool.DefaultWorkers.
	Workers int

	// Metrics receives operation counters. Optional.
	Metrics *metrics.Metrics
}

// Server accepts binary-protocol connections and serves them from a Store.
type Server struct {
	addr     string
	store    storage.Store
	resolver *engine.Resolver
	workers  *pool.WorkerPool
	metrics  *metrics.Metrics
	log      *logging.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	closed   bool

	sessions sync.WaitGroup
}

// New creates a Server for addr backed by store.
func New(addr string, store storage.Store, opts Options) *Server {
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	return &Server{
		addr:     addr,
		store:    store,
		resolver: engine.NewResolver(store),
		workers:  pool.New(opts.Workers),
		metrics:  m,
		log:      logging.NewLogger("server"),
		conns:    make(map[net.Conn]struct{}),
	}
}

// Start binds the listener and begins accepting connections in the
// background. Use Addr to learn the bound address when addr had port 0.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.log.Error("Failed to listen", "addr", s.addr, "error", err)
		return err
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.log.Info("Listening", "addr", ln.Addr().String())
	go s.acceptLoop(ln)
	return nil
}

// Addr returns the listener's address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// acceptLoop accepts until the listener is closed.
func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return
			}
			s.log.Warn("Accept error", "error", err)
			continue
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.sessions.Add(1)
		err = s.workers.Submit(func() {
			defer s.sessions.Done()
			s.serveConn(conn)
		})
		if err != nil {
			s.sessions.Done()
			s.forget(conn)
			conn.Close()
			return
		}
	}
}

// forget removes a connection from the tracked set.
func (s *Server) forget(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

// Stop closes the listener and every open connection, then waits for
// sessions and workers to wind down.
func (s *Server) Stop() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	ln := s.listener
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
	}
	s.sessions.Wait()
	s.workers.Stop()
	s.log.Info("Server stopped")
	return err
}

// serveConn runs one session: a loop of request frames until the client
// closes or the stream breaks.
func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()
	defer s.forget(conn)

	s.metrics.SessionStarted()
	defer s.metrics.SessionEnded()

	log := s.log.With("client", conn.RemoteAddr().String())
	log.Debug("Session started")

	for {
		req, err := protocol.ReadRequest(conn)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				log.Debug("Session closed by client")
			case errors.Is(err, protocol.ErrMalformed), errors.Is(err, protocol.ErrUnknownCommand):
				// The frame was consumed whole; the stream is still
				// aligned, so answer the error and keep the session.
				log.Warn("Malformed request", "error", err)
				s.metrics.RecordError()
				if protocol.WriteError(conn) == nil {
					continue
				}
			default:
				log.Warn("Session read failed", "error", err)
			}
			return
		}

		if req.Command == protocol.CmdClose {
			log.Debug("Session closed")
			return
		}

		result, err := s.dispatch(req)
		if err != nil {
			log.Error("Command failed", "op", commandName(req.Command), "key", req.Key, "error", err)
			s.metrics.RecordError()
			if protocol.WriteError(conn) != nil {
				return
			}
			continue
		}

		log.Debug("Command", "op", commandName(req.Command), "key", req.Key)
		if err := protocol.WriteResponse(conn, result); err != nil {
			log.Warn("Session write failed", "error", err)
			return
		}
	}
}

// dispatch applies one request to the store and returns the response
// object.
func (s *Server) dispatch(req *protocol.Request) (object.Object, error) {
	switch req.Command {
	case protocol.CmdGet:
		s.metrics.RecordGet()
		obj, err := s.store.Get(req.Key)
		if err != nil {
			return object.Object{}, err
		}
		if req.LinkDepth > 0 {
			return s.resolver.Resolve(obj, req.LinkDepth)
		}
		return obj, nil

	case protocol.CmdSet:
		s.metrics.RecordSet()
		return s.store.Put(req.Key, req.Object)

	case protocol.CmdDelete:
		s.metrics.RecordDelete()
		return s.store.Remove(req.Key)

	default:
		return object.Object{}, fmt.Errorf("%w: %d", protocol.ErrUnknownCommand, req.Command)
	}
}

// commandName names a command byte for logging.
func commandName(cmd byte) string {
	switch cmd {
	case protocol.CmdGet:
		return "GET"
	case protocol.CmdSet:
		return "SET"
	case protocol.CmdDelete:
		return "DELETE"
	case protocol.CmdClose:
		return "CLOSE"
	default:
		return "UNKNOWN"
	}
}
