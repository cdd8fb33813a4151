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
Package client is the Go client for CrabDB's binary protocol.

	c, err := client.Connect("localhost:7227")
	if err != nil {
	    return err
	}
	defer c.Close()

	prev, err := c.Set("greeting", obj)
	val, err := c.Get("greeting")
	val, err = c.GetWithLinks("profile", 3)

A Client drives one connection and is not safe for concurrent use; open
one client per goroutine.
*/
package client

import (
	"net"
	"time"

	"crabdb/internal/object"
	"crabdb/internal/protocol"
)

// DefaultDialTimeout bounds connection establishment.
const DefaultDialTimeout = 10 * time.Second

// Client is one connection to a CrabDB server.
type Client struct {
	conn net.Conn
}

// Connect dials a server.
func Connect(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, DefaultDialTimeout)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

// roundTrip sends one request and reads its response.
func (c *Client) roundTrip(req *protocol.Request) (object.Object, error) {
	if err := protocol.WriteRequest(c.conn, req); err != nil {
		return object.Object{}, err
	}
	return protocol.ReadResponse(c.conn)
}

// Get returns the object bound to key, or Null.
func (c *Client) Get(key string) (object.Object, error) {
	return c.roundTrip(&protocol.Request{Command: protocol.CmdGet, Key: key})
}

// GetWithLinks returns the object bound to key with links resolved up to
// depth levels.
func (c *Client) GetWithLinks(key string, depth int) (object.Object, error) {
	return c.roundTrip(&protocol.Request{Command: protocol.CmdGet, Key: key, LinkDepth: depth})
}

// Set binds key to obj and returns the previous object, or Null.
func (c *Client) Set(key string, obj object.Object) (object.Object, error) {
	return c.roundTrip(&protocol.Request{Command: protocol.CmdSet, Key: key, Object: obj})
}

// Delete unbinds key and returns the removed object, or Null.
func (c *Client) Delete(key string) (object.Object, error) {
	return c.roundTrip(&protocol.Request{Command: protocol.CmdDelete, Key: key})
}

// Close tells the server the session is over and closes the connection.
func (c *Client) Close() error {
	// Best effort: the server also handles a bare disconnect.
	protocol.WriteRequest(c.conn, &protocol.Request{Command: protocol.CmdClose})
	return c.conn.Close()
}
