// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

// Package dueb drives a DECT ULE expansion board over its CMND byte stream.
// A Client owns one connection, decodes everything the board says in a
// background reader, and offers synchronous request/response operations the
// way a provisioning script would use them.
package dueb

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Thermoquad/ulescope/pkg/cmnd"
	"go.uber.org/zap"
)

// DefaultTimeout bounds one request/response exchange with the board.
// Boards answer well under a second; resets take a few.
const DefaultTimeout = 4 * time.Second

// Client is a synchronous session with one expansion board. Operations may
// be called from multiple goroutines, but responses are matched by service
// and message id only, so overlapping requests of the same kind will race.
type Client struct {
	conn io.ReadWriteCloser
	log  *zap.Logger

	writeMu sync.Mutex

	messages  chan *cmnd.Message
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient starts a session over the given connection. A nil logger
// disables logging. The background reader runs until Close or a fatal
// read error.
func NewClient(conn io.ReadWriteCloser, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		conn:     conn,
		log:      log,
		messages: make(chan *cmnd.Message, 32),
		done:     make(chan struct{}),
	}
	go c.readerLoop()
	return c
}

// Close stops the reader and closes the underlying connection
func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return c.conn.Close()
}

// readerLoop decodes the incoming byte stream and publishes messages.
// Frame errors are logged and the framer hunts for the next sync sequence.
func (c *Client) readerLoop() {
	framer := cmnd.NewFramer()
	buf := make([]byte, 128)

	for {
		select {
		case <-c.done:
			return
		default:
		}

		n, err := c.conn.Read(buf)
		if err != nil {
			select {
			case <-c.done:
			default:
				c.log.Warn("read failed, stopping session", zap.Error(err))
			}
			c.closeOnce.Do(func() { close(c.done) })
			return
		}

		for i := 0; i < n; i++ {
			m, decodeErr := framer.DecodeByte(buf[i])
			if decodeErr != nil {
				c.log.Warn("frame error", zap.Error(decodeErr))
				continue
			}
			if m == nil {
				continue
			}

			c.log.Debug("received message",
				zap.String("service", cmnd.ServiceName(m.ServiceID())),
				zap.String("message", cmnd.MessageName(m.ServiceID(), m.MessageID())),
				zap.Uint8("unit", m.UnitID()),
				zap.Uint16("length", m.DataLength()),
			)

			select {
			case c.messages <- m:
			case <-c.done:
				return
			}
		}
	}
}

// Send encodes a message and writes its frame to the connection
func (c *Client) Send(m *cmnd.Message) error {
	frame, err := cmnd.NewEncoder().Encode(m)
	if err != nil {
		return fmt.Errorf("encode %s: %w", m, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	select {
	case <-c.done:
		return fmt.Errorf("send %s: %w", m, ErrClosed)
	default:
	}

	if _, err := c.conn.Write(frame); err != nil {
		return fmt.Errorf("send %s: %w", m, err)
	}

	c.log.Debug("sent message",
		zap.String("service", cmnd.ServiceName(m.ServiceID())),
		zap.String("message", cmnd.MessageName(m.ServiceID(), m.MessageID())),
		zap.Uint8("unit", m.UnitID()),
		zap.Int("frame_bytes", len(frame)),
	)
	return nil
}

// WaitFor returns the next message matching the given service and message
// id. Non-matching traffic is discarded; unsolicited indications arriving
// between operations do not satisfy a later wait for a different message.
func (c *Client) WaitFor(ctx context.Context, serviceID cmnd.ServiceID, messageID byte) (*cmnd.Message, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s %s: %w",
				cmnd.ServiceName(serviceID), cmnd.MessageName(serviceID, messageID), ctx.Err())
		case <-c.done:
			return nil, fmt.Errorf("waiting for %s %s: %w",
				cmnd.ServiceName(serviceID), cmnd.MessageName(serviceID, messageID), ErrClosed)
		case m := <-c.messages:
			if m.Is(serviceID, messageID) {
				return m, nil
			}
			c.log.Debug("discarding message while waiting",
				zap.String("got", m.String()),
				zap.String("want", fmt.Sprintf("%s %s",
					cmnd.ServiceName(serviceID), cmnd.MessageName(serviceID, messageID))),
			)
		}
	}
}

// Request sends a message and waits for the matching response
func (c *Client) Request(ctx context.Context, m *cmnd.Message, wantService cmnd.ServiceID, wantMessage byte) (*cmnd.Message, error) {
	if err := c.Send(m); err != nil {
		return nil, err
	}
	return c.WaitFor(ctx, wantService, wantMessage)
}
