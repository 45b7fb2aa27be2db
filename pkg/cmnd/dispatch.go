// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmnd

import "sync"

// Handler consumes one decoded message
type Handler func(m *Message)

type dispatchKey struct {
	service   ServiceID
	messageID byte
}

// Dispatcher routes decoded messages to registered handlers. Routing tries
// the exact (service, message) handler first, then the service handler, then
// the default handler. Messages nobody claims are dropped.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[dispatchKey]Handler
	services map[ServiceID]Handler
	fallback Handler
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[dispatchKey]Handler),
		services: make(map[ServiceID]Handler),
	}
}

// Handle registers a handler for one message of one service.
// A nil handler removes the registration.
func (d *Dispatcher) Handle(service ServiceID, messageID byte, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := dispatchKey{service: service, messageID: messageID}
	if handler == nil {
		delete(d.handlers, key)
		return
	}
	d.handlers[key] = handler
}

// HandleService registers a handler for every message of one service.
// A nil handler removes the registration.
func (d *Dispatcher) HandleService(service ServiceID, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if handler == nil {
		delete(d.services, service)
		return
	}
	d.services[service] = handler
}

// Default registers the handler for messages no other registration claims
func (d *Dispatcher) Default(handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fallback = handler
}

// Dispatch routes one message and reports whether any handler consumed it
func (d *Dispatcher) Dispatch(m *Message) bool {
	d.mu.RLock()
	handler, ok := d.handlers[dispatchKey{service: m.ServiceID(), messageID: m.MessageID()}]
	if !ok {
		handler, ok = d.services[m.ServiceID()]
	}
	if !ok && d.fallback != nil {
		handler, ok = d.fallback, true
	}
	d.mu.RUnlock()

	if !ok {
		return false
	}
	handler(m)
	return true
}
