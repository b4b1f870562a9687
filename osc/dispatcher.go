package osc

import (
	"fmt"
	"net"
	"strings"
)

// Method is an interface for OSC Methods.
type Method interface {
	HandleMessage(msg *Message)
}

// MethodFunc implements the Method interface. Type definition for an OSC Method function.
type MethodFunc func(msg *Message)

// HandleMessage calls itself with the given OSC Message. Implements the Method interface.
func (f MethodFunc) HandleMessage(msg *Message) {
	f(msg)
}

// Dispatcher routes messages to Methods registered for their exact address.
// Bundles are walked one level deep: direct message children are dispatched
// in element order, bundles inside a bundle are handed to Nested and their
// contents are not dispatched.
type Dispatcher struct {
	// NotFound receives messages whose address has no Method. Nil drops them.
	NotFound Method

	// Nested receives bundles found inside a bundle. Nil drops them.
	Nested func(b *Bundle)

	methods map[string]Method
}

// Handle registers method for the exact OSC address addr.
func (d *Dispatcher) Handle(addr string, method Method) error {
	if d.methods == nil {
		d.methods = make(map[string]Method)
	}

	if !strings.HasPrefix(addr, "/") {
		return fmt.Errorf("Handle: OSC address %q must start with '/'", addr)
	}

	if strings.ContainsAny(addr, "*?,[]{}# ") {
		return fmt.Errorf("Handle: OSC address may not contain any characters in \"*?,[]{}# \"")
	}

	if _, ok := d.methods[addr]; ok {
		return fmt.Errorf("Handle: OSC method for %s exists already", addr)
	}

	d.methods[addr] = method
	return nil
}

// HandleFunc allows you to just pass a MethodFunc.
func (d *Dispatcher) HandleFunc(addr string, method MethodFunc) error {
	return d.Handle(addr, method)
}

// Dispatch dispatches an OSC packet. It has the Handler signature so it can
// be passed to Server.Serve directly; the source address is ignored.
func (d *Dispatcher) Dispatch(packet Packet, _ net.Addr) {
	switch p := packet.(type) {
	case *Message:
		d.dispatchMessage(p)

	case *Bundle:
		for _, elem := range p.Elements {
			switch e := elem.(type) {
			case *Message:
				d.dispatchMessage(e)
			case *Bundle:
				if d.Nested != nil {
					d.Nested(e)
				}
			}
		}
	}
}

func (d *Dispatcher) dispatchMessage(msg *Message) {
	if method, ok := d.methods[msg.Address]; ok {
		method.HandleMessage(msg)
		return
	}
	if d.NotFound != nil {
		d.NotFound.HandleMessage(msg)
	}
}
