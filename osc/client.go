package osc

import (
	"fmt"
	"net"
)

// Client enables you to send OSC Packets to a specified server. It holds a
// single connected UDP socket bound to an ephemeral local port.
type Client struct {
	conn *net.UDPConn
}

// Dial resolves addr once and creates a new OSC Client connected to it.
func Dial(addr string) (*Client, error) {
	a, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}

	conn, err := net.DialUDP("udp", nil, a)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Send encodes packet and writes it as one datagram.
func (c *Client) Send(packet Packet) error {
	data := getBuffer()
	defer putBuffer(data)

	if err := packet.LightMarshalBinary(data); err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	_, err := c.conn.Write(data.Bytes())
	return err
}

// LocalAddr returns the address of the client's socket.
func (c *Client) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// RemoteAddr returns the address packets are sent to.
func (c *Client) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Close closes the connection to the server.
func (c *Client) Close() error {
	return c.conn.Close()
}
