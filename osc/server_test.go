package osc

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"
)

type dummyConn struct {
	net.Conn
	m []byte
}

func (d *dummyConn) ReadFrom(buf []byte) (n int, addr net.Addr, err error) {
	n = copy(buf, d.m)
	return
}

func (d *dummyConn) WriteTo(_ []byte, _ net.Addr) (n int, err error) { return }

func (d *dummyConn) Close() (err error) { return }

func (d *dummyConn) LocalAddr() (addr net.Addr) { return }

func (d *dummyConn) SetDeadline(_ time.Time) (err error) { return }

func (d *dummyConn) SetReadDeadline(_ time.Time) (err error) { return }

func (d *dummyConn) SetWriteDeadline(_ time.Time) (err error) { return }

// listen opens a loopback UDP socket on an ephemeral port and a client dialed to it.
func listen(t *testing.T) (net.PacketConn, *Client) {
	t.Helper()
	c, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })

	client, err := Dial(c.LocalAddr().String())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { client.Close() })
	return c, client
}

func sendRaw(t *testing.T, to net.Addr, data []byte) {
	t.Helper()
	conn, err := net.Dial("udp", to.String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	if _, err := conn.Write(data); err != nil {
		t.Fatal(err)
	}
}

func TestServerMessageReceiving(t *testing.T) {
	c, client := listen(t)
	server := &Server{ReadTimeout: 2 * time.Second}

	msg := NewMessage("/address/test", int32(1122), int32(3344))
	for i := 0; i < 3; i++ {
		if err := client.Send(msg); err != nil {
			t.Fatal(err)
		}
	}

	for i := 0; i < 3; i++ {
		packet, _, err := server.ReceivePacket(c)
		if err != nil {
			t.Fatalf("Server error: %v", err)
		}
		got, ok := packet.(*Message)
		if !ok {
			t.Fatalf("expected *Message, got %T", packet)
		}
		if len(got.Arguments) != 2 {
			t.Errorf("Argument length should be 2 and is: %d", len(got.Arguments))
		}
		if got.Arguments[0].(int32) != 1122 || got.Arguments[1].(int32) != 3344 {
			t.Errorf("unexpected arguments: %v", got.Arguments)
		}
	}
}

func TestReadTimeout(t *testing.T) {
	c, client := listen(t)
	server := &Server{ReadTimeout: 50 * time.Millisecond}

	_, _, err := server.ReceivePacket(c)
	var ne net.Error
	if !errors.As(err, &ne) || !ne.Timeout() {
		t.Fatalf("expected a timeout error, got %v", err)
	}

	// Next receive should get it
	if err := client.Send(NewMessage("/address/test2")); err != nil {
		t.Fatal(err)
	}
	server.ReadTimeout = 2 * time.Second
	p, _, err := server.ReceivePacket(c)
	if err != nil {
		t.Fatalf("server error: %v", err)
	}
	if got, want := p.(*Message).Address, "/address/test2"; got != want {
		t.Errorf("wrong address; got = %s, want = %s", got, want)
	}
}

func TestServe_SkipsMalformedPackets(t *testing.T) {
	c, client := listen(t)

	var mu sync.Mutex
	var decodeErrors int
	received := make(chan *Message, 1)
	server := &Server{ErrorHandler: func(err error, _ net.Addr) {
		if errors.Is(err, ErrMalformed) {
			mu.Lock()
			decodeErrors++
			mu.Unlock()
		}
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx, c, func(p Packet, _ net.Addr) {
			received <- p.(*Message)
		})
	}()

	sendRaw(t, c.LocalAddr(), []byte{0xde, 0xad, 0xbe, 0xef, 0x01, 0x02, 0x03})
	if err := client.Send(NewMessage("/ok")); err != nil {
		t.Fatal(err)
	}

	select {
	case m := <-received:
		if m.Address != "/ok" {
			t.Errorf("got address %s, want /ok", m.Address)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the well-formed packet")
	}

	mu.Lock()
	if decodeErrors != 1 {
		t.Errorf("expected 1 decode error, got %d", decodeErrors)
	}
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() after cancel = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServe_ReturnsSocketErrors(t *testing.T) {
	c, _ := listen(t)
	server := &Server{}

	done := make(chan error, 1)
	go func() {
		done <- server.Serve(context.Background(), c, func(Packet, net.Addr) {})
	}()

	time.Sleep(20 * time.Millisecond)
	c.Close()

	select {
	case err := <-done:
		if err == nil {
			t.Error("Serve() on a closed connection should fail")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after the connection closed")
	}
}

func TestServe_RecoversHandlerPanic(t *testing.T) {
	c, client := listen(t)
	server := &Server{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan string, 2)
	go func() {
		_ = server.Serve(ctx, c, func(p Packet, _ net.Addr) {
			m := p.(*Message)
			if m.Address == "/panic" {
				panic("boom")
			}
			received <- m.Address
		})
	}()

	_ = client.Send(NewMessage("/panic"))
	_ = client.Send(NewMessage("/after"))

	select {
	case addr := <-received:
		if addr != "/after" {
			t.Errorf("got %s, want /after", addr)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server stopped handling packets after a panic")
	}
}

func BenchmarkReceivePacket(b *testing.B) {
	d := &dummyConn{m: msg}
	s := &Server{}
	var p Packet
	b.ReportAllocs()
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		p, _, _ = s.ReceivePacket(d)
	}
	result = p
}
