//go:build !tinygo

package hal

import (
	"bufio"
	"errors"
	"net"
	"sync"
)

// hostNetwork accepts TCP clients and turns each inbound line into one
// Recv packet. Send answers on the connection the last packet arrived
// from, so request/reply pairs stay on the same client.
type hostNetwork struct {
	ln    net.Listener
	lines chan hostNetLine

	mu   sync.Mutex
	last net.Conn
}

type hostNetLine struct {
	conn net.Conn
	data []byte
}

func newHostNetwork(addr string) (*hostNetwork, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	n := &hostNetwork{
		ln:    ln,
		lines: make(chan hostNetLine, 64),
	}
	go n.acceptLoop()
	return n, nil
}

func (n *hostNetwork) acceptLoop() {
	for {
		conn, err := n.ln.Accept()
		if err != nil {
			close(n.lines)
			return
		}
		go n.readLoop(conn)
	}
}

func (n *hostNetwork) readLoop(conn net.Conn) {
	defer conn.Close()

	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 256), 256)
	for sc.Scan() {
		line := append([]byte(nil), sc.Bytes()...)
		select {
		case n.lines <- hostNetLine{conn: conn, data: line}:
		default:
			// Drop when the OS is not keeping up.
		}
	}
}

func (n *hostNetwork) Recv(pkt []byte) (int, error) {
	l, ok := <-n.lines
	if !ok {
		return 0, ErrNotImplemented
	}

	n.mu.Lock()
	n.last = l.conn
	n.mu.Unlock()

	return copy(pkt, l.data), nil
}

func (n *hostNetwork) Send(pkt []byte) error {
	n.mu.Lock()
	conn := n.last
	n.mu.Unlock()
	if conn == nil {
		return errors.New("no peer")
	}

	buf := make([]byte, 0, len(pkt)+1)
	buf = append(buf, pkt...)
	buf = append(buf, '\n')
	_, err := conn.Write(buf)
	return err
}
