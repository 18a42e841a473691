package singleinstance

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"time"
)

const (
	residentHost   = "127.0.0.1"
	pingRequest    = "PING\n"
	pongResponse   = "PONG\n"
	captureRequest = "CAPTURE\n"
	okResponse     = "OK\n"
	busyResponse   = "BUSY\n"
	errResponse    = "ERROR\n"
)

type tcpServer struct {
	lis      net.Listener
	incoming chan *tcpConn
	port     int
}

func newTcpServer() Server { return &tcpServer{incoming: make(chan *tcpConn, 4)} }

// Start binds ONLY the start port of the configured range. If occupied, fail.
func (s *tcpServer) Start(ctx context.Context) error {
	if s.lis != nil {
		return nil
	}
	start, _ := getPortRange()
	addr := fmt.Sprintf("%s:%d", residentHost, start)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("singleinstance: failed to bind %s: %v", addr, err)
		return err
	}
	s.lis = lis
	s.port = start
	log.Printf("singleinstance: listening on %s", addr)
	go s.acceptLoop(ctx)
	return nil
}

func (s *tcpServer) Port() int { return s.port }

func (s *tcpServer) acceptLoop(ctx context.Context) {
	for {
		c, err := s.lis.Accept()
		if err != nil {
			return
		}
		remote := c.RemoteAddr().String()
		_ = c.SetDeadline(time.Now().Add(3 * time.Second))
		br := bufio.NewReader(c)
		line, _ := br.ReadString('\n')
		bw := bufio.NewWriter(c)
		if line == pingRequest {
			log.Printf("singleinstance: PING from %s -> PONG", remote)
			_, _ = bw.WriteString(pongResponse)
			_ = bw.Flush()
			_ = c.Close()
			continue
		}
		if line != captureRequest {
			log.Printf("singleinstance: unknown request %q from %s", line, remote)
			_, _ = bw.WriteString(errResponse + "unknown request")
			_ = bw.Flush()
			_ = c.Close()
			continue
		}
		_ = c.SetDeadline(time.Time{})
		log.Printf("singleinstance: capture trigger from %s", remote)
		select {
		case s.incoming <- &tcpConn{c: c, w: bw}:
		case <-ctx.Done():
			_ = c.Close()
			return
		}
	}
}

func (s *tcpServer) Next(ctx context.Context) (Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case tc := <-s.incoming:
		return tc, nil
	}
}

func (s *tcpServer) Close() error {
	if s.lis != nil {
		_ = s.lis.Close()
		s.lis = nil
	}
	close(s.incoming)
	return nil
}

type tcpConn struct {
	c net.Conn
	w *bufio.Writer
}

func (tc *tcpConn) RespondOK() error {
	if _, err := tc.w.WriteString(okResponse); err != nil {
		return err
	}
	return tc.w.Flush()
}

func (tc *tcpConn) RespondBusy() error {
	if _, err := tc.w.WriteString(busyResponse); err != nil {
		return err
	}
	return tc.w.Flush()
}

func (tc *tcpConn) RespondError(msg string) error {
	if _, err := tc.w.WriteString(errResponse + msg); err != nil {
		return err
	}
	return tc.w.Flush()
}

func (tc *tcpConn) Close() error { return tc.c.Close() }
