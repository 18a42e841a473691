package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

type tcpClient struct{}

func newTcpClient() Client { return &tcpClient{} }

func (c *tcpClient) TryCapture(ctx context.Context) (bool, error) {
	deadline := 2 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			deadline = d
		}
	}
	start, end := getPortRange()
	for port := start; port <= end; port++ {
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		if !ping(addr, deadline) {
			continue
		}
		conn, err := net.DialTimeout("tcp", addr, deadline)
		if err != nil {
			continue
		}
		w := bufio.NewWriter(conn)
		if _, err := w.WriteString(captureRequest); err != nil {
			conn.Close()
			return true, err
		}
		if err := w.Flush(); err != nil {
			conn.Close()
			return true, err
		}
		br := bufio.NewReader(conn)
		status, err := br.ReadString('\n')
		if err != nil {
			conn.Close()
			return true, err
		}
		switch status {
		case okResponse:
			conn.Close()
			return true, nil
		case busyResponse:
			conn.Close()
			return true, errors.New("resident is busy with another capture")
		case errResponse:
			msg, _ := io.ReadAll(br)
			conn.Close()
			return true, errors.New(strings.TrimSpace(string(msg)))
		default:
			conn.Close()
			return true, errors.New("unexpected response from resident")
		}
	}
	return false, nil
}

// ping checks whether addr hosts a resident by a PING/PONG round trip.
func ping(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(pingRequest); err != nil {
		return false
	}
	if err := w.Flush(); err != nil {
		return false
	}
	br := bufio.NewReader(conn)
	resp, err := br.ReadString('\n')
	return err == nil && resp == pongResponse
}

// DetectResidentPort scans the range and returns (port, true) if a resident
// responds to PING.
func DetectResidentPort(ctx context.Context) (int, bool) {
	deadline := 300 * time.Millisecond
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			deadline = d
		}
	}
	start, end := getPortRange()
	for port := start; port <= end; port++ {
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		if ping(addr, deadline) {
			return port, true
		}
	}
	return 0, false
}
