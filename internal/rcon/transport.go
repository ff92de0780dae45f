package rcon

import (
	"bufio"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

var ErrAuthFailed = errors.New("rcon authentication rejected")

// Conn is an authenticated line-command connection to one game server.
type Conn interface {
	Send(ctx context.Context, command string) (Reply, error)
	Close() error
}

type Dialer interface {
	Dial(ctx context.Context, addr, password string) (Conn, error)
}

// TCPDialer speaks the plain TCP remote console: the md5 hex digest of the
// password is sent first, then one command per line, each answered with a
// JSON object.
type TCPDialer struct {
	Timeout time.Duration
}

func (d TCPDialer) Dial(ctx context.Context, addr, password string) (Conn, error) {
	nd := net.Dialer{Timeout: d.Timeout}
	nc, err := nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	c := &tcpConn{conn: nc, reader: bufio.NewReader(nc), timeout: d.Timeout}
	if err := c.auth(ctx, password); err != nil {
		nc.Close()
		return nil, err
	}
	c.decoder = json.NewDecoder(c.reader)
	return c, nil
}

type tcpConn struct {
	conn    net.Conn
	reader  *bufio.Reader
	decoder *json.Decoder
	timeout time.Duration
}

func (c *tcpConn) deadline(ctx context.Context) {
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	c.conn.SetDeadline(deadline)
}

func (c *tcpConn) auth(ctx context.Context, password string) error {
	c.deadline(ctx)

	sum := md5.Sum([]byte(password))
	if _, err := fmt.Fprintf(c.conn, "%s\n", hex.EncodeToString(sum[:])); err != nil {
		return fmt.Errorf("failed to send password: %w", err)
	}

	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read auth reply: %w", err)
		}
		if _, status, ok := strings.Cut(strings.TrimSpace(line), "Authenticated="); ok {
			if status != "1" {
				return ErrAuthFailed
			}
			return nil
		}
	}
}

func (c *tcpConn) Send(ctx context.Context, command string) (Reply, error) {
	c.deadline(ctx)

	if _, err := fmt.Fprintf(c.conn, "%s\n", command); err != nil {
		return nil, fmt.Errorf("failed to send command: %w", err)
	}

	var reply Reply
	if err := c.decoder.Decode(&reply); err != nil {
		return nil, fmt.Errorf("failed to decode reply: %w", err)
	}
	return reply, nil
}

func (c *tcpConn) Close() error {
	return c.conn.Close()
}
