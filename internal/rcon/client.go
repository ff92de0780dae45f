// Package rcon is the remote console client for the game servers. Commands
// to one server are serialized and retried; failures never surface as errors,
// callers get an empty Reply instead.
package rcon

import (
	"context"
	"errors"
	"maps"
	"matchbot/internal/config"
	"matchbot/internal/domain"
	"matchbot/internal/metrics"
	"net"
	"slices"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

type Client struct {
	addr     string
	password string
	dialer   Dialer
	attempts int
	backoff  time.Duration
	registry *Registry
	logger   zerolog.Logger

	mu   sync.Mutex
	conn Conn
}

func (c *Client) Addr() string {
	return c.addr
}

// Call runs one command, retrying transport failures and unsuccessful replies
// with a fixed backoff. A refused connection drops the client from its
// registry and gives up immediately.
func (c *Client) Call(ctx context.Context, command string, args ...string) Reply {
	reply := c.call(ctx, command, args)
	if observe := c.registry.observe; observe != nil {
		observe(command, !reply.Empty())
	}
	return reply
}

func (c *Client) call(ctx context.Context, command string, args []string) Reply {
	line := strings.Join(append([]string{command}, args...), " ")
	log := c.logger.With().Str("command", command).Logger()

	c.mu.Lock()
	defer c.mu.Unlock()

	for attempt := 1; attempt <= c.attempts; attempt++ {
		if ctx.Err() != nil {
			return Reply{}
		}
		if attempt > 1 && !sleep(ctx, c.backoff) {
			return Reply{}
		}

		if c.conn == nil {
			conn, err := c.dialer.Dial(ctx, c.addr, c.password)
			if err != nil {
				if isRefused(err) {
					log.Warn().Err(err).Msg("connection refused, deregistering server")
					c.registry.forget(c)
					return Reply{}
				}
				log.Debug().Err(err).Int("attempt", attempt).Msg("failed to connect")
				continue
			}
			c.conn = conn
		}

		reply, err := c.conn.Send(ctx, line)
		if err != nil {
			log.Debug().Err(err).Int("attempt", attempt).Msg("command failed")
			c.dropConn()
			continue
		}
		if reply.Empty() || !reply.Successful() {
			log.Debug().Int("attempt", attempt).Msg("command not successful")
			continue
		}
		return reply
	}

	log.Warn().Int("attempts", c.attempts).Msg("command gave up")
	return Reply{}
}

func (c *Client) dropConn() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropConn()
}

func isRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Registry holds one Client per server address for the life of the process.
type Registry struct {
	dialer   Dialer
	attempts int
	backoff  time.Duration
	observe  func(command string, ok bool)
	logger   zerolog.Logger

	mu      sync.Mutex
	clients map[string]*Client
}

func NewRegistry(cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) *Registry {
	r := NewRegistryWithDialer(TCPDialer{Timeout: cfg.RconTimeout}, cfg.RconAttempts, cfg.RconBackoff, logger)
	r.observe = m.RconCall
	return r
}

func NewRegistryWithDialer(dialer Dialer, attempts int, backoff time.Duration, logger zerolog.Logger) *Registry {
	if attempts < 1 {
		attempts = 1
	}
	return &Registry{
		dialer:   dialer,
		attempts: attempts,
		backoff:  backoff,
		logger:   logger,
		clients:  make(map[string]*Client),
	}
}

func (r *Registry) Client(host string, port int, password string) *Client {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[addr]; ok && c.password == password {
		return c
	} else if ok {
		go c.close()
	}

	c := &Client{
		addr:     addr,
		password: password,
		dialer:   r.dialer,
		attempts: r.attempts,
		backoff:  r.backoff,
		registry: r,
		logger:   r.logger.With().Str("rcon", addr).Logger(),
	}
	r.clients[addr] = c
	return c
}

func (r *Registry) For(server domain.RconServer) *Client {
	return r.Client(server.Host, server.Port, server.Password)
}

// Active lists the addresses with a registered client.
func (r *Registry) Active() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Sorted(maps.Keys(r.clients))
}

// forget is called with c.mu held.
func (r *Registry) forget(c *Client) {
	r.mu.Lock()
	if r.clients[c.addr] == c {
		delete(r.clients, c.addr)
	}
	r.mu.Unlock()
	c.dropConn()
}

func (r *Registry) Close() {
	r.mu.Lock()
	clients := r.clients
	r.clients = make(map[string]*Client)
	r.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

// Probe reports whether the server answers on its remote console.
func (r *Registry) Probe(ctx context.Context, server domain.RconServer) bool {
	return r.For(server).Probe(ctx)
}
