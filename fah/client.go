package fah

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/datarhei/foldwatch/activity"
	"github.com/datarhei/foldwatch/log"

	"github.com/gorilla/websocket"
)

var (
	// ErrConnectionFailure is returned if the connection to FAHClient failed
	// or broke before the state has been acknowledged.
	ErrConnectionFailure = errors.New("connection failure")

	// ErrTimeout is returned if no acknowledgement arrived in time.
	ErrTimeout = fmt.Errorf("%w: no acknowledgement in time", ErrConnectionFailure)
)

// Dialer opens a websocket connection. *websocket.Dialer implements it.
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (*websocket.Conn, *http.Response, error)
}

type Config struct {
	Address    string        // Websocket address of FAHClient
	Timeout    time.Duration // Max. time for a Send, defaults to 60s
	GraceDelay time.Duration // Time to wait after the acknowledgement before closing, defaults to 500ms, negative disables it
	Logger     log.Logger
	Dialer     Dialer // Defaults to a websocket.Dialer
}

// Client sends commands to FAHClient.
type Client interface {
	// Send opens a new connection, sends the state for cmd and waits for
	// the acknowledgement. The connection is closed afterwards.
	Send(ctx context.Context, cmd activity.Command, now time.Time) error
}

type client struct {
	address    string
	timeout    time.Duration
	graceDelay time.Duration
	logger     log.Logger
	dialer     Dialer
}

func NewClient(config Config) (Client, error) {
	c := &client{
		address:    config.Address,
		timeout:    config.Timeout,
		graceDelay: config.GraceDelay,
		logger:     config.Logger,
		dialer:     config.Dialer,
	}

	if len(c.address) == 0 {
		return nil, fmt.Errorf("no address provided")
	}

	if c.timeout <= 0 {
		c.timeout = 60 * time.Second
	}

	if c.graceDelay < 0 {
		c.graceDelay = 0
	} else if config.GraceDelay == 0 {
		c.graceDelay = 500 * time.Millisecond
	}

	if c.logger == nil {
		c.logger = log.New("")
	}

	if c.dialer == nil {
		c.dialer = &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: c.timeout,
		}
	}

	c.logger = c.logger.WithField("address", c.address)

	return c, nil
}

func (c *client) Send(ctx context.Context, cmd activity.Command, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	logger := c.logger.WithField("state", cmd.String())

	conn, _, err := c.dialer.DialContext(ctx, c.address, nil)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrTimeout, err)
		}

		return fmt.Errorf("%w: %w", ErrConnectionFailure, err)
	}

	defer conn.Close()

	logger.Debug().Log("Connected")

	// Unblock reads if the context gets cancelled
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
		conn.SetWriteDeadline(deadline)
	}

	data, err := NewEnvelope(cmd, now).Marshal()
	if err != nil {
		return err
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return c.connError(ctx, err)
	}

	logger.Debug().WithField("message", string(data)).Log("Sent state")

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return c.connError(ctx, err)
		}

		if IsAck(msg) {
			break
		}

		logger.Debug().WithField("message", string(msg)).Log("Ignoring message")
	}

	logger.Debug().Log("State acknowledged")

	timer := time.NewTimer(c.graceDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return nil
	}

	err = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	if err != nil {
		logger.Debug().WithError(err).Log("Sending close message")
	}

	return nil
}

func (c *client) connError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	return fmt.Errorf("%w: %w", ErrConnectionFailure, err)
}
