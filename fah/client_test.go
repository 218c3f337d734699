package fah

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/datarhei/foldwatch/activity"
	"github.com/datarhei/foldwatch/encoding/json"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type peer struct {
	server   *httptest.Server
	received chan Envelope
	closed   chan int
}

// newPeer starts a websocket server that answers every received envelope
// with the given replies.
func newPeer(t *testing.T, replies ...string) *peer {
	p := &peer{
		received: make(chan Envelope, 16),
		closed:   make(chan int, 16),
	}

	upgrader := websocket.Upgrader{}

	p.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		defer conn.Close()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				code := -1
				if cerr, ok := err.(*websocket.CloseError); ok {
					code = cerr.Code
				}
				p.closed <- code
				return
			}

			e := Envelope{}
			if err := json.Unmarshal(data, &e); err == nil {
				p.received <- e
			}

			for _, reply := range replies {
				if err := conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
					return
				}
			}
		}
	}))

	t.Cleanup(p.server.Close)

	return p
}

func (p *peer) address() string {
	return "ws" + strings.TrimPrefix(p.server.URL, "http") + "/api/websocket"
}

func TestSendAck(t *testing.T) {
	p := newPeer(t, `["units",[]]`, `["groups","","config","paused",true]`)

	c, err := NewClient(Config{
		Address:    p.address(),
		Timeout:    5 * time.Second,
		GraceDelay: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	now := time.Date(2025, time.July, 16, 18, 10, 0, 0, time.UTC)

	err = c.Send(context.Background(), activity.Pause, now)
	require.NoError(t, err)

	select {
	case e := <-p.received:
		require.Equal(t, Envelope{State: "pause", Cmd: "state", Time: "2025-07-16T18:10:00.000Z"}, e)
	case <-time.After(time.Second):
		require.Fail(t, "no envelope received")
	}

	select {
	case code := <-p.closed:
		require.Equal(t, websocket.CloseNormalClosure, code)
	case <-time.After(time.Second):
		require.Fail(t, "connection not closed")
	}
}

func TestSendNewConnectionPerCall(t *testing.T) {
	p := newPeer(t, `["groups","","config","paused",true]`)

	c, err := NewClient(Config{
		Address:    p.address(),
		Timeout:    5 * time.Second,
		GraceDelay: -1,
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		err = c.Send(context.Background(), activity.Fold, time.Now())
		require.NoError(t, err)
	}

	for i := 0; i < 3; i++ {
		select {
		case <-p.closed:
		case <-time.After(time.Second):
			require.Fail(t, "connection not closed")
		}
	}
}

func TestSendProtocolMismatch(t *testing.T) {
	p := newPeer(t, `["groups","","config","other",true]`, `["groups","","config","paused",false]`, `garbage`)

	c, err := NewClient(Config{
		Address: p.address(),
		Timeout: 200 * time.Millisecond,
	})
	require.NoError(t, err)

	start := time.Now()

	err = c.Send(context.Background(), activity.Fold, time.Now())
	require.ErrorIs(t, err, ErrTimeout)
	require.ErrorIs(t, err, ErrConnectionFailure)
	require.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
}

func TestSendCancelled(t *testing.T) {
	p := newPeer(t)

	c, err := NewClient(Config{
		Address: p.address(),
		Timeout: 10 * time.Second,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err = c.Send(ctx, activity.Fold, time.Now())
	require.ErrorIs(t, err, ErrTimeout)
}

func TestSendDialFailure(t *testing.T) {
	p := newPeer(t)
	address := p.address()
	p.server.Close()

	c, err := NewClient(Config{
		Address: address,
		Timeout: time.Second,
	})
	require.NoError(t, err)

	err = c.Send(context.Background(), activity.Fold, time.Now())
	require.ErrorIs(t, err, ErrConnectionFailure)
	require.NotErrorIs(t, err, ErrTimeout)
}

func TestSendDropped(t *testing.T) {
	upgrader := websocket.Upgrader{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		conn.ReadMessage()
		conn.Close()
	}))
	defer server.Close()

	c, err := NewClient(Config{
		Address: "ws" + strings.TrimPrefix(server.URL, "http"),
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)

	err = c.Send(context.Background(), activity.Fold, time.Now())
	require.ErrorIs(t, err, ErrConnectionFailure)
	require.NotErrorIs(t, err, ErrTimeout)
}

func TestNewClientConfig(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
}
