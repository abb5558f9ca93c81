package infrastructure

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"mesaOps/internal/modules/realtime/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	readLimit  = 1 << 16
)

// Conn is the part of a websocket connection the client drives.
type Conn interface {
	ReadJSON(v any) error
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Client is one websocket connection following an entity stream of a restaurant.
type Client struct {
	hub          *Hub
	conn         Conn
	send         chan []byte
	userID       string
	sessionID    string
	restaurantID string
	entity       string
	commands     *CommandProcessor
	subscribed   map[string]struct{}
	closeOnce    sync.Once
	closed       chan struct{}
	closeHooks   []func(*Client)
	hookMu       sync.Mutex
}

// NewClient builds a client with a send buffer of buf messages.
func NewClient(hub *Hub, conn Conn, userID, sessionID, restaurantID, entity string, buf int, commandFn CommandHandler) *Client {
	if buf <= 0 {
		buf = 8
	}
	client := &Client{
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, buf),
		userID:       userID,
		sessionID:    sessionID,
		restaurantID: strings.TrimSpace(restaurantID),
		entity:       strings.TrimSpace(entity),
		subscribed:   make(map[string]struct{}),
		closed:       make(chan struct{}),
	}
	client.commands = NewCommandProcessor(hub, commandFn)
	return client
}

func (c *Client) UserID() string       { return c.userID }
func (c *Client) SessionID() string    { return c.sessionID }
func (c *Client) RestaurantID() string { return c.restaurantID }
func (c *Client) Entity() string       { return c.entity }

func (c *Client) key() string {
	parts := []string{c.userID, c.sessionID, c.entity}
	if c.restaurantID != "" {
		parts = append(parts, c.restaurantID)
	}
	return strings.Join(parts, ":")
}

func (c *Client) logAttrs() []any {
	return []any{
		slog.String("userId", c.userID),
		slog.String("sessionId", c.sessionID),
		slog.String("restaurantId", c.restaurantID),
		slog.String("entity", c.entity),
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
		c.invokeCloseHooks()
	})
}

// AddCloseHook registers a callback executed once when the client closes. On a closed client
// the callback runs immediately.
func (c *Client) AddCloseHook(fn func(*Client)) {
	if fn == nil {
		return
	}
	c.hookMu.Lock()
	select {
	case <-c.closed:
		c.hookMu.Unlock()
		fn(c)
		return
	default:
	}
	c.closeHooks = append(c.closeHooks, fn)
	c.hookMu.Unlock()
}

func (c *Client) invokeCloseHooks() {
	c.hookMu.Lock()
	hooks := append([]func(*Client){}, c.closeHooks...)
	c.closeHooks = nil
	c.hookMu.Unlock()

	for _, hook := range hooks {
		func(h func(*Client)) {
			defer func() {
				if r := recover(); r != nil {
					slog.Warn("ws close hook panic", slog.Any("error", r))
				}
			}()
			h(c)
		}(hook)
	}
}

func (c *Client) SendDomainMessage(msg *domain.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("websocket marshal error", slog.Any("error", err))
		return
	}
	c.enqueue(data)
}

// enqueue drops the client when its buffer is full.
func (c *Client) enqueue(data []byte) {
	select {
	case <-c.closed:
		return
	default:
	}
	select {
	case c.send <- data:
	default:
		slog.Warn("websocket send buffer full", c.logAttrs()...)
		go c.hub.detachClient(c)
	}
}

func (c *Client) WritePump() {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-c.closed:
			return
		case msg := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Warn("websocket write error", append(c.logAttrs(), slog.Any("error", err))...)
				go c.hub.detachClient(c)
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				slog.Warn("websocket ping error", append(c.logAttrs(), slog.Any("error", err))...)
				go c.hub.detachClient(c)
				return
			}
		}
	}
}

func (c *Client) ReadPump() {
	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	defer c.hub.detachClient(c)
	for {
		var cmd Command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("websocket read error", append(c.logAttrs(), slog.Any("error", err))...)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.processCommand(cmd)
	}
}

func (c *Client) processCommand(cmd Command) {
	if c.commands == nil {
		return
	}
	c.commands.Process(c, cmd)
}
