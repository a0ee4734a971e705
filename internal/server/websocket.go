package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"golang.org/x/time/rate"

	"github.com/conneroisu/codetour/internal/logging"
	"github.com/conneroisu/codetour/internal/metrics"
	"github.com/conneroisu/codetour/internal/selection"
	"github.com/conneroisu/codetour/internal/tour"
	"github.com/conneroisu/codetour/internal/validation"
	"github.com/conneroisu/codetour/internal/viewer"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this period.
	pingPeriod = 30 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Inbound messages per second and burst allowed per connection.
	messageRate  = 20
	messageBurst = 40

	sendBuffer = 256
)

// Client is one websocket connection following a session
type Client struct {
	conn    *websocket.Conn
	send    chan []byte
	session *tour.Session
	limiter *rate.Limiter
	server  *Server
	logger  logging.Logger
}

// inboundMessage is a pointer event reported by the page
type inboundMessage struct {
	Type  string `json:"type"`
	Ref   int64  `json:"ref"`
	Index int    `json:"index"`
}

type highlightMessage struct {
	Type string `json:"type"`
	viewer.HighlightCommand
}

type scrollMessage struct {
	Type string `json:"type"`
	viewer.ScrollCommand
}

type tabMessage struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	session, ok := s.sessions.get(id)
	if !ok {
		http.Error(w, "Unknown session", http.StatusNotFound)
		return
	}

	if !s.checkOrigin(r) {
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	// checkOrigin has already vetted the origin
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.logger.Warn(r.Context(), err, "WebSocket upgrade failed")
		return
	}
	conn.SetReadLimit(maxMessageSize)

	client := &Client{
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		session: session,
		limiter: rate.NewLimiter(rate.Limit(messageRate), messageBurst),
		server:  s,
		logger:  s.logger.With("session", session.ID),
	}

	s.register(client)
	defer s.unregister(client)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	follow := session.Subscribe(client)
	go client.writePump(ctx, cancel)
	go func() {
		defer cancel()
		if err := follow(ctx); err != nil {
			client.logger.Warn(ctx, err, "Session follow ended")
		}
	}()

	client.readPump(ctx)

	select {
	case <-session.Done():
		conn.Close(websocket.StatusPolicyViolation, "session expired")
	default:
		conn.Close(websocket.StatusNormalClosure, "")
	}
}

// checkOrigin validates the request origin for security. Same-host
// origins, the configured host and localhost on the server port, and the
// configured allowed origins are accepted.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return false
	}

	port := s.config.Server.Port
	allowedHosts := []string{
		r.Host,
		fmt.Sprintf("%s:%d", s.config.Server.Host, port),
		fmt.Sprintf("localhost:%d", port),
		fmt.Sprintf("127.0.0.1:%d", port),
	}
	for _, allowed := range allowedHosts {
		if allowed != "" && originURL.Host == allowed {
			return true
		}
	}

	return validation.ValidateOrigin(origin, s.config.Server.AllowedOrigins) == nil
}

func (s *Server) register(client *Client) {
	s.clientsMutex.Lock()
	s.clients[client] = struct{}{}
	count := len(s.clients)
	s.clientsMutex.Unlock()

	metrics.WebSocketClients.Inc()
	client.logger.Debug(context.Background(), "Client connected", "clients", count)
}

func (s *Server) unregister(client *Client) {
	s.clientsMutex.Lock()
	delete(s.clients, client)
	count := len(s.clients)
	s.clientsMutex.Unlock()

	metrics.WebSocketClients.Dec()
	client.logger.Debug(context.Background(), "Client disconnected", "clients", count)
}

// broadcast queues msg for every client following a session of the tour.
// Clients whose buffer is full miss the message.
func (s *Server) broadcast(slug string, msg UpdateMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error(context.Background(), err, "Failed to marshal message")
		return
	}

	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()

	for client := range s.clients {
		if client.session.Tour.Slug != slug {
			continue
		}
		select {
		case client.send <- data:
		default:
			client.logger.Warn(context.Background(), nil, "Dropping message for slow client", "type", msg.Type)
		}
	}
}

// Highlight implements tour.Sink.
func (c *Client) Highlight(ctx context.Context, cmd viewer.HighlightCommand) error {
	return c.enqueue(ctx, highlightMessage{Type: "highlight", HighlightCommand: cmd})
}

// Scroll implements tour.Sink.
func (c *Client) Scroll(ctx context.Context, cmd viewer.ScrollCommand) error {
	return c.enqueue(ctx, scrollMessage{Type: "scroll", ScrollCommand: cmd})
}

// Tab implements tour.Sink.
func (c *Client) Tab(ctx context.Context, index int) error {
	return c.enqueue(ctx, tabMessage{Type: "tab", Index: index})
}

func (c *Client) enqueue(ctx context.Context, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}
	select {
	case c.send <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// readPump applies inbound pointer events to the session in arrival order
func (c *Client) readPump(ctx context.Context) {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && ctx.Err() == nil {
				c.logger.Debug(ctx, "WebSocket read ended", "error", err.Error())
			}
			return
		}

		if !c.limiter.Allow() {
			c.logger.Debug(ctx, "Dropping rate limited message")
			continue
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn(ctx, err, "Ignoring malformed message")
			continue
		}

		c.server.sessions.touch(c.session)
		if err := c.dispatch(ctx, msg); err != nil {
			c.logger.Warn(ctx, err, "Ignoring message", "type", msg.Type)
		}
	}
}

func (c *Client) dispatch(ctx context.Context, msg inboundMessage) error {
	switch msg.Type {
	case "activate":
		metrics.SelectionChanges.WithLabelValues(msg.Type).Inc()
		return c.session.Activate(ctx, selection.ReferenceID(msg.Ref))
	case "leave":
		metrics.SelectionChanges.WithLabelValues(msg.Type).Inc()
		return c.session.Leave(ctx, selection.ReferenceID(msg.Ref))
	case "tab":
		metrics.SelectionChanges.WithLabelValues(msg.Type).Inc()
		c.session.SelectTab(ctx, msg.Index)
		return nil
	default:
		return errors.New("unknown message type")
	}
}

// writePump pumps messages to the websocket connection
func (c *Client) writePump(ctx context.Context, cancel context.CancelFunc) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return

		case message := <-c.send:
			writeCtx, writeCancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			writeCancel()
			if err != nil {
				c.logger.Debug(ctx, "WebSocket write failed", "error", err.Error())
				return
			}

		case <-ticker.C:
			pingCtx, pingCancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			pingCancel()
			if err != nil {
				return
			}
		}
	}
}
