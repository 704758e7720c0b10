package executor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/craftingstore/cs-agent/internal/config"
	"github.com/craftingstore/cs-agent/internal/protocol"
)

const (
	rconName          = "CraftingStore"
	reconnectDelay    = 5 * time.Second
	maxReconnectDelay = 60 * time.Second
	handshakeTimeout  = 10 * time.Second
)

var (
	// Variable for testing
	rconWriteTimeout = 10 * time.Second

	errRCONClosed = errors.New("webrcon executor closed")
)

// WebRCON sends commands to a game server's WebRCON endpoint.
// The password is carried in the URL path, as the protocol requires.
type WebRCON struct {
	url    string
	logger logrus.FieldLogger
	dialer *websocket.Dialer

	mu     sync.Mutex
	conn   *websocket.Conn
	nextID int
	closed bool
}

func NewWebRCON(addr, password string, logger logrus.FieldLogger) (*WebRCON, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid webrcon URL: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("webrcon URL must be ws:// or wss://, got %q", addr)
	}
	u.Path = "/" + password
	u.RawPath = "/" + url.PathEscape(password)

	return &WebRCON{
		url:    u.String(),
		logger: logger.WithFields(logrus.Fields{"executor": config.ModeWebRCON, "host": u.Host}),
		dialer: &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
	}, nil
}

func (w *WebRCON) Execute(ctx context.Context, command string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.nextID++
	msg := protocol.RCONMessage{Identifier: w.nextID, Message: command, Name: rconName}
	log := w.logger.WithFields(logrus.Fields{"command": command, "rcon_id": msg.Identifier})

	if err := w.writeLocked(ctx, msg); err != nil {
		log.WithError(err).Warn("WebRCON write failed, reconnecting")
		w.dropLocked()
		if err := w.writeLocked(ctx, msg); err != nil {
			log.WithError(err).Error("Command not delivered to WebRCON")
			w.dropLocked()
		}
	}
}

func (w *WebRCON) writeLocked(ctx context.Context, msg protocol.RCONMessage) error {
	if err := w.ensureConnLocked(ctx); err != nil {
		return err
	}
	w.conn.SetWriteDeadline(time.Now().Add(rconWriteTimeout))
	return w.conn.WriteJSON(msg)
}

func (w *WebRCON) ensureConnLocked(ctx context.Context) error {
	if w.closed {
		return errRCONClosed
	}
	if w.conn != nil {
		return nil
	}
	conn, _, err := w.dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return fmt.Errorf("webrcon dial: %w", redact(err, w.url))
	}
	w.conn = conn
	w.logger.Info("WebRCON connected")
	return nil
}

func (w *WebRCON) dropLocked() {
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
}

func (w *WebRCON) drop(conn *websocket.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == conn {
		w.dropLocked()
	}
}

func (w *WebRCON) connection(ctx context.Context) (*websocket.Conn, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureConnLocked(ctx); err != nil {
		return nil, err
	}
	return w.conn, nil
}

// Run keeps a connection open and logs server replies until ctx is cancelled.
func (w *WebRCON) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		w.Close()
	}()

	delay := reconnectDelay
	for {
		conn, err := w.connection(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, errRCONClosed) {
				return nil
			}
			w.logger.WithError(err).Warnf("WebRCON connection failed, retrying in %v", delay)
			sleepWithContext(ctx, delay)

			// Exponential backoff
			delay *= 2
			if delay > maxReconnectDelay {
				delay = maxReconnectDelay
			}
			continue
		}

		delay = reconnectDelay
		w.readLoop(conn)

		if ctx.Err() != nil {
			return nil
		}
		w.logger.Info("WebRCON connection lost, reconnecting")
		sleepWithContext(ctx, delay)
	}
}

func (w *WebRCON) readLoop(conn *websocket.Conn) {
	for {
		var msg protocol.RCONMessage
		if err := conn.ReadJSON(&msg); err != nil {
			w.logger.WithError(err).Debug("WebRCON read ended")
			w.drop(conn)
			return
		}
		if msg.Identifier == 0 {
			// Unsolicited console output.
			continue
		}
		w.logger.WithFields(logrus.Fields{
			"rcon_id": msg.Identifier,
			"type":    msg.Type,
		}).Debugf("WebRCON reply: %s", strings.TrimSpace(msg.Message))
	}
}

// Close disconnects and rejects further commands.
func (w *WebRCON) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	if w.conn == nil {
		return nil
	}
	err := w.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown"),
		time.Now().Add(time.Second))
	w.dropLocked()
	return err
}

// redact strips the password-bearing URL from dial errors.
func redact(err error, secretURL string) error {
	msg := err.Error()
	if !strings.Contains(msg, secretURL) {
		return err
	}
	return errors.New(strings.ReplaceAll(msg, secretURL, "<webrcon url>"))
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
