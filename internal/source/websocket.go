package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/nkootstra/framescope/internal/protocol"
)

// WebSocketOptions configures a relay source.
type WebSocketOptions struct {
	URL         string
	MaxAttempts int
	Logger      *zap.Logger
}

// WebSocket reads log lines from a relay that streams them over a websocket.
// Messages are either raw text (one or more newline separated lines) or
// relay envelopes, see protocol.LogMessage.
type WebSocket struct {
	url         string
	maxAttempts int
	log         *zap.Logger
	events      chan Event
	backoff     func(attempt int) time.Duration

	mu                sync.Mutex
	reconnectAttempts int
}

// NewWebSocket creates a relay source. Nothing is dialled until Lines runs.
func NewWebSocket(opts WebSocketOptions) *WebSocket {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = BackoffMaxAttempts
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &WebSocket{
		url:         opts.URL,
		maxAttempts: maxAttempts,
		log:         log.With(zap.String("source", opts.URL)),
		events:      make(chan Event, 100),
		backoff:     CalculateBackoff,
	}
}

func (w *WebSocket) Name() string {
	return w.url
}

// Events returns the status channel. It is never closed.
func (w *WebSocket) Events() <-chan Event {
	return w.events
}

func (w *WebSocket) emit(status Status, err error) {
	select {
	case w.events <- Event{Source: w.url, Status: status, Err: err}:
	default:
		// Drop event if channel is full to prevent deadlocks
	}
}

// Lines dials the relay and streams its lines, reconnecting with backoff
// until ctx is cancelled, the relay closes normally, or the reconnect budget
// is spent.
func (w *WebSocket) Lines(ctx context.Context, out chan<- string) error {
	for {
		err := w.session(ctx, out)
		if ctx.Err() != nil {
			w.emit(StatusDisconnected, nil)
			return ctx.Err()
		}
		if err == nil {
			w.emit(StatusDone, nil)
			return nil
		}

		w.mu.Lock()
		attempt := w.reconnectAttempts
		w.reconnectAttempts++
		w.mu.Unlock()

		if attempt >= w.maxAttempts {
			w.emit(StatusDisconnected, err)
			return fmt.Errorf("websocket %s: giving up after %d attempts: %w", w.url, attempt, err)
		}

		delay := w.backoff(attempt)
		w.log.Warn("relay connection lost",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.Duration("retry_in", delay))
		w.emit(StatusReconnecting, err)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			w.emit(StatusDisconnected, nil)
			return ctx.Err()
		}
	}
}

// session runs one connection. A nil return means the relay closed the
// stream normally.
func (w *WebSocket) session(ctx context.Context, out chan<- string) error {
	w.mu.Lock()
	status := StatusConnecting
	if w.reconnectAttempts > 0 {
		status = StatusReconnecting
	}
	w.mu.Unlock()
	w.emit(status, nil)

	conn, _, err := websocket.Dial(ctx, w.url, nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}
	defer conn.CloseNow()

	conn.SetReadLimit(MaxLineBytes)

	w.mu.Lock()
	w.reconnectAttempts = 0
	w.mu.Unlock()

	w.log.Debug("relay connected")
	w.emit(StatusConnected, nil)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return err
		}
		if err := w.handleMessage(ctx, conn, out, data); err != nil {
			return err
		}
	}
}

func (w *WebSocket) handleMessage(ctx context.Context, conn *websocket.Conn, out chan<- string, data []byte) error {
	if !protocol.IsRelayMessage(data) {
		return w.sendText(ctx, out, string(data))
	}

	parsed, err := protocol.ParseTextMessage(data)
	if err != nil || parsed == nil {
		w.log.Debug("ignoring relay message", zap.Error(err))
		return nil
	}

	switch msg := parsed.(type) {
	case *protocol.LogMessage:
		return w.sendText(ctx, out, msg.Line)
	case *protocol.PingMsg:
		w.sendJSON(ctx, conn, &protocol.PongMsg{Type: protocol.RelayPongType})
	case *protocol.ErrorMessage:
		w.emit(StatusConnected, errors.New(msg.Message))
	}
	return nil
}

// sendText forwards every non-empty line of text.
func (w *WebSocket) sendText(ctx context.Context, dst chan<- string, text string) error {
	for line := range strings.SplitSeq(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if err := send(ctx, dst, line); err != nil {
			return err
		}
	}
	return nil
}

func (w *WebSocket) sendJSON(ctx context.Context, conn *websocket.Conn, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		w.log.Debug("relay write failed", zap.Error(err))
	}
}
