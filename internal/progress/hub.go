// Package progress pushes mood-board progress to WebSocket clients. The Hub
// tracks connections and per mood board session state; the Handler owns the
// transport.
package progress

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dekoassistant/internal/domain"
	"dekoassistant/internal/observability/metrics"
)

// Frame types sent to clients.
const (
	FrameConnectionEstablished = "connection_established"
	FrameProgress              = "mood_board_progress"
	FrameCompleted             = "mood_board_completed"
	FrameError                 = "mood_board_error"
	FrameAck                   = "ack"
)

// Frame is the JSON envelope of every outbound message. Exactly one payload
// field is set per type: Progress on mood_board_progress, MoodBoard on
// mood_board_completed, Error (with MoodBoardID) on mood_board_error, Locale
// on connection_established and Received on ack.
type Frame struct {
	Type         string                      `json:"type"`
	ConnectionID string                      `json:"connection_id"`
	MoodBoardID  string                      `json:"mood_board_id,omitempty"`
	Progress     *domain.ProgressEvent       `json:"progress,omitempty"`
	MoodBoard    *domain.VisualizationResult `json:"mood_board,omitempty"`
	Error        string                      `json:"error,omitempty"`
	Locale       string                      `json:"locale,omitempty"`
	Received     string                      `json:"received,omitempty"`
	Timestamp    int64                       `json:"ts"`
}

// SessionState is the lifecycle of one mood board on one connection.
type SessionState string

const (
	SessionActive    SessionState = "active"
	SessionCompleted SessionState = "completed"
	SessionErrored   SessionState = "errored"
)

// DefaultQueueSize is the outbound buffer per connection.
const DefaultQueueSize = 64

// finishedLimit bounds how many terminal mood board ids a connection
// remembers for dropping late events.
const finishedLimit = 128

// Connection is one registered client. Frames are queued in publish order
// and drained by a single writer.
type Connection struct {
	id     string
	locale string
	send   chan Frame
	done   chan struct{}

	mu       sync.Mutex
	sessions map[string]SessionState
	finished map[string]struct{}
	order    []string
	closed   bool
}

func (c *Connection) ID() string { return c.id }

func (c *Connection) Locale() string { return c.locale }

// Frames is drained by the transport writer.
func (c *Connection) Frames() <-chan Frame { return c.send }

// Done is closed when the connection is unregistered.
func (c *Connection) Done() <-chan struct{} { return c.done }

type Hub struct {
	mu        sync.RWMutex
	conns     map[string]*Connection
	queueSize int
	logger    zerolog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewHub(logger zerolog.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		conns:     make(map[string]*Connection),
		queueSize: DefaultQueueSize,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

// Register adds a connection. An empty id gets a generated one; an id that
// is already registered replaces the older connection.
func (h *Hub) Register(id, locale string) *Connection {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}
	c := &Connection{
		id:       id,
		locale:   NormalizeLocale(locale),
		send:     make(chan Frame, h.queueSize),
		done:     make(chan struct{}),
		sessions: make(map[string]SessionState),
		finished: make(map[string]struct{}),
	}

	h.mu.Lock()
	old := h.conns[id]
	h.conns[id] = c
	h.mu.Unlock()

	if old != nil {
		old.close()
		h.metrics.ConnectionClosed()
		h.logger.Info().Str("connection_id", id).Msg("progress: connection replaced")
	}
	h.metrics.ConnectionOpened()
	return c
}

// Unregister removes the connection with id, if any.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	c, ok := h.conns[id]
	if ok {
		delete(h.conns, id)
	}
	h.mu.Unlock()
	if ok {
		c.close()
		h.metrics.ConnectionClosed()
	}
}

// release removes c only if it is still the registered connection for its
// id.
func (h *Hub) release(c *Connection) {
	h.mu.Lock()
	current, ok := h.conns[c.id]
	if ok && current == c {
		delete(h.conns, c.id)
	}
	h.mu.Unlock()
	if ok && current == c {
		c.close()
		h.metrics.ConnectionClosed()
	}
}

func (h *Hub) lookup(id string) (*Connection, error) {
	h.mu.RLock()
	c, ok := h.conns[id]
	h.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrConnectionNotFound, id)
	}
	return c, nil
}

// Len returns the number of registered connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Publish queues a progress event. Events for a mood board that already
// reached a terminal state are dropped. A completed or error stage ends the
// session.
func (h *Hub) Publish(connID string, ev domain.ProgressEvent) error {
	c, err := h.lookup(connID)
	if err != nil {
		return err
	}
	if ev.Message == "" && ev.MessageKey != "" {
		ev.Message = Message(c.locale, ev.MessageKey)
	}

	switch ev.Stage {
	case domain.StageCompleted:
		h.transition(c, ev.MoodBoardID, SessionCompleted, h.progressFrame(c, ev))
	case domain.StageError:
		h.transition(c, ev.MoodBoardID, SessionErrored, h.errorFrame(c, ev.MoodBoardID, ev.Message))
	default:
		h.transition(c, ev.MoodBoardID, SessionActive, h.progressFrame(c, ev))
	}
	return nil
}

// Complete emits the 100% event followed by the result and ends the
// session.
func (h *Hub) Complete(connID string, res domain.VisualizationResult) error {
	c, err := h.lookup(connID)
	if err != nil {
		return err
	}
	ev := domain.ProgressEvent{
		Stage:       domain.StageCompleted,
		Percentage:  100,
		MessageKey:  domain.MsgCompleted,
		Message:     Message(c.locale, domain.MsgCompleted),
		MoodBoardID: res.MoodBoardID,
	}
	h.transition(c, res.MoodBoardID, SessionCompleted,
		h.progressFrame(c, ev),
		h.completedFrame(c, res),
	)
	return nil
}

// Fail emits an error frame carrying message and ends the session. An empty
// message uses the localized generic failure text.
func (h *Hub) Fail(connID, moodBoardID, message string) error {
	c, err := h.lookup(connID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(message) == "" {
		message = Message(c.locale, domain.MsgFailed)
	}
	h.transition(c, moodBoardID, SessionErrored, h.errorFrame(c, moodBoardID, message))
	return nil
}

// Session reports the state of an active mood board. Finished sessions are
// discarded and report false.
func (h *Hub) Session(connID, moodBoardID string) (SessionState, bool) {
	c, err := h.lookup(connID)
	if err != nil {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.sessions[moodBoardID]
	return state, ok
}

// transition applies next to the session and queues frames under the same
// lock so concurrent publishers cannot reorder them.
func (h *Hub) transition(c *Connection, moodBoardID string, next SessionState, frames ...Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if _, done := c.finished[moodBoardID]; done {
		h.logger.Debug().
			Str("connection_id", c.id).
			Str("mood_board_id", moodBoardID).
			Msg("progress: dropping event for finished mood board")
		return
	}

	for _, f := range frames {
		select {
		case c.send <- f:
		default:
			h.logger.Warn().
				Str("connection_id", c.id).
				Str("type", f.Type).
				Msg("progress: outbound queue full; frame dropped")
		}
	}

	if next == SessionActive {
		c.sessions[moodBoardID] = SessionActive
		return
	}
	delete(c.sessions, moodBoardID)
	c.finished[moodBoardID] = struct{}{}
	c.order = append(c.order, moodBoardID)
	if len(c.order) > finishedLimit {
		delete(c.finished, c.order[0])
		c.order = c.order[1:]
	}
}

func (h *Hub) frame(c *Connection, frameType string) Frame {
	return Frame{Type: frameType, ConnectionID: c.id, Timestamp: h.now().UnixMilli()}
}

func (h *Hub) progressFrame(c *Connection, ev domain.ProgressEvent) Frame {
	f := h.frame(c, FrameProgress)
	f.MoodBoardID = ev.MoodBoardID
	f.Progress = &ev
	return f
}

func (h *Hub) completedFrame(c *Connection, res domain.VisualizationResult) Frame {
	f := h.frame(c, FrameCompleted)
	f.MoodBoardID = res.MoodBoardID
	f.MoodBoard = &res
	return f
}

func (h *Hub) errorFrame(c *Connection, moodBoardID, message string) Frame {
	f := h.frame(c, FrameError)
	f.MoodBoardID = moodBoardID
	f.Error = message
	return f
}

// enqueue sends a transport-level frame outside any session.
func (c *Connection) enqueue(f Frame) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- f:
		return true
	default:
		return false
	}
}

func (c *Connection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}
