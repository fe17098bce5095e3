package progress

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	readLimit    = 4096
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = 5 * time.Second
)

// Handler upgrades requests to WebSocket connections registered on the hub.
// The client picks its id with ?connection_id=; otherwise one is generated
// and announced in the connection_established frame.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
	locale   func(*http.Request) string
}

// NewHandler builds the transport. locale resolves the request locale when
// the client does not pass ?locale=; nil means the default locale.
// allowedOrigins uses the CORS list: "*" or an empty list accepts any
// origin, otherwise browsers must come from a listed origin or the API host.
func NewHandler(hub *Hub, logger zerolog.Logger, locale func(*http.Request) string, allowedOrigins []string) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
		logger: logger,
		locale: locale,
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	allow := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if o != "" {
			allow[strings.ToLower(o)] = struct{}{}
		}
	}
	if len(allow) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := allow[strings.ToLower(origin)]; ok {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug().Err(err).Msg("progress: websocket upgrade failed")
		return
	}
	defer ws.Close()

	locale := strings.TrimSpace(r.URL.Query().Get("locale"))
	if locale == "" && h.locale != nil {
		locale = h.locale(r)
	}
	conn := h.hub.Register(r.URL.Query().Get("connection_id"), locale)
	defer h.hub.release(conn)

	log := h.logger.With().Str("connection_id", conn.ID()).Logger()
	log.Info().Str("locale", conn.Locale()).Msg("progress: client connected")
	defer log.Info().Msg("progress: client disconnected")

	hello := h.hub.frame(conn, FrameConnectionEstablished)
	hello.Locale = conn.Locale()
	conn.enqueue(hello)

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		ws.SetReadLimit(readLimit)
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			msgType, payload, err := ws.ReadMessage()
			if err != nil {
				return
			}
			_ = ws.SetReadDeadline(time.Now().Add(pongWait))
			if msgType != websocket.TextMessage {
				continue
			}
			ack := h.hub.frame(conn, FrameAck)
			ack.Received = string(payload)
			if !conn.enqueue(ack) {
				log.Warn().Msg("progress: ack dropped")
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	// This goroutine is the only writer on ws.
	for {
		select {
		case <-r.Context().Done():
			return
		case <-readerDone:
			return
		case <-conn.Done():
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replaced"),
				time.Now().Add(writeWait))
			return
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case frame := <-conn.Frames():
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteJSON(frame); err != nil {
				log.Debug().Err(err).Str("type", frame.Type).Msg("progress: write failed")
				return
			}
		}
	}
}
