package controlapi

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"sonance/internal/mixaudio"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// TelemetryHub fans the mixer's drained latency samples and voice
// count out to every connected diagnostic client (the /mixer/ws
// endpoint), the same register/unregister/broadcast hub shape used
// elsewhere in the corpus for game-state fan-out.
type TelemetryHub struct {
	clients    map[*websocket.Conn]struct{}
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.RWMutex
}

// NewTelemetryHub constructs an idle hub; call Run to start it.
func NewTelemetryHub() *TelemetryHub {
	return &TelemetryHub{
		clients:    make(map[*websocket.Conn]struct{}),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

// Run drives the hub's register/unregister/broadcast loop. Intended
// to run in its own goroutine for the process lifetime.
func (h *TelemetryHub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			count := len(h.clients)
			h.mu.Unlock()
			UpdateWSConnections(count)

		case message := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast marshals event/data as JSON and queues it for every
// connected client; a full queue silently drops the message.
func (h *TelemetryHub) Broadcast(event string, data interface{}) {
	msg := map[string]interface{}{"event": event, "data": data}
	jsonBytes, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- jsonBytes:
	default:
	}
}

// ClientCount reports the number of connected telemetry clients.
func (h *TelemetryHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StartBroadcastLoop periodically drains the mixer's latency samples
// and voice count and pushes them to every connected client.
func (h *TelemetryHub) StartBroadcastLoop(mixer *mixaudio.Mixer) {
	ticker := time.NewTicker(100 * time.Millisecond)
	go func() {
		for range ticker.C {
			samples := mixer.DrainLatencySamples()
			for _, s := range samples {
				RecordLatencySample(s)
			}
			voiceCount := mixer.VoiceCount()
			UpdateActiveVoices(voiceCount)

			if h.ClientCount() == 0 {
				continue
			}
			telemetry := mixer.Voices()
			voices := make([]map[string]interface{}, len(telemetry))
			for i, v := range telemetry {
				voices[i] = map[string]interface{}{
					"id":       v.ID,
					"position": v.Position,
					"paused":   v.Paused,
				}
			}
			h.Broadcast("mixer:telemetry", map[string]interface{}{
				"active_voices":   voiceCount,
				"latency_samples": samples,
				"voices":          voices,
			})
		}
	}()
}

// HandleWebSocket upgrades a request to a telemetry WebSocket stream.
func (h *TelemetryHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("⚠️ control API websocket upgrade error: %v", err)
		return
	}
	h.register <- conn

	go func() {
		defer func() { h.unregister <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
