package webserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ichi0g0y/spin-the-wheel/internal/shared/logger"
	"github.com/ichi0g0y/spin-the-wheel/internal/wheel"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

// Event is one overlay update. Seq increases by one per published event so
// a reconnecting overlay can ask for what it missed.
type Event struct {
	Seq  uint64          `json:"seq"`
	Type string          `json:"type"`
	At   time.Time       `json:"at"`
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	EventHello    = "hello"
	EventSnapshot = "snapshot"

	replaySize   = 64
	clientBuffer = 64

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// Snapshot is sent to every overlay right after it connects.
type Snapshot struct {
	SpinEnabled bool               `json:"spin_enabled"`
	Button      wheel.ButtonStatus `json:"button"`
	Holdings    map[string][]int64 `json:"holdings"`
}

type overlayClient struct {
	id   string
	conn *websocket.Conn
	out  chan Event
	once sync.Once
}

func (c *overlayClient) close() {
	c.once.Do(func() { close(c.out) })
}

// feed fans wheel events out to overlay clients and keeps the latest ones
// for replay.
type feed struct {
	mu      sync.Mutex
	seq     uint64
	recent  []Event
	clients map[string]*overlayClient
}

var overlay = newFeed()

func newFeed() *feed {
	return &feed{clients: make(map[string]*overlayClient)}
}

func (f *feed) publish(eventType string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		logger.Error("Failed to marshal overlay event", zap.String("type", eventType), zap.Error(err))
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	ev := Event{Seq: f.seq, Type: eventType, At: time.Now().UTC(), Data: raw}
	f.recent = append(f.recent, ev)
	if len(f.recent) > replaySize {
		f.recent = f.recent[len(f.recent)-replaySize:]
	}

	for id, c := range f.clients {
		select {
		case c.out <- ev:
		default:
			logger.Warn("Overlay client too slow, dropping it", zap.String("client_id", id))
			delete(f.clients, id)
			c.close()
		}
	}
}

// attach registers c and returns the current sequence number along with the
// retained events newer than since.
func (f *feed) attach(c *overlayClient, since uint64) (uint64, []Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if old, ok := f.clients[c.id]; ok {
		old.close()
	}
	f.clients[c.id] = c

	var backlog []Event
	for _, ev := range f.recent {
		if ev.Seq > since {
			backlog = append(backlog, ev)
		}
	}
	return f.seq, backlog
}

func (f *feed) detach(c *overlayClient) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cur, ok := f.clients[c.id]; ok && cur == c {
		delete(f.clients, c.id)
		c.close()
	}
}

func (f *feed) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

func (f *feed) lastSeq() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seq
}

// WSBroadcaster publishes wheel events to the overlay feed.
type WSBroadcaster struct{}

func (WSBroadcaster) Broadcast(eventType string, data any) {
	overlay.publish(eventType, data)
}

var wsUpgrader = websocket.Upgrader{
	// overlays are loaded from OBS browser sources with arbitrary origins
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleWS upgrades an overlay connection. Clients passing ?since=N get the
// retained events after N replayed before live ones.
func handleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clientID := q.Get("clientId")
	if clientID == "" {
		clientID = newClientID()
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Failed to upgrade overlay connection", zap.Error(err))
		return
	}

	c := &overlayClient{id: clientID, conn: conn, out: make(chan Event, clientBuffer)}

	since := ^uint64(0)
	if s := q.Get("since"); s != "" {
		if n, err := strconv.ParseUint(s, 10, 64); err == nil {
			since = n
		}
	}
	seq, backlog := overlay.attach(c, since)
	logger.Info("Overlay connected",
		zap.String("client_id", clientID),
		zap.Int("replayed", len(backlog)),
		zap.Int("clients", overlay.count()))

	greeting := []Event{helloEvent(clientID, seq)}
	if snap, ok := snapshotEvent(seq); ok {
		greeting = append(greeting, snap)
	}

	go c.writeLoop(append(greeting, backlog...))
	go c.readLoop()
}

func helloEvent(clientID string, seq uint64) Event {
	raw, _ := json.Marshal(map[string]any{"client_id": clientID, "seq": seq})
	return Event{Seq: seq, Type: EventHello, At: time.Now().UTC(), Data: raw}
}

func snapshotEvent(seq uint64) (Event, bool) {
	m := currentManager()
	if m == nil {
		return Event{}, false
	}
	raw, err := json.Marshal(Snapshot{
		SpinEnabled: m.SpinEnabled(),
		Button:      m.ButtonStatus(),
		Holdings:    m.Holdings(),
	})
	if err != nil {
		logger.Error("Failed to marshal overlay snapshot", zap.Error(err))
		return Event{}, false
	}
	return Event{Seq: seq, Type: EventSnapshot, At: time.Now().UTC(), Data: raw}, true
}

func (c *overlayClient) writeLoop(greeting []Event) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for _, ev := range greeting {
		if !c.write(ev) {
			return
		}
	}

	for {
		select {
		case ev, ok := <-c.out:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if !c.write(ev) {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (c *overlayClient) write(ev Event) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(ev); err != nil {
		logger.Debug("Overlay write failed", zap.String("client_id", c.id), zap.Error(err))
		return false
	}
	return true
}

// readLoop only services pongs and close frames. Overlays never send data.
func (c *overlayClient) readLoop() {
	defer func() {
		overlay.detach(c)
		c.conn.Close()
		logger.Info("Overlay disconnected", zap.String("client_id", c.id))
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("Overlay read error", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}
	}
}

func newClientID() string {
	id, err := gonanoid.New()
	if err != nil {
		return "overlay-" + strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return "overlay-" + id
}
