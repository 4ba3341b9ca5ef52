package webserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ichi0g0y/spin-the-wheel/internal/types"
	"github.com/ichi0g0y/spin-the-wheel/internal/wheel"
)

func dialOverlay(t *testing.T, query string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(NewMux())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("failed to read event: %v", err)
	}
	return ev
}

func TestFeed_HelloThenLiveEvents(t *testing.T) {
	SetManager(nil)
	conn := dialOverlay(t, "?clientId=overlay-1")

	hello := readEvent(t, conn)
	if hello.Type != EventHello || !strings.Contains(string(hello.Data), "overlay-1") {
		t.Fatalf("unexpected first event: %s %s", hello.Type, hello.Data)
	}

	WSBroadcaster{}.Broadcast(wheel.EventButtonPressed, map[string]any{"user_id": 9})

	ev := readEvent(t, conn)
	if ev.Type != wheel.EventButtonPressed {
		t.Fatalf("unexpected type: got=%q want=%q", ev.Type, wheel.EventButtonPressed)
	}
	if ev.Seq != hello.Seq+1 {
		t.Fatalf("unexpected seq: got=%d want=%d", ev.Seq, hello.Seq+1)
	}
	var data map[string]int
	if err := json.Unmarshal(ev.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if data["user_id"] != 9 {
		t.Fatalf("unexpected data: %v", data)
	}
}

func TestFeed_SnapshotOnConnect(t *testing.T) {
	m := setupTestManager(t)
	m.GrantPrize(context.Background(), types.Target{UserID: 42, Username: "alice"}, "Gold")

	conn := dialOverlay(t, "")
	if ev := readEvent(t, conn); ev.Type != EventHello {
		t.Fatalf("unexpected first event: %s", ev.Type)
	}

	ev := readEvent(t, conn)
	if ev.Type != EventSnapshot {
		t.Fatalf("unexpected second event: got=%q want=%q", ev.Type, EventSnapshot)
	}
	var snap Snapshot
	if err := json.Unmarshal(ev.Data, &snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if !snap.SpinEnabled || snap.Button.State != m.ButtonStatus().State {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if got := snap.Holdings["Gold"]; len(got) != 1 || got[0] != 42 {
		t.Fatalf("unexpected holdings: %v", snap.Holdings)
	}
}

func TestFeed_ReplaysSince(t *testing.T) {
	SetManager(nil)
	before := overlay.lastSeq()
	WSBroadcaster{}.Broadcast(wheel.EventSpinResult, map[string]any{"user_id": 1})
	WSBroadcaster{}.Broadcast(wheel.EventPrizeGranted, map[string]any{"user_id": 2})

	conn := dialOverlay(t, fmt.Sprintf("?since=%d", before+1))
	if ev := readEvent(t, conn); ev.Type != EventHello || ev.Seq != before+2 {
		t.Fatalf("unexpected hello: %+v", ev)
	}

	ev := readEvent(t, conn)
	if ev.Type != wheel.EventPrizeGranted || ev.Seq != before+2 {
		t.Fatalf("unexpected replayed event: %+v", ev)
	}
}

func TestFeed_KeepsRecentOnly(t *testing.T) {
	f := newFeed()
	for i := 0; i < replaySize+10; i++ {
		f.publish(wheel.EventSpinResult, i)
	}

	c := &overlayClient{id: "a", out: make(chan Event, 1)}
	seq, backlog := f.attach(c, 0)
	if seq != replaySize+10 {
		t.Fatalf("unexpected seq: %d", seq)
	}
	if len(backlog) != replaySize {
		t.Fatalf("unexpected backlog length: got=%d want=%d", len(backlog), replaySize)
	}
	if backlog[0].Seq != 11 {
		t.Fatalf("unexpected oldest event: got=%d want=11", backlog[0].Seq)
	}
}

func TestFeed_DropsSlowClient(t *testing.T) {
	f := newFeed()
	c := &overlayClient{id: "slow", out: make(chan Event, 1)}
	f.attach(c, 0)

	f.publish(wheel.EventSpinResult, 1)
	f.publish(wheel.EventSpinResult, 2)

	if got := f.count(); got != 0 {
		t.Fatalf("slow client not dropped: %d", got)
	}
	<-c.out
	if _, ok := <-c.out; ok {
		t.Fatalf("slow client channel should be closed")
	}
}

func TestMetricsRoute(t *testing.T) {
	srv := httptest.NewServer(NewMux())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status mismatch: got=%d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "spin_the_wheel_") {
		t.Fatalf("metrics body missing namespace")
	}
}
