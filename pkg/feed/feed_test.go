package feed

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fretcoach/fretcoach/pkg/core/session"
	"github.com/fretcoach/fretcoach/pkg/core/types"
)

type fakeSource struct {
	snap   session.Snapshot
	events chan session.Snapshot
}

func (s *fakeSource) Snapshot() session.Snapshot      { return s.snap }
func (s *fakeSource) Events() <-chan session.Snapshot { return s.events }

func TestStateHandlerServesSnapshot(t *testing.T) {
	source := &fakeSource{
		snap: session.Snapshot{
			SessionID: "01JX",
			Kind:      types.KindTuner,
			Phase:     session.PhaseRecording,
			Target:    types.Target{Kind: types.KindTuner, Name: "6"},
			Level:     0.42,
		},
		events: make(chan session.Snapshot),
	}
	hub := NewHub(source, nil)

	rec := httptest.NewRecorder()
	hub.StateHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/state", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var got session.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.Phase != session.PhaseRecording {
		t.Errorf("Phase = %v, want recording", got.Phase)
	}
	if got.Target.Name != "6" || got.Level != 0.42 {
		t.Errorf("snapshot = %+v", got)
	}
	if !strings.Contains(rec.Body.String(), `"phase":"recording"`) {
		t.Errorf("body = %s, want phase serialized by name", rec.Body.String())
	}
}

func TestWSHandlerStreamsTransitions(t *testing.T) {
	source := &fakeSource{
		snap:   session.Snapshot{SessionID: "01JX", Phase: session.PhaseIdle},
		events: make(chan session.Snapshot, 4),
	}
	hub := NewHub(source, nil)
	go hub.Run()

	srv := httptest.NewServer(hub.WSHandler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial snapshot arrives first.
	var first map[string]any
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	if first["phase"] != "idle" {
		t.Errorf("initial phase = %v, want idle", first["phase"])
	}

	source.events <- session.Snapshot{SessionID: "01JX", Phase: session.PhaseRecording}

	var second map[string]any
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("read transition: %v", err)
	}
	if second["phase"] != "recording" {
		t.Errorf("streamed phase = %v, want recording", second["phase"])
	}
}

func TestHubClosesSubscribersWhenSessionEnds(t *testing.T) {
	source := &fakeSource{events: make(chan session.Snapshot)}
	hub := NewHub(source, nil)
	go hub.Run()

	sub, cancel := hub.Subscribe()
	defer cancel()

	close(source.events)

	select {
	case _, ok := <-sub:
		if ok {
			t.Error("expected a closed channel, got a snapshot")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber channel not closed after session end")
	}
}

func TestSubscribeAfterCloseReturnsClosedChannel(t *testing.T) {
	source := &fakeSource{events: make(chan session.Snapshot)}
	hub := NewHub(source, nil)
	close(source.events)
	hub.Run() // returns immediately

	sub, cancel := hub.Subscribe()
	defer cancel()
	if _, ok := <-sub; ok {
		t.Error("subscription after session end must be closed")
	}
}
