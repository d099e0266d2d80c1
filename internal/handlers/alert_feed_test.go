package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/echo-project/crisis-engine/internal/testhelpers"
	"github.com/gorilla/websocket"
)

func dialFeed(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/alerts"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial feed: %v", err)
	}
	return conn
}

func waitForSubscribers(t *testing.T, feed *AlertFeedHandler, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if feed.SubscriberCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d subscribers, got %d", want, feed.SubscriberCount())
}

func TestAlertFeed_BroadcastReachesSubscribers(t *testing.T) {
	feed := NewAlertFeedHandler()
	mux := http.NewServeMux()
	feed.SetupRoutes(mux)
	server := httptest.NewServer(mux)
	defer server.Close()

	conn := dialFeed(t, server)
	defer conn.Close()
	waitForSubscribers(t, feed, 1)

	incident := testhelpers.NewIncidentBuilder().
		WithID("incident-1").
		WithCategories("incendie").
		Build()
	alert := testhelpers.NewAlertBuilder().
		WithID("alert-1").
		WithIncidentID("incident-1").
		WithSeverity(5).
		WithSummary("Incendie majeur").
		Build()

	feed.BroadcastNewAlert(&alert, &incident)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg AlertFeedMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("failed to read broadcast: %v", err)
	}

	if msg.Type != "new_alert" || msg.AlertID != "alert-1" || msg.IncidentID != "incident-1" {
		t.Errorf("unexpected message: %+v", msg)
	}
	if msg.Severity != 5 || len(msg.Categories) != 1 {
		t.Errorf("alert details not forwarded: %+v", msg)
	}
}

func TestAlertFeed_DisconnectedSubscriberRemoved(t *testing.T) {
	feed := NewAlertFeedHandler()
	mux := http.NewServeMux()
	feed.SetupRoutes(mux)
	server := httptest.NewServer(mux)
	defer server.Close()

	conn := dialFeed(t, server)
	waitForSubscribers(t, feed, 1)

	conn.Close()
	waitForSubscribers(t, feed, 0)
}

func TestAlertFeed_ConcurrentBroadcasts(t *testing.T) {
	feed := NewAlertFeedHandler()
	mux := http.NewServeMux()
	feed.SetupRoutes(mux)
	server := httptest.NewServer(mux)
	defer server.Close()

	conn := dialFeed(t, server)
	defer conn.Close()
	waitForSubscribers(t, feed, 1)

	// A ticker run and a manual trigger can escalate at the same time.
	// Writes to one connection must be serialized.
	const broadcasts = 20
	var wg sync.WaitGroup
	for i := 0; i < broadcasts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			alert := testhelpers.NewAlertBuilder().
				WithID(fmt.Sprintf("alert-%d", n)).
				WithSeverity(4).
				Build()
			feed.BroadcastNewAlert(&alert, nil)
		}(i)
	}
	wg.Wait()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	seen := make(map[string]bool)
	for i := 0; i < broadcasts; i++ {
		var msg AlertFeedMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("failed to read broadcast %d: %v", i, err)
		}
		if seen[msg.AlertID] {
			t.Fatalf("duplicate alert delivered: %s", msg.AlertID)
		}
		seen[msg.AlertID] = true
	}
	if len(seen) != broadcasts {
		t.Errorf("expected %d distinct alerts, got %d", broadcasts, len(seen))
	}
}

func TestAlertFeed_BroadcastWithoutSubscribers(t *testing.T) {
	feed := NewAlertFeedHandler()
	alert := testhelpers.NewAlertBuilder().Build()
	// Must not panic or block
	feed.BroadcastNewAlert(&alert, nil)
}
