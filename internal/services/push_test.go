package services

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carlosvillalobossalas/mejengas-backend/internal/config"
)

func TestGetPushAdapter(t *testing.T) {
	if _, ok := getPushAdapter("expo").(*expoAdapter); !ok {
		t.Error("expected expo adapter for provider expo")
	}
	if _, ok := getPushAdapter("fcm").(*fcmAdapter); !ok {
		t.Error("expected fcm adapter for provider fcm")
	}
	if _, ok := getPushAdapter("").(*noopAdapter); !ok {
		t.Error("expected noop adapter for empty provider")
	}
	if _, ok := getPushAdapter("none").(*noopAdapter); !ok {
		t.Error("expected noop adapter for unknown provider")
	}
}

func TestExpoAdapter_BatchesTokens(t *testing.T) {
	var batches [][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var msg expoPushMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			t.Errorf("malformed request body: %v", err)
		}
		if msg.Sound != "default" {
			t.Errorf("expected sound %q, got %q", "default", msg.Sound)
		}
		batches = append(batches, msg.To)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tokens := make([]string, 250)
	for i := range tokens {
		tokens[i] = "ExponentPushToken[x]"
	}

	adapter := &expoAdapter{}
	cfg := &config.PushConfig{Provider: "expo", Endpoint: server.URL}
	task := &PushTask{UserID: 1, Title: "Next match", Body: "Saturday 10am"}

	if err := adapter.Send(cfg, tokens, task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(batches) != 3 {
		t.Fatalf("expected 250 tokens split into 3 requests, got %d", len(batches))
	}
	if len(batches[0]) != 100 || len(batches[1]) != 100 || len(batches[2]) != 50 {
		t.Errorf("batch sizes wrong: %d, %d, %d", len(batches[0]), len(batches[1]), len(batches[2]))
	}
}

func TestFCMAdapter_Send(t *testing.T) {
	var got fcmPushMessage
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("malformed request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	adapter := &fcmAdapter{}
	cfg := &config.PushConfig{Provider: "fcm", Endpoint: server.URL, APIKey: "server-key"}
	task := &PushTask{UserID: 1, Title: "Invitation", Body: "You were invited", Data: map[string]string{"type": "invite"}}

	if err := adapter.Send(cfg, []string{"t1", "t2"}, task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.RegistrationIDs) != 2 {
		t.Errorf("expected 2 registration ids, got %d", len(got.RegistrationIDs))
	}
	if got.Notification.Title != "Invitation" {
		t.Errorf("expected title carried through, got %q", got.Notification.Title)
	}
	if got.Data["type"] != "invite" {
		t.Errorf("expected data payload carried through, got %v", got.Data)
	}
	if auth != "Bearer server-key" {
		t.Errorf("expected bearer auth header, got %q", auth)
	}
}

func TestPostPushJSON_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusBadRequest)
	}))
	defer server.Close()

	if err := postPushJSON(server.URL, "", map[string]string{}); err == nil {
		t.Error("expected an error for a 4xx response")
	}
}

func TestNoopAdapter(t *testing.T) {
	adapter := &noopAdapter{}
	if err := adapter.Send(&config.PushConfig{}, []string{"t1"}, &PushTask{}); err != nil {
		t.Errorf("noop adapter should never fail, got %v", err)
	}
}
