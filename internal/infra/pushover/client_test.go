package pushover_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"insteon-alert/internal/domain"
	"insteon-alert/internal/infra/pushover"
)

func TestClient_Notify(t *testing.T) {
	var gotMessage, gotPriority, gotToken string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing form: %v", err)
		}
		gotToken = r.PostForm.Get("token")
		gotMessage = r.PostForm.Get("message")
		gotPriority = r.PostForm.Get("priority")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := pushover.NewClientWithURL("app-token", "user-key", server.URL)

	summary := domain.RunSummary{
		Command:   "beep_two_times",
		Devices:   []domain.DeviceID{"AABBCC"},
		Attempts:  2,
		Succeeded: 1,
		Failed:    1,
	}

	if err := client.Notify(context.Background(), summary); err != nil {
		t.Fatalf("Notify error: %v", err)
	}

	if gotToken != "app-token" {
		t.Errorf("token: got %s, want app-token", gotToken)
	}
	if gotMessage != summary.String() {
		t.Errorf("message: got %q, want %q", gotMessage, summary.String())
	}
	if gotPriority != "1" {
		t.Errorf("priority: got %q, want 1", gotPriority)
	}
}

func TestClient_NotifyError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusBadRequest)
	}))
	defer server.Close()

	client := pushover.NewClientWithURL("app-token", "user-key", server.URL)

	if err := client.Notify(context.Background(), domain.RunSummary{Command: "on"}); err == nil {
		t.Error("expected error for 400 response")
	}
}

func TestClient_NotifyUnconfigured(t *testing.T) {
	client := pushover.NewClientWithURL("", "", "http://127.0.0.1:1")

	if err := client.Notify(context.Background(), domain.RunSummary{}); err != nil {
		t.Errorf("unconfigured client should be a no-op, got %v", err)
	}
}
