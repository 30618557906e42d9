package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmagar/workshop-cli/internal/model"
)

func TestSend(t *testing.T) {
	var got gotifyMessage
	var token, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = r.Header.Get("X-Gotify-Token")
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	notifier := BuildNotifier(srv.URL+"/", "secret")
	if notifier == nil {
		t.Fatal("BuildNotifier returned nil")
	}
	if err := notifier(context.Background(), model.SeverityError, "Workshop", "Download cancelled."); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if token != "secret" || path != "/message" {
		t.Fatalf("token=%q path=%q", token, path)
	}
	if got.Title != "Workshop" || got.Message != "Download cancelled." || got.Priority != 8 {
		t.Fatalf("body = %+v", got)
	}
}

func TestSend_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()
	if err := Send(context.Background(), srv.URL, "bad", "t", "m", 1); err == nil {
		t.Fatal("expected error for 401")
	}
}

func TestBuildNotifier_Disabled(t *testing.T) {
	if BuildNotifier("", "tok") != nil || BuildNotifier("http://x", "") != nil {
		t.Fatal("notifier built without url and token")
	}
	if err := Send(context.Background(), "", "", "t", "m", 1); err != nil {
		t.Fatalf("disabled Send: %v", err)
	}
}

func TestPriority(t *testing.T) {
	if Priority(model.SeverityInfo) >= Priority(model.SeverityWarning) || Priority(model.SeverityWarning) >= Priority(model.SeverityError) {
		t.Fatal("priorities not ordered by severity")
	}
}
