package common

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendJSON_OK(t *testing.T) {
	var gotAuth, gotReqID string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type: got %q", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	ctx := WithRequestID(context.Background(), "req-42")
	raw, status, err := SendJSON(ctx, srv.Client(), srv.URL, map[string]any{"navio_id": "NV001"},
		map[string]string{"Authorization": "ApiKey k"}, nil)
	if err != nil {
		t.Fatalf("SendJSON: %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("status: got %d, want 200", status)
	}
	if string(raw) != `{"ok":true}` {
		t.Errorf("body: got %s", raw)
	}
	if gotAuth != "ApiKey k" {
		t.Errorf("auth header: got %q", gotAuth)
	}
	if gotReqID != "req-42" {
		t.Errorf("request id: got %q, want req-42", gotReqID)
	}
	if gotBody["navio_id"] != "NV001" {
		t.Errorf("payload: got %v", gotBody)
	}
}

func TestSendJSON_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer srv.Close()

	raw, status, err := SendJSON(context.Background(), srv.Client(), srv.URL, map[string]any{}, nil, nil)
	if err == nil {
		t.Fatal("expected error for 401")
	}
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("got %T, want *StatusError", err)
	}
	if se.StatusCode != http.StatusUnauthorized || status != http.StatusUnauthorized {
		t.Errorf("status: got %d/%d, want 401", se.StatusCode, status)
	}
	if len(raw) == 0 {
		t.Error("body should be returned alongside the error")
	}
}
