package genai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAnswerSuccess(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"42 samples"}]}}]}`))
	}))
	defer srv.Close()

	client := NewClient("secret", WithBaseURL(srv.URL))
	answer, err := client.Answer(context.Background(), "how many?")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if answer != "42 samples" {
		t.Fatalf("unexpected answer %q", answer)
	}
	if gotPath != "/models/gemini-1.5-pro:generateContent" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotKey != "secret" {
		t.Fatalf("key not passed as query param")
	}
	cfg, ok := gotBody["generationConfig"].(map[string]any)
	if !ok {
		t.Fatalf("missing generationConfig in %v", gotBody)
	}
	if cfg["maxOutputTokens"] != float64(200) || cfg["topK"] != float64(40) {
		t.Fatalf("unexpected generation config %v", cfg)
	}
}

func TestAnswerNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL))
	_, err := client.Answer(context.Background(), "q")
	var se StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected code %d", se.Code)
	}
	if !strings.Contains(se.Body, "quota exceeded") {
		t.Fatalf("body not captured: %q", se.Body)
	}
}

func TestAnswerMalformedBody(t *testing.T) {
	cases := []string{
		`not json`,
		`{"candidates":[]}`,
		`{"candidates":[{"content":{"parts":[]}}]}`,
	}
	for _, body := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		client := NewClient("k", WithBaseURL(srv.URL))
		_, err := client.Answer(context.Background(), "q")
		srv.Close()
		if !errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("body %q: expected ErrMalformedResponse, got %v", body, err)
		}
	}
}

func TestAnswerTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections

	client := NewClient("k", WithBaseURL(srv.URL))
	if _, err := client.Answer(context.Background(), "q"); err == nil {
		t.Fatalf("expected transport error")
	}
}
