package telegram_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"tvilstat/internal/adapters/telegram"
)

func TestNotify_SendsMessage(t *testing.T) {
	var gotPath atomic.Value
	var gotBody atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotBody.Store(body)
		w.WriteHeader(200)
	}))
	defer ts.Close()

	n := telegram.New(ts.URL, "token123", "42")
	n.Notify(context.Background(), "Tvil: статистика сформирована.")

	if p, _ := gotPath.Load().(string); p != "/bottoken123/sendMessage" {
		t.Fatalf("unexpected path: %q", p)
	}
	body, _ := gotBody.Load().(map[string]any)
	if body["chat_id"] != "42" {
		t.Fatalf("chat_id: %v", body["chat_id"])
	}
	if body["text"] != "Tvil: статистика сформирована." {
		t.Fatalf("text: %v", body["text"])
	}
	if body["disable_web_page_preview"] != true {
		t.Fatalf("preview flag: %v", body["disable_web_page_preview"])
	}
}

func TestNotify_TruncatesLongMessages(t *testing.T) {
	var gotText atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotText.Store(body["text"])
		w.WriteHeader(200)
	}))
	defer ts.Close()

	n := telegram.New(ts.URL, "t", "c")
	// multibyte runes so a byte-level cut would corrupt the tail
	n.Notify(context.Background(), strings.Repeat("ж", 5000))

	text, _ := gotText.Load().(string)
	if utf8.RuneCountInString(text) != 4096 {
		t.Fatalf("expected 4096 runes, got %d", utf8.RuneCountInString(text))
	}
	if !utf8.ValidString(text) {
		t.Fatalf("truncation produced invalid UTF-8")
	}
}

func TestNotify_DisabledWithoutConfig(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer ts.Close()

	telegram.New(ts.URL, "", "42").Notify(context.Background(), "x")
	telegram.New(ts.URL, "token", "").Notify(context.Background(), "x")
	telegram.New(ts.URL, "token", "42").Notify(context.Background(), "   ")

	if n := atomic.LoadInt32(&hits); n != 0 {
		t.Fatalf("expected no sends, got %d", n)
	}
}

func TestNotify_ServerErrorIsSwallowed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(500)
	}))
	defer ts.Close()

	// must not panic or surface anything
	telegram.New(ts.URL, "t", "c").Notify(context.Background(), "x")
}
