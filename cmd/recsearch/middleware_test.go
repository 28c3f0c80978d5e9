package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	logpkg "github.com/kailas-cloud/recsearch/internal/logger"
)

func TestJSONRecoverer(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := jsonRecoverer(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/recommendations/x", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["code"] != "internal_error" {
		t.Errorf("body = %v", body)
	}
	if logs.Len() != 1 {
		t.Errorf("logged %d entries", logs.Len())
	}
}

func TestWideEventMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	var ctxLogged bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logpkg.FromContext(r.Context()).Info("inside")
		ctxLogged = true
		w.WriteHeader(http.StatusTeapot)
	})
	h := chiMiddleware.RequestID(wideEventMiddleware(zap.New(core))(inner))

	req := httptest.NewRequest(http.MethodPost, "/v1/recommendations/search", http.NoBody)
	req.Header.Set("submission-id", "SUB1.1.0")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if !ctxLogged || rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("request id not propagated")
	}
	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("canonical lines = %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) || fields["submission_id"] != "SUB1.1.0" {
		t.Errorf("fields = %v", fields)
	}
	inside := logs.FilterMessage("inside").All()
	if len(inside) != 1 || inside[0].ContextMap()["request_id"] == "" {
		t.Error("inner logger lacks request_id")
	}
}
