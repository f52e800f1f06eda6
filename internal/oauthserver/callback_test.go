package oauthserver

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestServer_WaitReceivesCode(t *testing.T) {
	s := New("127.0.0.1:0", "xyz")
	if err := s.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		resp, err := http.Get("http://" + s.Addr() + "/callback?code=abc123&state=xyz")
		if err != nil {
			t.Errorf("callback request failed: %v", err)
			return
		}
		resp.Body.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	result, err := s.Wait(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Code != "abc123" || result.State != "xyz" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestServer_WaitRejectsBadState(t *testing.T) {
	s := New("127.0.0.1:0", "expected")
	if err := s.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		resp, err := http.Get("http://" + s.Addr() + "/callback?code=abc123&state=wrong")
		if err != nil {
			t.Errorf("callback request failed: %v", err)
			return
		}
		resp.Body.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := s.Wait(ctx); err == nil {
		t.Fatal("expected error for mismatched state")
	}
}

func TestServer_WaitTimesOut(t *testing.T) {
	s := New("127.0.0.1:0", "xyz")
	if err := s.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := s.Wait(ctx); err == nil {
		t.Fatal("expected context deadline error")
	}
}
