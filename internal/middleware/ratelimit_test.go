package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLoginLimiterBlocksAfterLimit(t *testing.T) {
	l := NewLoginLimiter(3, time.Minute)
	defer l.Stop()
	handler := l.Middleware(okHandler())

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
		r.RemoteAddr = "203.0.113.7:5000"
		handler.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("attempt %d: status = %d, want 200", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
	r.RemoteAddr = "203.0.113.7:5000"
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
}

func TestLoginLimiterIsolatesClients(t *testing.T) {
	l := NewLoginLimiter(1, time.Minute)
	defer l.Stop()
	handler := l.Middleware(okHandler())

	first := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
	first.RemoteAddr = "203.0.113.7:5000"
	handler.ServeHTTP(httptest.NewRecorder(), first)

	w := httptest.NewRecorder()
	second := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
	second.RemoteAddr = "198.51.100.9:5000"
	handler.ServeHTTP(w, second)

	if w.Code != http.StatusOK {
		t.Errorf("other client blocked: status = %d", w.Code)
	}
}

func TestLoginLimiterWindowExpires(t *testing.T) {
	l := NewLoginLimiter(1, 20*time.Millisecond)
	defer l.Stop()

	if !l.allow("client") {
		t.Fatal("first attempt blocked")
	}
	if l.allow("client") {
		t.Fatal("second attempt inside window allowed")
	}

	time.Sleep(30 * time.Millisecond)
	if !l.allow("client") {
		t.Error("attempt after window expiry blocked")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{"forwarded single", "203.0.113.7", "", "10.0.0.1:80", "203.0.113.7"},
		{"forwarded chain", "203.0.113.7, 10.0.0.2", "", "10.0.0.1:80", "203.0.113.7"},
		{"real ip", "", "203.0.113.8", "10.0.0.1:80", "203.0.113.8"},
		{"remote addr", "", "", "203.0.113.9:4321", "203.0.113.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := clientIP(r); got != tt.want {
				t.Errorf("clientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
