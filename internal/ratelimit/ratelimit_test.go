package ratelimit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestMemoryLimiterAllowThenBlock(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := l.Allow(ctx, "k", 3)
		if err != nil {
			t.Fatalf("Allow failed: %v", err)
		}
		if !allowed {
			t.Fatalf("request %d was blocked under the limit", i+1)
		}
	}

	allowed, err := l.Allow(ctx, "k", 3)
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if allowed {
		t.Fatal("request over the limit was allowed")
	}
}

func TestMemoryLimiterWindowReset(t *testing.T) {
	l := NewMemoryLimiter()
	now := time.Now()
	l.now = func() time.Time { return now }
	ctx := context.Background()

	l.Allow(ctx, "k", 1)
	if allowed, _ := l.Allow(ctx, "k", 1); allowed {
		t.Fatal("second request in window was allowed")
	}

	// 窓が終わればカウンタは巻き戻る
	now = now.Add(window + time.Second)
	if allowed, _ := l.Allow(ctx, "k", 1); !allowed {
		t.Fatal("request after window reset was blocked")
	}
}

func TestMemoryLimiterKeyIsolation(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()

	l.Allow(ctx, "a", 1)
	if allowed, _ := l.Allow(ctx, "a", 1); allowed {
		t.Fatal("key a over limit was allowed")
	}
	if allowed, _ := l.Allow(ctx, "b", 1); !allowed {
		t.Fatal("key b was blocked by key a's counter")
	}
}

func TestPerMinuteMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/login", PerMinute(NewMemoryLimiter(), "login", 2), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "OK", "data": nil})
	})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("over-limit status = %d, want 429", rec.Code)
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if payload.Message != "TOO_MANY_REQUESTS" {
		t.Fatalf("unexpected message: %s", payload.Message)
	}
}
