package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiterPacesRequests(t *testing.T) {
	l := NewLimiter(50, 1)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := l.Wait(ctx, "https://www.sec.gov/Archives/a.htm"); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	// 4 paced waits at 50 req/s is at least 80ms.
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Errorf("5 requests took %v, expected pacing", elapsed)
	}
}

func TestLimiterHostsAreIndependent(t *testing.T) {
	l := NewLimiter(1, 1)
	l.SetHostRate("fast.example.com", 1000, 100)
	ctx := context.Background()

	// Drain the slow host's burst so it would block next time.
	if err := l.Wait(ctx, "https://slow.example.com/x"); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	start := time.Now()
	for i := 0; i < 10; i++ {
		if err := l.Wait(ctx, "https://fast.example.com/x"); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("fast host throttled by slow host: %v", elapsed)
	}
}

func TestLimiterWaitHonorsCancel(t *testing.T) {
	l := NewLimiter(0.1, 1)
	ctx := context.Background()

	// Use up the single burst token.
	if err := l.Wait(ctx, "https://www.sec.gov/x"); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "https://www.sec.gov/x"); err == nil {
		t.Error("expected error waiting past context deadline")
	}
}

func TestLimiterRejectsBadURL(t *testing.T) {
	l := NewLimiter(1, 1)
	if err := l.Wait(context.Background(), "://not a url"); err == nil {
		t.Error("expected parse error")
	}
}

func TestLimiterWaitWithDelay(t *testing.T) {
	l := NewLimiter(1000, 10)
	start := time.Now()
	if err := l.WaitWithDelay(context.Background(), "https://www.sec.gov/x", 30*time.Millisecond); err != nil {
		t.Fatalf("WaitWithDelay: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("delay not applied: %v", elapsed)
	}
}
