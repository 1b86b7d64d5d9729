package signal

import "testing"

func TestRateLimiter_PerConnectionBuckets(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatalf("burst of 2 was not allowed")
	}
	if rl.Allow("a") {
		t.Fatalf("third frame allowed past the burst")
	}
	if !rl.Allow("b") {
		t.Fatalf("a's bucket throttled b")
	}

	rl.Forget("a")
	if got := rl.Len(); got != 1 {
		t.Fatalf("buckets=%d, want 1", got)
	}
	if !rl.Allow("a") {
		t.Fatalf("forgotten connection still throttled")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	for range 1000 {
		if !rl.Allow("a") {
			t.Fatalf("disabled limiter throttled")
		}
	}
	if got := rl.Len(); got != 0 {
		t.Fatalf("disabled limiter kept %d buckets", got)
	}
}
