package cache

import (
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := New(true)

	etag := c.Set("k", []byte("value"), time.Minute)
	if etag == "" {
		t.Fatal("expected a non-empty etag")
	}

	data, gotTag, ok := c.Get("k")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(data) != "value" {
		t.Fatalf("got %q", data)
	}
	if gotTag != etag {
		t.Fatalf("etag mismatch: %s vs %s", gotTag, etag)
	}
}

func TestCacheMiss(t *testing.T) {
	c := New(true)
	if _, _, ok := c.Get("absent"); ok {
		t.Fatal("expected miss for absent key")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := New(true)
	c.Set("k", []byte("value"), -time.Second)

	if _, _, ok := c.Get("k"); ok {
		t.Fatal("expired entry must not be served")
	}
}

func TestCacheDisabled(t *testing.T) {
	c := New(false)

	etag := c.Set("k", []byte("value"), time.Minute)
	if etag == "" {
		t.Fatal("disabled cache still computes etags")
	}
	if _, _, ok := c.Get("k"); ok {
		t.Fatal("disabled cache must never hit")
	}
}

func TestComputeETagDeterministic(t *testing.T) {
	a := ComputeETag([]byte("payload"))
	b := ComputeETag([]byte("payload"))
	if a != b {
		t.Fatalf("same payload must hash identically: %s vs %s", a, b)
	}
	if a == ComputeETag([]byte("other")) {
		t.Fatal("different payloads must not collide")
	}
	if len(a) < 4 || a[:3] != `W/"` {
		t.Fatalf("expected weak etag format, got %s", a)
	}
}

func TestCheckETagMatch(t *testing.T) {
	etag := ComputeETag([]byte("payload"))

	if !CheckETagMatch(etag, etag) {
		t.Fatal("identical etags must match")
	}
	if !CheckETagMatch("*", etag) {
		t.Fatal("wildcard must match")
	}
	if CheckETagMatch("", etag) {
		t.Fatal("empty header must not match")
	}
	if CheckETagMatch(`W/"other"`, etag) {
		t.Fatal("different etags must not match")
	}
}
