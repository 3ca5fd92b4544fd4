package cache

import (
	"testing"
	"time"
)

func TestSetGetAndExpire(t *testing.T) {
	c := New(0)
	key := KeyFromStrings("unit", "expire")

	// ensure no value
	if _, ok := c.Get(key); ok {
		t.Fatalf("expected no value initially")
	}

	// set with ttl
	c.Set(key, "hello", 50*time.Millisecond)
	if v, ok := c.Get(key); !ok || v.(string) != "hello" {
		t.Fatalf("expected value 'hello', got %v ok=%v", v, ok)
	}

	// wait for expiry (Item.Exp has second resolution, so give it margin)
	time.Sleep(1100 * time.Millisecond)
	if _, ok := c.Get(key); ok {
		t.Fatalf("expected value to be expired")
	}
}

func TestDeleteAndNoExpiry(t *testing.T) {
	c := New(0)
	key := KeyFromStrings("unit", "delete")

	c.Set(key, 42, 0) // no expiry
	if v, ok := c.Get(key); !ok || v.(int) != 42 {
		t.Fatalf("expected 42, got %v ok=%v", v, ok)
	}
	c.Delete(key)
	if _, ok := c.Get(key); ok {
		t.Fatalf("expected value deleted")
	}
}

func TestDeletePrefixOnlyHitsNamespace(t *testing.T) {
	c := New(0)

	k1 := KeyFromStrings("items-list", "q=bike")
	k2 := KeyFromStrings("items-list", "q=lamp")
	k3 := KeyFromStrings("partners", "alice")
	c.Set(k1, "a", 0)
	c.Set(k2, "b", 0)
	c.Set(k3, "c", 0)

	c.DeletePrefix("items-list")

	if _, ok := c.Get(k1); ok {
		t.Fatalf("expected %q invalidated", k1)
	}
	if _, ok := c.Get(k2); ok {
		t.Fatalf("expected %q invalidated", k2)
	}
	if _, ok := c.Get(k3); !ok {
		t.Fatalf("other namespace must survive DeletePrefix")
	}
}

func TestLRUEviction(t *testing.T) {
	c := New(2)

	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	// touch "a" so "b" is the LRU
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected a present")
	}
	c.Set("c", 3, 0)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected LRU entry 'b' evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected 'a' kept")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatalf("expected 'c' kept")
	}
}

func TestKeyFromStringsStableAndNamespaced(t *testing.T) {
	k1 := KeyFromStrings("ns", "a", "b")
	k2 := KeyFromStrings("ns", "a", "b")
	if k1 != k2 {
		t.Fatalf("expected stable keys, got %q vs %q", k1, k2)
	}
	if KeyFromStrings("ns", "ab") == KeyFromStrings("ns", "a", "b") {
		t.Fatalf("part boundaries must matter")
	}
}
