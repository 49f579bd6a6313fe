package driver_test

import (
	"crypto/sha256"
	"testing"

	"meel/internal/braces"
	"meel/internal/driver"
)

func TestDiskCache_HitMiss(t *testing.T) {
	c, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	content := []byte("{{a}} }}")
	key := sha256.Sum256(content)
	res := braces.Analyze(content)

	var out driver.DiskPayload
	if ok, err := c.Get(key, &out); err != nil || ok {
		t.Fatalf("expected miss on empty cache, got ok=%v err=%v", ok, err)
	}

	if err := c.Put(key, &driver.DiskPayload{Path: "a.meel", Hash: key, Markers: braces.Scan(content), Result: res}); err != nil {
		t.Fatalf("put: %v", err)
	}
	ok, err := c.Get(key, &out)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if out.Path != "a.meel" || len(out.Markers) != 3 {
		t.Fatalf("unexpected payload: %+v", out)
	}
	if len(out.Result.Matches) != 1 || out.Result.Matches[0] != (braces.Match{Open: 0, Close: 3}) {
		t.Fatalf("matches not preserved: %+v", out.Result.Matches)
	}
	if len(out.Result.Unmatched) != 1 || out.Result.Unmatched[0].Kind != braces.Close {
		t.Fatalf("unmatched not preserved: %+v", out.Result.Unmatched)
	}

	var other driver.Digest
	other[0] = 1
	if ok, _ := c.Get(other, &out); ok {
		t.Fatal("expected miss on different hash")
	}

	if err := c.DropAll(); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if ok, _ := c.Get(key, &out); ok {
		t.Fatal("expected miss after DropAll")
	}
}

func TestDiskCache_NilIsNoop(t *testing.T) {
	var c *driver.DiskCache
	var key driver.Digest
	if err := c.Put(key, &driver.DiskPayload{}); err != nil {
		t.Fatalf("nil put: %v", err)
	}
	if ok, err := c.Get(key, &driver.DiskPayload{}); ok || err != nil {
		t.Fatalf("nil get: ok=%v err=%v", ok, err)
	}
}
