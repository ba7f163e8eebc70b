// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package session

import "testing"

func TestMemoryCacheStoreResumeDelete(t *testing.T) {
	c := NewMemoryCache(4)
	id := []byte{1, 2, 3, 4}
	secret := []byte("master-secret")

	if _, _, found := c.Resume(id); found {
		t.Fatalf("Resume on empty cache returned found=true")
	}

	c.StoreForName("www.example.com", id, secret, 0xc02f)

	got, suite, found := c.Resume(id)
	if !found {
		t.Fatalf("Resume after Store returned found=false")
	}
	if string(got) != string(secret) || suite != 0xc02f {
		t.Fatalf("Resume returned (%x, %x), want (%x, %x)", got, suite, secret, 0xc02f)
	}

	c.Delete(id)
	if _, _, found := c.Resume(id); found {
		t.Fatalf("Resume after Delete returned found=true")
	}
}

func TestMemoryCacheShardEviction(t *testing.T) {
	c := NewMemoryCache(2)
	for i := byte(0); i < 5; i++ {
		id := []byte{i}
		c.StoreForName("sub.example.com", id, []byte("secret"), 1)
	}

	// Only the most recent two session ids should still resume; the
	// oldest three were evicted FIFO once the shard hit capacity.
	live := 0
	for i := byte(0); i < 5; i++ {
		if _, _, found := c.Resume([]byte{i}); found {
			live++
		}
	}
	if live != 2 {
		t.Fatalf("got %d live sessions after eviction, want 2", live)
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"www.example.com", "example.com"},
		{"a.b.example.co.uk", "example.co.uk"},
		{"example.com", "example.com"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Key(tt.name); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
