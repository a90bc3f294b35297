package hub

import "testing"

func TestHub_BroadcastNeverBlocks(t *testing.T) {
	h := New("test", nil)
	// No Run loop draining the queue: broadcasts beyond the buffer must be
	// dropped, not block the caller.
	for i := 0; i < 1000; i++ {
		h.BroadcastBinary([]byte{0x01})
	}
}

func TestHub_BroadcastJSON(t *testing.T) {
	h := New("test", nil)
	if err := h.BroadcastJSON(map[string]int{"seq": 1}); err != nil {
		t.Fatalf("BroadcastJSON failed: %v", err)
	}
	if err := h.BroadcastJSON(make(chan int)); err == nil {
		t.Error("Expected marshal error for unencodable value")
	}
}

func TestHub_ClientCountStartsAtZero(t *testing.T) {
	h := New("test", nil)
	if n := h.ClientCount(); n != 0 {
		t.Errorf("Expected 0 clients, got %d", n)
	}
}
