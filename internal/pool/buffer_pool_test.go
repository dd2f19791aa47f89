package pool

import "testing"

func TestBufferPoolResetsLength(t *testing.T) {
	bp := NewBufferPool(64)
	buf := bp.Get()
	*buf = append(*buf, "hello"...)
	bp.Put(buf)

	again := bp.Get()
	if len(*again) != 0 {
		t.Errorf("expected empty buffer, got %d bytes", len(*again))
	}
}

func TestLineBatchPool(t *testing.T) {
	lp := NewLineBatchPool(4)
	batch := lp.Get()
	if cap(*batch) < 4 {
		t.Errorf("expected capacity >= 4, got %d", cap(*batch))
	}
	*batch = append(*batch, "a", "b")
	lp.Put(batch)

	again := lp.Get()
	if len(*again) != 0 {
		t.Errorf("expected empty batch, got %v", *again)
	}
}
