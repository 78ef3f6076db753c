package queue

import "testing"

func TestGetHitBuffer_SizeBuckets(t *testing.T) {
	tests := []struct {
		name      string
		request   int
		expectCap int
	}{
		{"1k bucket - exact", 1024, size1k},
		{"1k bucket - smaller", 10, size1k},
		{"8k bucket - exact", 8192, size8k},
		{"8k bucket - smaller", 2000, size8k},
		{"64k bucket - exact", 65536, size64k},
		{"64k bucket - larger clamps to 64k path", 8193, size64k},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := GetHitBuffer(tt.request)
			if len(buf) != tt.request {
				t.Errorf("GetHitBuffer(%d) len=%d, want %d", tt.request, len(buf), tt.request)
			}
			if cap(buf) != tt.expectCap {
				t.Errorf("GetHitBuffer(%d) cap=%d, want %d", tt.request, cap(buf), tt.expectCap)
			}
			PutHitBuffer(buf)
		})
	}
}

func TestHitBufferPool_Reuse(t *testing.T) {
	buf1 := GetHitBuffer(size1k)
	ptr1 := &buf1[0]
	PutHitBuffer(buf1)

	buf2 := GetHitBuffer(size1k)
	ptr2 := &buf2[0]
	PutHitBuffer(buf2)

	if ptr1 == ptr2 {
		t.Log("buffer was reused from pool")
	} else {
		t.Log("buffer was not reused (sync.Pool GC behavior)")
	}
}

func TestPutHitBuffer_NonStandardCap(t *testing.T) {
	buf := make([]PixelHit, 100)
	PutHitBuffer(buf) // must not panic
}

func BenchmarkGetHitBuffer_64k(b *testing.B) {
	for i := 0; i < b.N; i++ {
		buf := GetHitBuffer(size64k)
		PutHitBuffer(buf)
	}
}
