package lifecycle

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFinish_CallsStopThenJoin(t *testing.T) {
	var stopped, joined int32
	f := New(
		func() { atomic.StoreInt32(&stopped, 1) },
		func() {
			assert.Equal(t, int32(1), atomic.LoadInt32(&stopped))
			atomic.StoreInt32(&joined, 1)
		},
	)

	f.Finish()

	assert.Equal(t, int32(1), atomic.LoadInt32(&stopped))
	assert.Equal(t, int32(1), atomic.LoadInt32(&joined))
}

func TestFinish_SecondCallIsNoOp(t *testing.T) {
	var calls int32
	f := New(
		func() { atomic.AddInt32(&calls, 1) },
		func() { atomic.AddInt32(&calls, 1) },
	)

	f.Finish()
	f.Finish()
	f.Finish()

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFinish_NilFuncsDoNotPanic(t *testing.T) {
	f := New(nil, nil)
	assert.NotPanics(t, func() { f.Finish() })
}
