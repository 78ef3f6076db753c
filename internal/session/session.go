// Package session is the device transport boundary: connecting to the
// detector readout, installing frame/pixel callbacks, and running the
// blocking acquisition read loop. Its internals are not required to be
// faithful to any particular vendor SDK; only the contract the controller
// depends on is.
package session

import (
	"time"

	"github.com/behrlich/sprint3/internal/config"
	"github.com/behrlich/sprint3/internal/queue"
)

// FrameInfo is reported to the frame-ended handler.
type FrameInfo struct {
	LostPixels     int
	SentPixels     int
	ReceivedPixels int
	StartTime      time.Time
	EndTime        time.Time
}

// Handlers are the callbacks the session dispatches from its reader loop.
type Handlers struct {
	OnFrameStarted func(frameIdx int)
	OnFrameEnded   func(frameIdx int, completed bool, info FrameInfo)
	OnPixels       func(hits []queue.PixelHit)
}

// Session is the device transport boundary.
type Session interface {
	// ChipID fetches the chip identifier used to validate the connection.
	ChipID() (string, error)
	// Configure pushes the acquisition configuration to the device.
	Configure(cfg config.AcqConfig) error
	// Run blocks, dispatching Handlers until the acquisition completes or
	// the hit timeout elapses, then returns. It returns an error on
	// transport failure.
	Run(h Handlers, hitTimeout time.Duration) error
	Close() error
}
