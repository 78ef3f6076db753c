package session

import (
	"time"

	"github.com/behrlich/sprint3/internal/config"
	"github.com/behrlich/sprint3/internal/queue"
)

// Scripted is a single step a MockSession plays back during Run.
type Scripted struct {
	FrameStarted bool
	Pixels       []queue.PixelHit
	FrameEnded   bool
	FrameInfo    FrameInfo
}

// MockSession drives a fixed, in-memory script of frame/pixel events for
// testing the acquisition controller without a real device.
type MockSession struct {
	ChipIDValue string
	ChipIDErr   error
	Script      []Scripted
	Configured  config.AcqConfig
	Closed      bool
}

func (m *MockSession) ChipID() (string, error) { return m.ChipIDValue, m.ChipIDErr }

func (m *MockSession) Configure(cfg config.AcqConfig) error {
	m.Configured = cfg
	return nil
}

func (m *MockSession) Run(h Handlers, hitTimeout time.Duration) error {
	frameIdx := 0
	for _, step := range m.Script {
		if step.FrameStarted {
			frameIdx++
			if h.OnFrameStarted != nil {
				h.OnFrameStarted(frameIdx)
			}
		}
		if step.Pixels != nil && h.OnPixels != nil {
			h.OnPixels(step.Pixels)
		}
		if step.FrameEnded && h.OnFrameEnded != nil {
			h.OnFrameEnded(frameIdx, true, step.FrameInfo)
		}
	}
	return nil
}

func (m *MockSession) Close() error {
	m.Closed = true
	return nil
}

var _ Session = (*MockSession)(nil)
