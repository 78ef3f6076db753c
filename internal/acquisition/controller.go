// Package acquisition owns the device session and feeds both downstream
// buffers from the pixel-received callback.
package acquisition

import (
	"fmt"
	"time"

	"github.com/behrlich/sprint3/internal/config"
	"github.com/behrlich/sprint3/internal/logging"
	"github.com/behrlich/sprint3/internal/metrics"
	"github.com/behrlich/sprint3/internal/queue"
	"github.com/behrlich/sprint3/internal/session"
	sprint "github.com/behrlich/sprint3"
)

// Controller maintains the device session, installs callbacks, and
// produces pixel data into the raw buffer and raw-write buffer.
type Controller struct {
	sess        session.Session
	rawBuf      *queue.RawBuffer
	rawWriteBuf *queue.RawBuffer
	log         *logging.Logger
	observer    metrics.Observer

	cfg   config.AcqConfig
	nHits uint64
}

func New(sess session.Session, rawBuf, rawWriteBuf *queue.RawBuffer, log *logging.Logger, observer metrics.Observer) *Controller {
	if observer == nil {
		observer = metrics.NoOpObserver{}
	}
	return &Controller{sess: sess, rawBuf: rawBuf, rawWriteBuf: rawWriteBuf, log: log, observer: observer}
}

// Connect validates the session by fetching the chip identifier and
// comparing it with the configured expected value, retrying up to
// ConnectAttempts times with SecBetweenConnectAttempts between tries.
func (c *Controller) Connect() error {
	var lastErr error
	for i := 0; i < config.ConnectAttempts; i++ {
		id, err := c.sess.ChipID()
		if err != nil {
			lastErr = err
			c.log.Error(fmt.Sprintf("exception while fetching chip id: %s", err))
			time.Sleep(config.SecBetweenConnectAttempts)
			continue
		}
		if id == config.ChipID {
			c.log.Info(fmt.Sprintf("verified connection with chip id %s", id))
			return nil
		}
		lastErr = fmt.Errorf("bad chip ID (expected: %s, actual: %s)", config.ChipID, id)
		c.log.Error(lastErr.Error())
		time.Sleep(config.SecBetweenConnectAttempts)
	}
	c.log.Fatal("abandoned device connection")
	return sprint.WrapError("connect", sprint.CodeConnection, lastErr)
}

// LoadConfig populates an AcqConfig with the hardcoded device tuning values
// and the loaded pixel mask.
func (c *Controller) LoadConfig(acqTimeSeconds int, pixelConfig []uint32) error {
	c.cfg = config.NewAcqConfig(acqTimeSeconds, pixelConfig)
	if err := c.sess.Configure(c.cfg); err != nil {
		c.log.LogException(logging.LevelFatal, "pixel configuration failed", err)
		return sprint.WrapError("loadConfig", sprint.CodeConfig, err)
	}
	return nil
}

func (c *Controller) GetConfig() config.AcqConfig { return c.cfg }

// onFrameStarted resets the per-frame hit counter and logs.
func (c *Controller) onFrameStarted(frameIdx int) {
	c.nHits = 0
	c.log.Info("acq frame started")
}

// onFrameEnded logs loss/throughput statistics for the completed frame.
func (c *Controller) onFrameEnded(frameIdx int, completed bool, info session.FrameInfo) {
	var recvPct float64
	if info.SentPixels > 0 {
		recvPct = 100 * float64(info.ReceivedPixels) / float64(info.SentPixels)
	}
	c.log.Info(fmt.Sprintf(
		"Ended Frame #%d [lost %d pixels] [sent %d pixels] [received %d pixels (%.2f%%)] [state: %s]",
		frameIdx, info.LostPixels, info.SentPixels, info.ReceivedPixels, recvPct, completionState(completed),
	))
}

func completionState(completed bool) string {
	if completed {
		return "completed"
	}
	return "not completed"
}

// onPixels is the pixel-received callback: append to both downstream
// buffers, accounting for overflow drops per buffer.
func (c *Controller) onPixels(hits []queue.PixelHit) {
	c.nHits += uint64(len(hits))
	c.observer.ObserveHits(uint64(len(hits)))

	if config.DebugPrints {
		for _, h := range hits {
			fmt.Printf("raw hit: x-%d, y-%d, toa-%d, tot-%d\n", h.X, h.Y, h.ToA, h.ToT)
		}
	}

	c.rawBuf.Lock()
	_, discardedRaw := c.rawBuf.AddElements(hits)
	c.rawBuf.Unlock()
	c.rawBuf.NotifyOne()
	if discardedRaw > 0 {
		c.observer.ObserveDiscard("raw", uint64(discardedRaw))
		c.log.Warning(fmt.Sprintf("buffer overflow in pixel callback - forced to discard %d elements from raw buffer", discardedRaw))
	}

	c.rawWriteBuf.Lock()
	total, discardedWrite := c.rawWriteBuf.AddElements(hits)
	notify := total > config.RawHitNotifyIncrement
	c.rawWriteBuf.Unlock()
	if notify {
		c.rawWriteBuf.NotifyOne()
	}
	if discardedWrite > 0 {
		c.observer.ObserveDiscard("write", uint64(discardedWrite))
		c.log.Warning(fmt.Sprintf("buffer overflow in pixel callback - forced to discard %d elements from raw-write buffer", discardedWrite))
	}
}

// RunAcquisition begins a data-driven readout session and blocks until the
// device reports frame end or the hit-timeout elapses.
func (c *Controller) RunAcquisition() error {
	start := time.Now()
	err := c.sess.Run(session.Handlers{
		OnFrameStarted: c.onFrameStarted,
		OnFrameEnded:   c.onFrameEnded,
		OnPixels:       c.onPixels,
	}, config.HitTimeout)

	duration := time.Since(start)
	if err != nil {
		return sprint.WrapError("runAcquisition", sprint.CodeRuntime, err)
	}

	throughput := float64(c.nHits) / duration.Seconds()
	c.log.Info(fmt.Sprintf("Acquisition completed: [total hits: %d] [duration: %.3fs] [throughput: %.1f hits/s]",
		c.nHits, duration.Seconds(), throughput))
	return nil
}
