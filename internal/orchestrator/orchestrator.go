// Package orchestrator wires the device session, processor, and storage
// workers into one run: filesystem setup, run numbering, calibration and
// pixel-mask loading, connection, launch, and the power-cycle retry loop
// around acquisition.
package orchestrator

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	sprint "github.com/behrlich/sprint3"
	"github.com/behrlich/sprint3/internal/acquisition"
	"github.com/behrlich/sprint3/internal/config"
	"github.com/behrlich/sprint3/internal/lifecycle"
	"github.com/behrlich/sprint3/internal/logging"
	"github.com/behrlich/sprint3/internal/metrics"
	"github.com/behrlich/sprint3/internal/processor"
	"github.com/behrlich/sprint3/internal/queue"
	"github.com/behrlich/sprint3/internal/runctl"
	"github.com/behrlich/sprint3/internal/session"
	"github.com/behrlich/sprint3/internal/storage"
)

// requiredDirs are created on startup if absent.
var requiredDirs = []string{
	config.OutputDir,
	config.LogsDir,
	config.DataDir,
	config.RawDataDir,
	config.SpeciesDataDir,
	config.PathToCalib,
}

func ensureDirs() error {
	for _, dir := range requiredDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// Run performs one full process lifetime: setup, connect, acquire with
// power-cycle retry, then graceful shutdown in processor -> storage ->
// logger order. Returns a non-zero-exit-worthy error on any unrecoverable
// initialization failure. m accumulates throughput/loss counters for the
// run's duration; the caller owns it and may read Snapshot() concurrently
// (e.g. from a signal handler) since every counter is updated atomically.
func Run(acqTimeSeconds int, verbose bool, m *metrics.Metrics) error {
	config.DebugPrints = verbose

	if err := ensureDirs(); err != nil {
		return sprint.WrapError("run", sprint.CodeConfig, err)
	}

	runNum, err := runctl.Next(config.PathToRunNumFile, config.RawDataDir)
	if err != nil {
		return sprint.WrapError("run", sprint.CodeConfig, err)
	}
	runNumStr := strconv.Itoa(runNum)

	logFile, err := os.Create(fmt.Sprintf("%s/log_run%s.txt", config.LogsDir, runNumStr))
	if err != nil {
		return sprint.WrapError("run", sprint.CodeFileOpen, err)
	}
	defer logFile.Close()

	log := logging.NewLogger(&logging.Config{Level: logging.LevelInfo, Output: logFile})
	logging.SetDefault(log)

	log.Info(fmt.Sprintf("Acquisition Time Setting = %d s", acqTimeSeconds))
	log.Info(fmt.Sprintf("Print statements %s", onOff(verbose)))

	calib, err := processor.LoadCalibSet(config.PathToCalib)
	if err != nil {
		log.LogException(logging.LevelFatal, "failed to load energy calibration", err)
		return sprint.WrapError("run", sprint.CodeConfig, err)
	}

	mask, err := config.LoadPixelMask(config.PathToChipConfig)
	if err != nil {
		log.LogException(logging.LevelFatal, "failed to load pixel configuration", err)
		return sprint.WrapError("run", sprint.CodeConfig, err)
	}

	sess, err := session.Dial(config.DeviceAddress)
	if err != nil {
		log.LogException(logging.LevelFatal, "failed to open device session", err)
		return sprint.WrapError("run", sprint.CodeConnection, err)
	}
	defer sess.Close()

	obs := metrics.MetricsObserver{M: m}

	rawBuf := queue.NewRawBuffer(config.MaxBufferElements)
	rawWriteBuf := queue.NewRawBuffer(config.MaxBufferElements)
	speciesQ := queue.NewSpeciesQueue()

	ctrl := acquisition.New(sess, rawBuf, rawWriteBuf, log, obs)
	if err := ctrl.Connect(); err != nil {
		return sprint.WrapError("run", sprint.CodeConnection, err)
	}
	if err := ctrl.LoadConfig(acqTimeSeconds, mask); err != nil {
		return sprint.WrapError("run", sprint.CodeConfig, err)
	}

	header := storage.HeaderInfo{RunNumber: runNumStr, StartedAt: time.Now(), Cfg: ctrl.GetConfig()}
	storageMgr := storage.NewManager(rawWriteBuf, speciesQ, header, log, obs)
	proc := processor.New(rawBuf, speciesQ, calib, log, obs)

	log.Info("Launching threads...")
	procDone := make(chan struct{})
	go func() { defer close(procDone); proc.Run() }()

	rawWriterDone := make(chan struct{})
	go func() { defer close(rawWriterDone); storageMgr.RunRaw() }()

	speciesWriterDone := make(chan struct{})
	go func() { defer close(speciesWriterDone); storageMgr.RunSpecies() }()

	// give workers a moment to reach their wait loop before the first hit
	// can possibly arrive.
	time.Sleep(1 * time.Second)

	log.Info("Launching acquisition...")
	runAcquisitionWithRetry(ctrl, log)

	log.Info("shutting down")
	lifecycle.New(rawBuf.SignalStop, func() { <-procDone }).Finish()
	lifecycle.New(rawWriteBuf.SignalStop, func() { <-rawWriterDone }).Finish()
	lifecycle.New(speciesQ.SignalStop, func() { <-speciesWriterDone }).Finish()

	m.Stop()
	return nil
}

// runAcquisitionWithRetry runs the acquisition once; on transport failure it
// logs, power-cycles the device with exponential backoff, and retries
// indefinitely without tearing down the processor/storage workers.
func runAcquisitionWithRetry(ctrl *acquisition.Controller, log *logging.Logger) {
	backoffSeconds := config.PowerCycleSecondsMin
	for {
		if err := ctrl.RunAcquisition(); err == nil {
			return
		} else {
			log.LogException(logging.LevelError, "acquisition failed", err)
		}

		if err := powerCycle(config.PowerCyclePin, backoffSeconds); err != nil {
			log.Warning(fmt.Sprintf("power cycle script failed: %s", err))
		}

		backoffSeconds *= 2
		if backoffSeconds > config.PowerCycleSecondsMax {
			backoffSeconds = config.PowerCycleSecondsMax
		}
	}
}

// powerCycle invokes the relay control script as an external process.
func powerCycle(pin, seconds int) error {
	cmd := exec.Command(config.PowerCycleScript, strconv.Itoa(pin), strconv.Itoa(seconds))
	return cmd.Run()
}

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}
