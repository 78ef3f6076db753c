// Package config holds run-wide configuration: chip/device constants, the
// acquisition configuration loaded once per run, and the pixel-mask loader.
package config

import "time"

// Chip geometry.
const (
	ChipWidth  = 256
	ChipHeight = 256
	ChipArea   = ChipWidth * ChipHeight
)

// Connection tuning.
const (
	ConnectAttempts           = 5
	SecBetweenConnectAttempts = 3 * time.Second
	ChipID                    = "J2-W00054"
	DeviceAddress             = "192.168.1.157"
)

// Power-cycle / watchdog tuning.
const (
	PowerCycleSecondsMin = 10
	PowerCycleSecondsMax = 160
	HitTimeout           = 60 * time.Second
	// PowerCyclePin is the GPIO pin controlling the relay.
	PowerCyclePin = 0
)

// Buffering.
const (
	MaxBufferElements    = 65536
	RawHitNotifyIncrement = 1000
)

// Soft file-size caps (~5GB each at typical line widths).
const (
	MaxRawFileLines     = 203272823
	MaxSpeciesFileLines = 147058823
)

// Filesystem layout.
const (
	PathToRunNumFile  = "core/run_num.txt"
	PathToCalib       = "core/calib"
	PowerCycleScript  = "./core/pwrcycle.sh"
	PathToChipConfig  = "core/chipconfig.bmc"
	OutputDir         = "output"
	LogsDir           = OutputDir + "/logs"
	DataDir           = OutputDir + "/data"
	RawDataDir        = DataDir + "/raw"
	SpeciesDataDir    = DataDir + "/species"
	SpeciesFileName   = "speciesHits"
	RawFileName       = "rawHits"
)

const SoftwareVersion = "v0"

// DebugPrints is a process-wide, read-only-after-startup switch controlling
// whether raw hits are printed as they're received. Set once from the CLI.
var DebugPrints bool
