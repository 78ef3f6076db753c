package config

import "time"

// Dacs holds the 18 named DAC values applied at load_config time. Values are
// the hardcoded tuning constants from the acquisition hardware notes.
type Dacs struct {
	IbiasPreampOn     uint16
	IbiasPreampOff    uint16
	VPReampNCAS       uint16
	IbiasIkrum        uint16
	Vfbk              uint16
	VthresholdFine    uint16
	VthresholdCoarse  uint16
	IbiasDiscS1On     uint16
	IbiasDiscS1Off    uint16
	IbiasDiscS2On     uint16
	IbiasDiscS2Off    uint16
	IbiasPixelDAC     uint16
	IbiasTPbufferIn   uint16
	IbiasTPbufferOut  uint16
	VTPCoarse         uint16
	VTPFine           uint16
	IbiasCPPLL        uint16
	PLLVcntrl         uint16
}

// DefaultDacs returns the hardcoded DAC tuning verbatim from the hardware
// notes; these must appear in the output header unchanged.
func DefaultDacs() Dacs {
	return Dacs{
		IbiasPreampOn:    32,
		IbiasPreampOff:   8,
		VPReampNCAS:      128,
		IbiasIkrum:       15,
		Vfbk:             164,
		VthresholdFine:   378,
		VthresholdCoarse: 7,
		IbiasDiscS1On:    32,
		IbiasDiscS1Off:   8,
		IbiasDiscS2On:    32,
		IbiasDiscS2Off:   8,
		IbiasPixelDAC:    60,
		IbiasTPbufferIn:  128,
		IbiasTPbufferOut: 128,
		VTPCoarse:        0,
		VTPFine:          0,
		IbiasCPPLL:       128,
		PLLVcntrl:        128,
	}
}

// PixelConfigWords is the size of the per-pixel trim/mask configuration
// loaded from the chip config file.
const PixelConfigWords = 16384

// AcqConfig is loaded once per run and immutable thereafter.
type AcqConfig struct {
	BiasID        int
	AcqTime       time.Duration
	NFrames       int
	Bias          int // volts
	DelayedStart  bool
	StartTrigger  string
	StopTrigger   string
	GrayDisable   bool
	PolarityHoles bool
	Phase         string
	Freq          string
	Dacs          Dacs
	PixelConfig   [PixelConfigWords]uint32
}

// NewAcqConfig builds the AcqConfig for a given acquisition duration, using
// the hardcoded device tuning values. pixelConfig is the loaded chip mask,
// expected to be exactly PixelConfigWords long.
func NewAcqConfig(acqTimeSeconds int, pixelConfig []uint32) AcqConfig {
	cfg := AcqConfig{
		BiasID:        0,
		AcqTime:       time.Duration(acqTimeSeconds) * time.Second,
		NFrames:       1,
		Bias:          0,
		DelayedStart:  false,
		StartTrigger:  "none",
		StopTrigger:   "none",
		GrayDisable:   false,
		PolarityHoles: true,
		Phase:         "p1",
		Freq:          "40 MHz",
		Dacs:          DefaultDacs(),
	}
	copy(cfg.PixelConfig[:], pixelConfig)
	return cfg
}
