package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/behrlich/sprint3/internal/config"
)

// HeaderInfo carries everything the shared file header needs to describe a
// run: acquisition configuration plus the device identity fields.
type HeaderInfo struct {
	RunNumber string
	StartedAt time.Time
	Cfg       config.AcqConfig
}

// BuildHeader renders the fixed multi-line comment block written at the top
// of every rotated file: software banner, device identity, start timestamp,
// acquisition configuration, four sample pixel-config words around an
// ellipsis, all 18 DAC values, and the line-format descriptor, terminated by
// a dash separator.
func BuildHeader(info HeaderInfo, lineFormat string) string {
	var b strings.Builder
	d := info.Cfg.Dacs

	fmt.Fprintf(&b, "# Software: SPRINT3 %s\n", config.SoftwareVersion)
	fmt.Fprintf(&b, "# Readout IP: %s\n", config.DeviceAddress)
	fmt.Fprintf(&b, "# Chip ID: %s\n", config.ChipID)
	fmt.Fprintf(&b, "# Run number: %s\n", info.RunNumber)
	fmt.Fprintf(&b, "# Start time (unix): %d\n", info.StartedAt.Unix())
	fmt.Fprintf(&b, "# acq_time=%d bias_id=%d n_frames=%d bias=%d delayed_start=%t\n",
		int(info.Cfg.AcqTime.Seconds()), info.Cfg.BiasID, info.Cfg.NFrames, info.Cfg.Bias, info.Cfg.DelayedStart)
	fmt.Fprintf(&b, "# start_trigger=%s stop_trigger=%s gray_disable=%t polarity_holes=%t phase=%s freq=%s\n",
		info.Cfg.StartTrigger, info.Cfg.StopTrigger, info.Cfg.GrayDisable, info.Cfg.PolarityHoles, info.Cfg.Phase, info.Cfg.Freq)
	fmt.Fprintf(&b, "# pixel_config[0]=%d pixel_config[1]=%d ... pixel_config[16382]=%d pixel_config[16383]=%d\n",
		info.Cfg.PixelConfig[0], info.Cfg.PixelConfig[1],
		info.Cfg.PixelConfig[config.PixelConfigWords-2], info.Cfg.PixelConfig[config.PixelConfigWords-1])
	fmt.Fprintf(&b, "# DACs: Ibias_Preamp_ON=%d Ibias_Preamp_OFF=%d VPReamp_NCAS=%d Ibias_Ikrum=%d Vfbk=%d "+
		"Vthreshold_fine=%d Vthreshold_coarse=%d Ibias_DiscS1_ON=%d Ibias_DiscS1_OFF=%d Ibias_DiscS2_ON=%d "+
		"Ibias_DiscS2_OFF=%d Ibias_PixelDAC=%d Ibias_TPbufferIn=%d Ibias_TPbufferOut=%d VTP_coarse=%d VTP_fine=%d "+
		"Ibias_CP_PLL=%d PLL_Vcntrl=%d\n",
		d.IbiasPreampOn, d.IbiasPreampOff, d.VPReampNCAS, d.IbiasIkrum, d.Vfbk, d.VthresholdFine, d.VthresholdCoarse,
		d.IbiasDiscS1On, d.IbiasDiscS1Off, d.IbiasDiscS2On, d.IbiasDiscS2Off, d.IbiasPixelDAC, d.IbiasTPbufferIn,
		d.IbiasTPbufferOut, d.VTPCoarse, d.VTPFine, d.IbiasCPPLL, d.PLLVcntrl)
	fmt.Fprintf(&b, "# Line format: %s\n", lineFormat)
	b.WriteString("# ----------------------------------------------------------------------\n")

	return b.String()
}
