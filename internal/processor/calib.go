package processor

import (
	"bufio"
	"fmt"
	"math"
	"os"

	"github.com/behrlich/sprint3/internal/config"
)

// CalibConstants are the precomputed, per-pixel coefficients used to convert
// time-over-threshold into energy.
type CalibConstants struct {
	Bat float64
	Ita float64
	Atb float64
	Fac float64
}

// CalibSet is the fully populated lookup table, indexed by y*ChipWidth+x.
// It is published once at startup (before any hit is energy-converted) and
// is read-only thereafter.
type CalibSet struct {
	table   [config.ChipArea]CalibConstants
	loaded  bool
}

// LoadCalibSet loads a,b,c,t coefficient files from dir (a.txt, b.txt, c.txt,
// t.txt, each ChipArea whitespace-separated floats) and derives the lookup
// table:
//
//	bat = b + a*t
//	ita = 1 / (2*a)
//	atb = a*t - b
//	fac = 4*a*c
func LoadCalibSet(dir string) (*CalibSet, error) {
	a, err := loadCoefficients(dir + "/a.txt")
	if err != nil {
		return nil, err
	}
	b, err := loadCoefficients(dir + "/b.txt")
	if err != nil {
		return nil, err
	}
	c, err := loadCoefficients(dir + "/c.txt")
	if err != nil {
		return nil, err
	}
	t, err := loadCoefficients(dir + "/t.txt")
	if err != nil {
		return nil, err
	}

	cs := &CalibSet{}
	for i := 0; i < config.ChipArea; i++ {
		cs.table[i] = CalibConstants{
			Bat: b[i] + a[i]*t[i],
			Ita: 1 / (2 * a[i]),
			Atb: a[i]*t[i] - b[i],
			Fac: 4 * a[i] * c[i],
		}
	}
	cs.loaded = true
	return cs, nil
}

func loadCoefficients(path string) ([config.ChipArea]float64, error) {
	var out [config.ChipArea]float64

	f, err := os.Open(path)
	if err != nil {
		return out, fmt.Errorf("open calibration file %s: %w", path, err)
	}
	defer f.Close()

	idx := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		var v float64
		if _, err := fmt.Sscanf(sc.Text(), "%g", &v); err != nil {
			return out, fmt.Errorf("parse calibration file %s: %w", path, err)
		}
		if idx >= config.ChipArea {
			return out, fmt.Errorf("calibration file %s has more than %d values", path, config.ChipArea)
		}
		out[idx] = v
		idx++
	}
	if err := sc.Err(); err != nil {
		return out, err
	}
	if idx != config.ChipArea {
		return out, fmt.Errorf("calibration file %s: expected %d values, got %d", path, config.ChipArea, idx)
	}
	return out, nil
}

// Energy converts a pixel's time-over-threshold to keV. If the calibration
// set was never loaded, it returns tot unchanged.
func (cs *CalibSet) Energy(x, y uint8, tot uint16) float64 {
	if cs == nil || !cs.loaded {
		return float64(tot)
	}
	idx := int(y)*config.ChipWidth + int(x)
	lut := cs.table[idx]

	k := lut.Bat - float64(tot)
	e := lut.Ita * (float64(tot) + lut.Atb + math.Sqrt(k*k+lut.Fac))

	if e > 918 {
		// Distortion level reached; the response completely breaks down
		// above 1800 keV.
		e = e - 0.888*(e-918)
	}
	return e
}
