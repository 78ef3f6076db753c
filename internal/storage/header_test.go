package storage

import (
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/behrlich/sprint3/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHeader_RoundTripsConfigValues(t *testing.T) {
	cfg := config.NewAcqConfig(120, nil)
	info := HeaderInfo{RunNumber: "3", StartedAt: time.Unix(1700000000, 0), Cfg: cfg}
	header := BuildHeader(info, rawLineFormat)

	m := regexp.MustCompile(`acq_time=(\d+) bias_id=(-?\d+) n_frames=(\d+) bias=(-?\d+) delayed_start=(true|false)`).FindStringSubmatch(header)
	require.NotNil(t, m)
	acqTime, _ := strconv.Atoi(m[1])
	assert.Equal(t, 120, acqTime)
	assert.Equal(t, "false", m[5])

	pol := regexp.MustCompile(`polarity_holes=(true|false)`).FindStringSubmatch(header)
	require.NotNil(t, pol)
	assert.Equal(t, "true", pol[1])

	phase := regexp.MustCompile(`phase=(\S+)`).FindStringSubmatch(header)
	require.NotNil(t, phase)
	assert.Equal(t, "p1", phase[1])

	dac := regexp.MustCompile(`Vthreshold_fine=(\d+)`).FindStringSubmatch(header)
	require.NotNil(t, dac)
	assert.Equal(t, "378", dac[1])

	assert.Contains(t, header, "# Software: SPRINT3 v0")
	assert.Contains(t, header, "# Line format: "+rawLineFormat)
}
