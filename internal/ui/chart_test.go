package ui

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMintChartWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mints.png")
	require.NoError(t, RenderMintChart(path, "Purple Frogs", sampleReport(1).MintDays))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, chartWidth, img.Bounds().Dx())
	assert.Equal(t, chartHeight, img.Bounds().Dy())
}

func TestRenderMintChartAllZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	days := sampleReport(1).MintDays
	days[6].Count = 0
	assert.NoError(t, RenderMintChart(path, "quiet week", days))
}

func TestMintChartNoBuckets(t *testing.T) {
	_, err := MintChart("x", nil)
	assert.ErrorIs(t, err, ErrNoBuckets)
}

func TestRenderMintChartBadPath(t *testing.T) {
	err := RenderMintChart(filepath.Join(t.TempDir(), "missing", "dir", "c.png"), "x", sampleReport(1).MintDays)
	assert.ErrorContains(t, err, "saving chart")
}
