package ui

import (
	"errors"
	"fmt"
	"image/color"
	"os"

	"github.com/fogleman/gg"

	"github.com/nftterminal/nftterm/internal/analytics"
)

const (
	chartWidth   = 800
	chartHeight  = 420
	chartMargin  = 48.0
	chartTitleSz = 20.0
	chartLabelSz = 13.0
)

var chartFonts = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
	"/Library/Fonts/Arial.ttf",
	`C:\Windows\Fonts\arial.ttf`,
}

// ErrNoBuckets is returned when there is nothing to chart.
var ErrNoBuckets = errors.New("no mint buckets to chart")

// MintChart draws the daily mint histogram as an image context.
func MintChart(title string, days []analytics.MintDayBucket) (*gg.Context, error) {
	if len(days) == 0 {
		return nil, ErrNoBuckets
	}

	dc := gg.NewContext(chartWidth, chartHeight)
	dc.SetColor(color.RGBA{R: 0x0E, G: 0x09, B: 0x1C, A: 0xFF})
	dc.Clear()

	font := loadChartFont()
	setFont := func(size float64) {
		if font != "" {
			_ = dc.LoadFontFace(font, size)
		}
	}

	setFont(chartTitleSz)
	dc.SetColor(color.RGBA{R: 0x83, G: 0x6E, B: 0xF9, A: 0xFF})
	dc.DrawStringAnchored(title, chartWidth/2, chartMargin/2, 0.5, 0.5)

	peak := 0
	for _, d := range days {
		if d.Count > peak {
			peak = d.Count
		}
	}

	plotTop := chartMargin + 10
	plotBottom := float64(chartHeight) - chartMargin
	plotH := plotBottom - plotTop
	slot := (float64(chartWidth) - 2*chartMargin) / float64(len(days))
	barW := slot * 0.6

	dc.SetColor(color.RGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xFF})
	dc.SetLineWidth(1)
	dc.DrawLine(chartMargin, plotBottom, float64(chartWidth)-chartMargin, plotBottom)
	dc.Stroke()

	setFont(chartLabelSz)
	for i, d := range days {
		x := chartMargin + float64(i)*slot + (slot-barW)/2
		h := 0.0
		if peak > 0 {
			h = float64(d.Count) / float64(peak) * (plotH - 20)
		}

		dc.SetColor(color.RGBA{R: 0xF1, G: 0x5B, B: 0xB5, A: 0xFF})
		dc.DrawRectangle(x, plotBottom-h, barW, h)
		dc.Fill()

		dc.SetColor(color.White)
		dc.DrawStringAnchored(fmt.Sprintf("%d", d.Count), x+barW/2, plotBottom-h-8, 0.5, 0)
		dc.SetColor(color.RGBA{R: 0xAA, G: 0xAA, B: 0xAA, A: 0xFF})
		dc.DrawStringAnchored(d.Label, x+barW/2, plotBottom+16, 0.5, 0.5)
	}
	return dc, nil
}

// RenderMintChart writes the daily mint histogram to path as PNG.
func RenderMintChart(path, title string, days []analytics.MintDayBucket) error {
	dc, err := MintChart(title, days)
	if err != nil {
		return err
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("saving chart: %w", err)
	}
	return nil
}

func loadChartFont() string {
	for _, p := range chartFonts {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
