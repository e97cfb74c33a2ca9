// Copyright (c) 2024 Neomantra Corp
//
// Equity back-adjustment (spec §4.3.2 "Adjustment-factor loading").

package replay

import "wondertrader/wt"

// AdjustFlag bits select which non-price fields are also scaled.
type AdjustFlag uint8

const (
	AdjustVolume       AdjustFlag = 1
	AdjustTurnover     AdjustFlag = 2
	AdjustOpenInterest AdjustFlag = 4
)

// AdjustFactor is one (effective-date, factor) pair in a code's back-
// adjustment time series.
type AdjustFactor struct {
	Date   uint32
	Factor float64
}

// AdjustFactorSeries is a per-code factor time series, sorted by Date ascending.
type AdjustFactorSeries []AdjustFactor

// FactorFor returns the factor in effect on date: the latest entry with
// Date <= date, or 1.0 if date precedes the series.
func (s AdjustFactorSeries) FactorFor(date uint32) float64 {
	factor := 1.0
	for _, f := range s {
		if f.Date > date {
			break
		}
		factor = f.Factor
	}
	return factor
}

// AdjustBar scales a bar's price fields by factor, and its volume/turnover/
// openInterest fields if selected by flags (spec §4.3.2).
func AdjustBar(bar wt.BarRecord, factor float64, flags AdjustFlag) wt.BarRecord {
	bar.Open *= factor
	bar.High *= factor
	bar.Low *= factor
	bar.Close *= factor
	bar.Settle *= factor
	bar.Bid *= factor
	bar.Ask *= factor

	if flags&AdjustVolume != 0 {
		bar.Vol /= factor
	}
	if flags&AdjustTurnover != 0 {
		bar.Money *= factor
	}
	if flags&AdjustOpenInterest != 0 {
		bar.Hold /= factor
	}
	return bar
}
