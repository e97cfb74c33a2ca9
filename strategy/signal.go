// Copyright (c) 2024 Neomantra Corp
//
// Pending target-position signals (spec §3 "Signal").

package strategy

import "wondertrader/wt"

// Signal is a pending target-position intent, applied on the code's next tick.
type Signal struct {
	StdCode    string
	TargetVol  float64
	SigPrice   float64
	DesPrice   float64
	UserTag    string
	GenTime    uint64
	SigType    wt.SigType
}
