// Copyright (c) 2024 Neomantra Corp

package basedata

import "wondertrader/wt"

// ContractInfo describes one tradable instrument (spec §3 "ContractInfo").
type ContractInfo struct {
	Exchange    string
	Code        string
	Product     string
	PriceTick   float64
	VolumeScale float64
	MarginRate  float64
	FeeRate     float64
	SessionID   string
	CoverMode   wt.CoverMode
	IsT1        bool
	CanShort    bool
}

// FullCode returns the "EX.CODE" canonical form.
func (c *ContractInfo) FullCode() string {
	return c.Exchange + "." + c.Code
}
