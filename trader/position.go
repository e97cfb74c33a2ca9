// Copyright (c) 2024 Neomantra Corp
//
// Position reconciliation (spec §4.6.2).

package trader

import "wondertrader/wt"

// PosItem is a per-contract reconciled position snapshot.
type PosItem struct {
	Code       string
	LNewVol    float64 // long, today
	LNewAvail  float64
	LPreVol    float64 // long, yesterday
	LPreAvail  float64
	SNewVol    float64 // short, today
	SNewAvail  float64
	SPreVol    float64 // short, yesterday
	SPreAvail  float64
}

// BrokerPositionRow is the raw per-direction query response row the broker
// sends; PositionDate distinguishes today vs. yesterday lots directly when
// the broker reports it (CoverToday contracts).
type BrokerPositionRow struct {
	Code         string
	IsLong       bool
	TotalVolume  float64
	TotalAvail   float64
	TodayVolume  float64
	TodayAvail   float64
	HasPositionDate bool
}

// Reconcile builds a PosItem from a contract's broker position rows, per
// spec §4.6.2: for CoverToday, today/yesterday are broker-reported
// directly; otherwise yesterday = total - today.
func Reconcile(code string, coverMode wt.CoverMode, rows []BrokerPositionRow) PosItem {
	item := PosItem{Code: code}
	for _, r := range rows {
		var todayVol, todayAvail, totalVol, totalAvail float64
		if coverMode == wt.CoverMode_CoverToday && r.HasPositionDate {
			todayVol, todayAvail = r.TodayVolume, r.TodayAvail
			totalVol, totalAvail = r.TotalVolume, r.TotalAvail
		} else {
			todayVol, todayAvail = r.TodayVolume, r.TodayAvail
			totalVol, totalAvail = r.TotalVolume, r.TotalAvail
			if todayVol == 0 && todayAvail == 0 {
				// broker didn't split it out: treat all as undistinguished total,
				// with "today" left at zero per the non-CoverToday contract.
			}
		}
		preVol := totalVol - todayVol
		preAvail := totalAvail - todayAvail

		if r.IsLong {
			item.LNewVol, item.LNewAvail = todayVol, todayAvail
			item.LPreVol, item.LPreAvail = preVol, preAvail
		} else {
			item.SNewVol, item.SNewAvail = todayVol, todayAvail
			item.SPreVol, item.SPreAvail = preVol, preAvail
		}
	}
	return item
}
