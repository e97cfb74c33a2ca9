// Copyright (c) 2024 Neomantra Corp
//
// Trading-session schedules (spec §3 "SessionInfo", §4.2). A session is a
// list of [open, close] minute-offset sections; offsets may exceed 1440 to
// express a night section crossing midnight, normalized by OffsetTime.

package basedata

// Section is one open/close span of a trading day, in minutes-since-midnight.
// Close > 1440 denotes a night section crossing into the next calendar day.
type Section struct {
	Open  int
	Close int
}

// SessionInfo describes one commodity's trading schedule.
type SessionInfo struct {
	ID       string
	Name     string
	Sections []Section
}

// hhmmToMinutes converts an HHMM integer (e.g. 2130) to minutes-since-midnight.
func hhmmToMinutes(hhmm int) int {
	return (hhmm/100)*60 + hhmm%100
}

// minutesToHHMM is the inverse of hhmmToMinutes, wrapping at 1440.
func minutesToHHMM(minutes int) int {
	minutes = minutes % 1440
	if minutes < 0 {
		minutes += 1440
	}
	return (minutes/60)*100 + minutes%60
}

// OffsetTime normalizes an HHMM into the session's own minute axis: a time
// in the post-midnight part of a night section (one whose Close exceeds
// 1440) is shifted by +1440 so it sorts after that section's start; every
// other time is returned as plain minutes since midnight.
func (s *SessionInfo) OffsetTime(hhmm int) int {
	m := hhmmToMinutes(hhmm)
	for _, sec := range s.Sections {
		if sec.Close > 1440 && m < sec.Close-1440 {
			return m + 1440
		}
	}
	return m
}

// TimeToMinutes returns the session-minute index (0-based, cumulative
// across sections) that hhmm falls within, or -1 if it falls in a gap.
func (s *SessionInfo) TimeToMinutes(hhmm int) int {
	m := s.OffsetTime(hhmm)
	cursor := 0
	for _, sec := range s.Sections {
		span := sec.Close - sec.Open
		if m >= sec.Open && m < sec.Close {
			return cursor + (m - sec.Open)
		}
		cursor += span
	}
	return -1
}

// MinuteToTime is the inverse of TimeToMinutes: given a cumulative
// session-minute index, return the wall-clock HHMM.
func (s *SessionInfo) MinuteToTime(idx int) int {
	cursor := 0
	for _, sec := range s.Sections {
		span := sec.Close - sec.Open
		if idx < cursor+span {
			return minutesToHHMM(sec.Open + (idx - cursor))
		}
		cursor += span
	}
	return 0
}

// IsLastOfSection reports whether hhmm is the final minute of whichever
// section contains it (spec §4.1.5, §4.4 step 2).
func (s *SessionInfo) IsLastOfSection(hhmm int) bool {
	m := s.OffsetTime(hhmm)
	for _, sec := range s.Sections {
		if m == sec.Close-1 {
			return true
		}
	}
	return false
}

// GetTradingMins returns the total number of trading minutes across all sections.
func (s *SessionInfo) GetTradingMins() int {
	total := 0
	for _, sec := range s.Sections {
		total += sec.Close - sec.Open
	}
	return total
}

// CloseOffset returns the cumulative session-minute index one past the
// session's final minute (used to detect end-of-tdate, spec §4.4 step 4).
func (s *SessionInfo) CloseOffset() int {
	return s.GetTradingMins()
}

// GetOffsetDate returns the calendar date hhmm actually belongs to, given
// the session's own night-section offsetting: a time shifted past 1440
// belongs to the day after date.
func (s *SessionInfo) GetOffsetDate(date uint32, hhmm int, nextBusinessDay func(uint32) uint32) uint32 {
	if s.OffsetTime(hhmm) >= 1440 {
		return nextBusinessDay(date)
	}
	return date
}
