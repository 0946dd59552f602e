package domain

import "time"

// TrendPoint is a stored entry together with the values derived from the
// entries before it. Trend points are computed for display and never
// persisted.
type TrendPoint struct {
	Entry      WeightEntry
	Day        int // calendar days since the first entry
	Change     float64
	WeeklyRate float64
	EMA7       float64
	EMA30      float64
}

// Summary condenses a sequence of entries.
type Summary struct {
	Count  int
	First  float64
	Last   float64
	Min    float64
	Max    float64
	Change float64
}

// Trend derives per-entry change, weekly rate and 7/30-day exponential
// moving averages. Days are counted on the calendar of loc. Gaps between
// readings are filled by linear interpolation, one EMA step per day; a
// reading on the same day as its predecessor applies a single step.
func Trend(entries []WeightEntry, loc *time.Location) []TrendPoint {
	if len(entries) == 0 {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}
	out := make([]TrendPoint, len(entries))
	first := civilDay(entries[0].CreatedAt, loc)
	out[0] = TrendPoint{
		Entry: entries[0],
		EMA7:  entries[0].Value,
		EMA30: entries[0].Value,
	}
	for i := 1; i < len(entries); i++ {
		prev := out[i-1]
		cur := entries[i]
		p := TrendPoint{
			Entry:  cur,
			Day:    civilDay(cur.CreatedAt, loc) - first,
			Change: cur.Value - prev.Entry.Value,
		}
		interval := p.Day - prev.Day
		if interval > 0 {
			p.WeeklyRate = p.Change / float64(interval) * 7
		}
		p.EMA7 = ema(7, prev.Entry.Value, cur.Value, interval, prev.EMA7)
		p.EMA30 = ema(30, prev.Entry.Value, cur.Value, interval, prev.EMA30)
		out[i] = p
	}
	return out
}

func ema(n int, prev, now float64, interval int, acc float64) float64 {
	factor := 2.0 / (1.0 + float64(n))
	if interval < 1 {
		return now*factor + acc*(1-factor)
	}
	for i := 1; i <= interval; i++ {
		v := (now-prev)/float64(interval)*float64(i) + prev
		acc = v*factor + acc*(1-factor)
	}
	return acc
}

// civilDay numbers the calendar day of t in loc, independent of DST.
func civilDay(t time.Time, loc *time.Location) int {
	y, m, d := t.In(loc).Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// Summarize returns the count, extremes and net change of entries.
func Summarize(entries []WeightEntry) Summary {
	if len(entries) == 0 {
		return Summary{}
	}
	s := Summary{
		Count: len(entries),
		First: entries[0].Value,
		Last:  entries[len(entries)-1].Value,
		Min:   entries[0].Value,
		Max:   entries[0].Value,
	}
	for _, e := range entries[1:] {
		s.Min = min(s.Min, e.Value)
		s.Max = max(s.Max, e.Value)
	}
	s.Change = s.Last - s.First
	return s
}
