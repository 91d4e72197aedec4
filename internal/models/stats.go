package models

// DailyFieldStats summarises one field over a single day. Min, Max and Avg
// are all nil when the day had no numeric readings for the field.
type DailyFieldStats struct {
	Date     string   `json:"date"`
	FieldKey FieldKey `json:"fieldKey"`
	Label    string   `json:"label"`
	Unit     string   `json:"unit"`
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
	Avg      *float64 `json:"avg"`
}

// SlotSummary is the running min, max and sum of one field slot.
type SlotSummary struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Sum   float64 `json:"sum"`
	Count int     `json:"count"`
}

// DaySummary holds the reduction of a day of readings for every slot. Its
// size does not depend on how many readings the day had.
type DaySummary struct {
	Slots [FieldCount]SlotSummary `json:"slots"`
}

// Add folds v into the summary of slot k.
func (d *DaySummary) Add(k FieldKey, v float64) {
	if !k.Valid() {
		return
	}
	s := &d.Slots[k.index()]
	if s.Count == 0 || v < s.Min {
		s.Min = v
	}
	if s.Count == 0 || v > s.Max {
		s.Max = v
	}
	s.Sum += v
	s.Count++
}

func (d DaySummary) Slot(k FieldKey) SlotSummary {
	if !k.Valid() {
		return SlotSummary{}
	}
	return d.Slots[k.index()]
}
