package utils

import "strings"

// DefaultSlots is the half-hour catalog used for every doctor: a morning
// shift 09:00-12:30 and an afternoon shift 14:00-16:30.
var DefaultSlots = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30", "12:00", "12:30",
	"14:00", "14:30", "15:00", "15:30", "16:00", "16:30",
}

// SlotCatalog is the fixed, ordered list of time-of-day labels that can be booked.
type SlotCatalog struct {
	labels []string
	index  map[string]struct{}
}

// NewSlotCatalog builds a catalog from labels, dropping blanks and duplicates
// while keeping the first occurrence order. An empty list yields DefaultSlots.
func NewSlotCatalog(labels []string) *SlotCatalog {
	c := &SlotCatalog{index: make(map[string]struct{})}
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := c.index[l]; ok {
			continue
		}
		c.index[l] = struct{}{}
		c.labels = append(c.labels, l)
	}
	if len(c.labels) == 0 && len(DefaultSlots) > 0 {
		return NewSlotCatalog(DefaultSlots)
	}
	return c
}

// ParseSlotList splits a comma separated SLOTS value.
func ParseSlotList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// For returns the catalog for a doctor and date. The catalog does not vary
// by doctor or date today; callers get their own copy.
func (c *SlotCatalog) For(doctorID int, date string) []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

func (c *SlotCatalog) Contains(slot string) bool {
	_, ok := c.index[slot]
	return ok
}

func (c *SlotCatalog) Len() int {
	return len(c.labels)
}
