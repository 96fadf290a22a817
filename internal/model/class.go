package model

import (
	"strings"
	"time"
)

// Class is a trainer's recurring bookable offering.  The weekly pattern is
// stored as a comma separated list of day labels (Mon..Sun) plus a single
// time of day shared by every occurrence.  Capacity bounds the number of
// non-cancelled bookings per concrete date.
//
// Fields:
//  ID          – primary key identifier.
//  TrainerID   – owning trainer; only this user may mutate the class.
//  Name        – display name of the class.
//  Description – free-text description shown when browsing.
//  Capacity    – maximum students per session, always > 0.
//  DurationMin – session length in minutes.
//  PriceCents  – price of a single session in cents.
//  Days        – comma separated weekday labels, e.g. "Mon,Wed,Fri".
//  TimeOfDay   – session start time as "HH:MM" (24h).
//  IsActive    – inactive classes are hidden from browsing and not bookable.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Class struct {
	ID          uint64    // classes.id
	TrainerID   uint64    // classes.trainer_id
	Name        string    // classes.name
	Description string    // classes.description
	Capacity    uint32    // classes.capacity
	DurationMin uint32    // classes.duration_min
	PriceCents  uint32    // classes.price_cents
	Days        string    // classes.days
	TimeOfDay   string    // classes.time_of_day
	IsActive    bool      // classes.is_active
	CreatedAt   time.Time // classes.created_at
	UpdatedAt   time.Time // classes.updated_at
}

// DayList splits the stored day labels into a slice.  An empty Days column
// yields an empty slice, never a one-element slice holding "".
func (c *Class) DayList() []string {
	if strings.TrimSpace(c.Days) == "" {
		return nil
	}
	parts := strings.Split(c.Days, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
