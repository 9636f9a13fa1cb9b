package clinic

import "fmt"

// TimeOfDay is a clock time with minute precision, independent of any date.
// Appointments store preferred and assigned times as TimeOfDay values and
// combine them with a calendar date externally.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// MinuteOfDay returns minutes since midnight, used for ordering and storage.
func (t TimeOfDay) MinuteOfDay() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.MinuteOfDay() < other.MinuteOfDay()
}

// ParseTimeOfDay parses a "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("time of day %q out of range", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("time of day must be a JSON string, got %s", s)
	}
	parsed, err := ParseTimeOfDay(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

const (
	slotCount       = 16
	slotStartHour   = 9
	slotStepMinutes = 30
)

// DailySlots returns the fixed grid of bookable start times: 09:00 through
// 16:30 in 30-minute increments, the same for every day. The slice is built
// on each call so callers can't mutate shared state.
func DailySlots() []TimeOfDay {
	slots := make([]TimeOfDay, 0, slotCount)
	minute := slotStartHour * 60
	for i := 0; i < slotCount; i++ {
		slots = append(slots, TimeOfDay{Hour: minute / 60, Minute: minute % 60})
		minute += slotStepMinutes
	}
	return slots
}

// IsBookableSlot reports whether t is one of the grid values from DailySlots.
func IsBookableSlot(t TimeOfDay) bool {
	m := t.MinuteOfDay()
	start := slotStartHour * 60
	end := start + (slotCount-1)*slotStepMinutes
	return m >= start && m <= end && (m-start)%slotStepMinutes == 0
}
