package scheduling

// Tier is the availability band of a session derived from enrollment and
// room capacity. It is advisory: nothing here blocks over-enrollment.
type Tier string

const (
	TierUnlimited  Tier = "UNLIMITED"
	TierAvailable  Tier = "AVAILABLE"
	TierPartial    Tier = "PARTIAL"
	TierNearlyFull Tier = "NEARLY_FULL"
	TierFull       Tier = "FULL"
)

// Rank orders tiers from emptiest to fullest. Unlimited sits below every
// capacity-bound tier.
func (t Tier) Rank() int {
	switch t {
	case TierUnlimited:
		return 0
	case TierAvailable:
		return 1
	case TierPartial:
		return 2
	case TierNearlyFull:
		return 3
	case TierFull:
		return 4
	default:
		return -1
	}
}

// Classify maps a capacity and an enrollment count onto a tier. A nil or
// non-positive capacity means the room is unlimited. Thresholds are applied
// with integer cross-multiplication so boundaries are exact:
// >= 100% full, >= 80% nearly full, >= 50% partial, otherwise available.
func Classify(capacity *int, enrolled int) Tier {
	if capacity == nil || *capacity <= 0 {
		return TierUnlimited
	}
	c := *capacity
	if enrolled < 0 {
		enrolled = 0
	}
	switch {
	case enrolled >= c:
		return TierFull
	case enrolled*10 >= c*8:
		return TierNearlyFull
	case enrolled*2 >= c:
		return TierPartial
	default:
		return TierAvailable
	}
}

// Snapshot is an enrollment reading for one session.
type Snapshot struct {
	Capacity *int
	Enrolled int
}

// Tier classifies the snapshot.
func (s Snapshot) Tier() Tier {
	return Classify(s.Capacity, s.Enrolled)
}

// Ratio returns enrolled/capacity, or false when the capacity is unlimited.
func (s Snapshot) Ratio() (float64, bool) {
	if s.Capacity == nil || *s.Capacity <= 0 {
		return 0, false
	}
	enrolled := s.Enrolled
	if enrolled < 0 {
		enrolled = 0
	}
	return float64(enrolled) / float64(*s.Capacity), true
}
