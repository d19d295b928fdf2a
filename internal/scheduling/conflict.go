package scheduling

// Conflict is an existing session that clashes with a candidate.
type Conflict struct {
	EntryID   string
	CourseID  string
	RoomID    string
	DayOfWeek Weekday
	StartTime int
	EndTime   int
}

// DetectConflicts returns every active in-person entry in existing that shares
// the candidate's room and day and overlaps it in time. The entry whose id
// equals excludeID is ignored so an edited entry never clashes with its own
// stored version. Virtual or room-less candidates never conflict.
func DetectConflicts(candidate Entry, existing []Entry, excludeID string) []Conflict {
	switch candidate.Modality {
	case ModalityVirtual:
		return nil
	case ModalityInPerson:
		if candidate.RoomID == "" {
			return nil
		}
	default:
		return nil
	}

	var conflicts []Conflict
	for _, other := range existing {
		if !other.Active || other.Modality != ModalityInPerson {
			continue
		}
		if other.RoomID != candidate.RoomID || other.DayOfWeek != candidate.DayOfWeek {
			continue
		}
		if excludeID != "" && other.ID == excludeID {
			continue
		}
		if !candidate.Overlaps(other) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			EntryID:   other.ID,
			CourseID:  other.CourseID,
			RoomID:    other.RoomID,
			DayOfWeek: other.DayOfWeek,
			StartTime: other.StartTime,
			EndTime:   other.EndTime(),
		})
	}
	return conflicts
}
