package scheduling

// GroupByRoomAndDay buckets entries by room, then by day. Entries keep their
// input order inside each bucket. Room-less entries land under the "" key.
func GroupByRoomAndDay(entries []Entry) map[string]map[Weekday][]Entry {
	grouped := make(map[string]map[Weekday][]Entry)
	for _, e := range entries {
		days, ok := grouped[e.RoomID]
		if !ok {
			days = make(map[Weekday][]Entry)
			grouped[e.RoomID] = days
		}
		days[e.DayOfWeek] = append(days[e.DayOfWeek], e)
	}
	return grouped
}

// GroupByDay keeps only roomID's entries and buckets them by day.
func GroupByDay(entries []Entry, roomID string) map[Weekday][]Entry {
	grouped := make(map[Weekday][]Entry)
	for _, e := range entries {
		if e.RoomID != roomID {
			continue
		}
		grouped[e.DayOfWeek] = append(grouped[e.DayOfWeek], e)
	}
	return grouped
}
