package dto

// ClassifyOccupancyRequest is an ad-hoc capacity/enrollment reading.
type ClassifyOccupancyRequest struct {
	Capacity *int `json:"capacity"`
	Enrolled int  `json:"enrolled"`
}

// OccupancyResponse reports the availability tier of a reading.
type OccupancyResponse struct {
	RoomID   string   `json:"roomId,omitempty"`
	CourseID string   `json:"courseId,omitempty"`
	Capacity *int     `json:"capacity,omitempty"`
	Enrolled int      `json:"enrolled"`
	Ratio    *float64 `json:"ratio,omitempty"`
	Tier     string   `json:"tier"`
}
