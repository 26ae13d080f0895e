package dto

// TrackEventRequest is a raw client usage event.
type TrackEventRequest struct {
	Event    string `json:"event"`
	Page     string `json:"page"`
	TargetID *uint  `json:"targetId"`
}

// EventCount is one aggregation row in usage reports.
type EventCount struct {
	Event string `json:"event"`
	Count int64  `json:"count"`
}

// DailyCount is one day's total in a trend series.
type DailyCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}
