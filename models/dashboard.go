package models

// SemesterDashboard is the at-a-glance summary shown on a semester's admin page.
type SemesterDashboard struct {
	Memberships   int `json:"memberships"`
	EventsTotal   int `json:"events_total"`
	EventsEnded   int `json:"events_ended"`
	PointsAwarded int `json:"points_awarded"`
}
