package db

import "time"

// PrerequisiteRow is one row of course_prerequisites: the prereq at
// Position within the group at GroupPosition.
type PrerequisiteRow struct {
	Subject       string
	Number        string
	GroupLabel    string
	GroupPosition int
	Position      int
	Prereq        string
	UpdatedAt     time.Time
}
