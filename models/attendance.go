package models

import "time"

// Attendance is one presence event. Immutable once written.
//
// The composite unique index is the real gate against double marking:
// two concurrent mark requests can both pass the existence check, but the
// database rejects the second insert, which the controller reports as
// "already marked". Date is the service-local calendar date (YYYY-MM-DD),
// Session is "AM" or "PM".
type Attendance struct {
	Id          int64     `gorm:"primaryKey" json:"id"`
	AdmissionNo string    `gorm:"size:64;uniqueIndex:idx_attendance_once" json:"admission_no"`
	Name        string    `json:"name"`
	Branch      string    `gorm:"size:32;uniqueIndex:idx_attendance_once" json:"branch"`
	Date        string    `gorm:"size:10;uniqueIndex:idx_attendance_once" json:"date"`
	Session     string    `gorm:"size:2;uniqueIndex:idx_attendance_once" json:"session"`
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `gorm:"size:16" json:"status"`
	Confidence  float64   `json:"confidence"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"-"`
}

func (Attendance) TableName() string {
	return "attendances"
}

// StatusPresent is the only status this service ever writes.
const StatusPresent = "Present"
