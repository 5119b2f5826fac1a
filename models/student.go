package models

import "time"

// Student is the authoritative roster record. AdmissionNo is the stable
// key everything else hangs off: the face store, attendance records and
// the search index all reference it.
type Student struct {
	Id             int64     `gorm:"primaryKey" json:"-"`
	AdmissionNo    string    `gorm:"uniqueIndex;size:64" json:"admission_no"`
	Name           string    `json:"name"`
	FatherName     string    `json:"father_name"`
	Village        string    `json:"village"`
	Branch         string    `gorm:"index;size:32" json:"branch"`
	Specialization string    `json:"specialization"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Dob            string    `json:"dob"`
	Semester       string    `json:"semester"`
	PhotoPath      *string   `json:"photo_path,omitempty"`
	FaceEnrolled   bool      `json:"face_enrolled"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"-"`
}

func (Student) TableName() string {
	return "students"
}

// SearchStudent is the imported master list of admitted students, used as
// a lookup fallback when someone is not yet on the live roster.
type SearchStudent struct {
	Id             int64   `gorm:"primaryKey" json:"-"`
	AdmissionNo    string  `gorm:"uniqueIndex;size:64" json:"admission_no"`
	Name           string  `json:"name"`
	Branch         string  `gorm:"size:32" json:"branch"`
	Specialization string  `json:"specialization"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	Dob            string  `json:"dob"`
	PhotoPath      *string `json:"photo_path,omitempty"`
}

func (SearchStudent) TableName() string {
	return "search_students"
}

// Admin holds the single admin profile card shown on the dashboard.
type Admin struct {
	Id        int64  `gorm:"primaryKey" json:"-"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	PhotoPath string `json:"photo"`
}

func (Admin) TableName() string {
	return "admins"
}
