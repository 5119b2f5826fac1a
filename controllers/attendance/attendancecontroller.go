package attendance

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"SMARTATTEND/config"
	"SMARTATTEND/facestore"
	"SMARTATTEND/helper"
	"SMARTATTEND/models"
	"SMARTATTEND/recognizer"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// swapped out by tests that need a fixed wall clock
var timeNow = time.Now

// CanMark is the attendance gate. The caller has already resolved a
// concrete session; the gate re-validates the wall clock against that
// session's window (a request can straddle a boundary) and then checks
// for an existing record of the (admission_no, branch, date, session)
// tuple. The database's unique index remains the final authority, this
// check just produces the friendly message in the common case.
func CanMark(admissionNo, branch, session string, now time.Time) (bool, string) {
	if !helper.InSessionWindow(session, now) {
		return false, helper.SessionWindowMessage(session)
	}

	today := now.Format("2006-01-02")
	var existing models.Attendance
	err := models.DB.Where(
		"admission_no = ? AND branch = ? AND date = ? AND session = ?",
		admissionNo, branch, today, session,
	).First(&existing).Error

	switch {
	case err == nil:
		return false, alreadyMarkedMessage(session)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return true, "Can mark attendance"
	default:
		return false, "Failed to check attendance status"
	}
}

func alreadyMarkedMessage(session string) string {
	return fmt.Sprintf("Attendance already marked for %s session today", session)
}

type MarkPayload struct {
	Image  string `json:"image"`
	Branch string `json:"branch"`
}

func MarkAttendanceHandler(c *gin.Context) {
	if recognizer.Active == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Face recognition not available on this server"})
		return
	}

	// 1. Bind and validate input
	var payload MarkPayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Image == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No image provided"})
		return
	}
	if payload.Branch == "" {
		payload.Branch = "CSE"
	}

	// 2. Capture -> signature
	signature, err := recognizer.Active.ExtractSignature(payload.Image)
	if err != nil {
		if errors.Is(err, recognizer.ErrNoFaceDetected) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No face detected - Try better lighting/closer face"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid image data"})
		return
	}

	// 3. Find the closest enrolled identity. Empty store is its own case,
	// not an unknown face.
	match, ok := facestore.Faces.BestMatch(signature)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No students enrolled yet! Add & enroll faces first"})
		return
	}
	confidence := helper.Confidence(match.Distance)
	if match.Distance > config.VerifyThreshold {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   fmt.Sprintf("Unknown face (confidence: %.1f)", confidence),
		})
		return
	}

	// 4. The matched identity has to still exist on the roster (it may
	// have been deleted after enrollment, before the sweep caught up)
	var student models.Student
	if err := models.DB.Where("admission_no = ?", match.AdmissionNo).First(&student).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   fmt.Sprintf("Student %s no longer exists!", match.Name),
		})
		return
	}
	branch := student.Branch
	if branch == "" {
		branch = payload.Branch
	}

	// 5. Session window + once-per-session gate
	now := timeNow()
	session, active := helper.CurrentSession(now)
	if !active {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": helper.OutsideHoursMessage})
		return
	}
	if ok, reason := CanMark(student.AdmissionNo, branch, session, now); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": reason})
		return
	}

	// 6. Record the event. A duplicate-key error here means a concurrent
	// request won the race; report it the same as the gate would have.
	record := models.Attendance{
		AdmissionNo: student.AdmissionNo,
		Name:        student.Name,
		Branch:      branch,
		Date:        now.Format("2006-01-02"),
		Session:     session,
		Timestamp:   now,
		Status:      models.StatusPresent,
		Confidence:  math.Round(confidence*100) / 100,
	}
	if err := models.DB.Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": alreadyMarkedMessage(session)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save attendance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"student":      student.Name,
		"admission_no": student.AdmissionNo,
		"confidence":   fmt.Sprintf("%.2f", confidence),
		"session":      session,
		"message":      fmt.Sprintf("%s attendance marked for %s!", session, student.Name),
	})
}

func recordJSON(r models.Attendance) gin.H {
	return gin.H{
		"admission_no": r.AdmissionNo,
		"name":         r.Name,
		"branch":       r.Branch,
		"date":         r.Date,
		"timestamp":    r.Timestamp.Format(time.RFC3339),
		"status":       r.Status,
		"confidence":   fmt.Sprintf("%.2f", r.Confidence),
		"session":      r.Session,
	}
}

func branchDayRecords(c *gin.Context, date string) {
	branch := c.Param("branch")

	var records []models.Attendance
	err := models.DB.
		Where("branch = ? AND date = ? AND status = ?", branch, date, models.StatusPresent).
		Order("timestamp desc").
		Find(&records).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch attendance"})
		return
	}

	out := make([]gin.H, 0, len(records))
	for _, r := range records {
		out = append(out, recordJSON(r))
	}
	c.JSON(http.StatusOK, out)
}

func TodayAttendanceHandler(c *gin.Context) {
	branchDayRecords(c, timeNow().Format("2006-01-02"))
}

func YesterdayAttendanceHandler(c *gin.Context) {
	branchDayRecords(c, timeNow().AddDate(0, 0, -1).Format("2006-01-02"))
}

// AllAttendanceHandler returns every record, newest first, optionally
// filtered with ?branch=CSE.
func AllAttendanceHandler(c *gin.Context) {
	q := models.DB.Model(&models.Attendance{})
	if branch := c.Query("branch"); branch != "" {
		q = q.Where("branch = ?", branch)
	}

	var records []models.Attendance
	if err := q.Order("timestamp desc").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch attendance"})
		return
	}

	out := make([]gin.H, 0, len(records))
	for _, r := range records {
		out = append(out, recordJSON(r))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "records": out})
}

// StatsHandler feeds the dashboard cards: roster size, today's present
// count, and the average match confidence of today's marks.
func StatsHandler(c *gin.Context) {
	today := timeNow().Format("2006-01-02")

	var totalStudents int64
	models.DB.Model(&models.Student{}).Count(&totalStudents)

	var todayRecords []models.Attendance
	models.DB.Where("date = ? AND status = ?", today, models.StatusPresent).Find(&todayRecords)

	confidences := make([]float64, 0, len(todayRecords))
	for _, r := range todayRecords {
		confidences = append(confidences, r.Confidence)
	}

	c.JSON(http.StatusOK, gin.H{
		"total":          totalStudents,
		"today_present":  len(todayRecords),
		"today_date":     today,
		"avg_confidence": fmt.Sprintf("%.2f", helper.Mean(confidences)),
	})
}

// TestEncodingsHandler exposes the face store contents for debugging.
func TestEncodingsHandler(c *gin.Context) {
	entries := facestore.Faces.Entries()
	c.JSON(http.StatusOK, gin.H{
		"known_faces_count": len(entries),
		"known_students":    entries,
		"encodings_loaded":  len(entries) > 0,
	})
}
