package student

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"SMARTATTEND/config"
	"SMARTATTEND/facestore"
	"SMARTATTEND/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func GetStudentsByBranch(c *gin.Context) {
	branch := c.Param("branch")

	var students []models.Student
	if err := models.DB.Where("branch = ?", branch).Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch students"})
		return
	}
	c.JSON(http.StatusOK, students)
}

type SearchPayload struct {
	SearchTerm string `json:"search_term" form:"search_term"`
}

// SearchStudentHandler looks up the live roster first and falls back to
// the imported master list for students not registered yet.
func SearchStudentHandler(c *gin.Context) {
	var payload SearchPayload
	_ = c.ShouldBind(&payload)
	term := strings.TrimSpace(payload.SearchTerm)
	if term == "" {
		term = strings.TrimSpace(c.Query("search_term"))
	}
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Search term required"})
		return
	}

	pattern := "%" + term + "%"

	var student models.Student
	err := models.DB.Where("admission_no LIKE ? OR name LIKE ?", pattern, pattern).First(&student).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "student": student})
		return
	}

	var master models.SearchStudent
	err = models.DB.Where("admission_no LIKE ? OR name LIKE ?", pattern, pattern).First(&master).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "student": gin.H{
			"admission_no":   master.AdmissionNo,
			"name":           master.Name,
			"branch":         master.Branch,
			"specialization": master.Specialization,
			"email":          master.Email,
			"phone":          master.Phone,
			"dob":            master.Dob,
			"photo_path":     master.PhotoPath,
			"face_enrolled":  false,
		}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": false, "error": "Student not found"})
}

// AddStudentHandler registers a student on the roster. Accepts either a
// JSON body or a multipart form with an optional photo; the photo is
// stored under a uuid-based name so re-uploads never collide.
func AddStudentHandler(c *gin.Context) {
	field := func(name string) string {
		return strings.TrimSpace(c.PostForm(name))
	}

	var body map[string]string
	if strings.Contains(c.ContentType(), "json") {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
			return
		}
		field = func(name string) string {
			return strings.TrimSpace(body[name])
		}
	}

	admissionNo := field("admission_no")
	name := field("name")
	branch := field("branch")

	var missing []string
	if admissionNo == "" {
		missing = append(missing, "Admission No")
	}
	if name == "" {
		missing = append(missing, "Name")
	}
	if branch == "" {
		missing = append(missing, "Branch")
	}
	if len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing: " + strings.Join(missing, ", ")})
		return
	}

	var count int64
	models.DB.Model(&models.Student{}).Where("admission_no = ?", admissionNo).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": fmt.Sprintf("Student %s already exists!", admissionNo)})
		return
	}

	semester := field("semester")
	if semester == "" {
		semester = "1"
	}
	student := models.Student{
		AdmissionNo:    admissionNo,
		Name:           name,
		FatherName:     field("father_name"),
		Village:        field("village"),
		Branch:         branch,
		Specialization: field("specialization"),
		Email:          field("email"),
		Phone:          field("phone"),
		Dob:            field("dob"),
		Semester:       semester,
		FaceEnrolled:   false,
	}

	// optional photo (multipart only)
	if file, err := c.FormFile("photo"); err == nil && file.Filename != "" {
		filename := fmt.Sprintf("%s_%s%s", admissionNo, uuid.NewString()[:8], filepath.Ext(file.Filename))
		dst := filepath.Join(config.UploadFolder, filename)
		if err := c.SaveUploadedFile(file, dst); err != nil {
			log.Printf("Warning: failed to save photo for %s: %v", admissionNo, err)
		} else {
			photoPath := "/static_uploads/" + filename
			student.PhotoPath = &photoPath
		}
	}

	if err := models.DB.Create(&student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to add student"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      fmt.Sprintf("Student %s added successfully!", name),
		"admission_no": admissionNo,
		"photo_path":   student.PhotoPath,
	})
}

type DeletePayload struct {
	AdmissionNo string `json:"admission_no"`
}

// DeleteStudentHandler removes a student from the roster, purges their
// attendance history, and immediately sweeps the face store so the
// deleted student can never come up as a match again. Deletion and sweep
// are sequential steps of one logical operation.
func DeleteStudentHandler(c *gin.Context) {
	var payload DeletePayload
	if err := c.ShouldBindJSON(&payload); err != nil || strings.TrimSpace(payload.AdmissionNo) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Admission No required"})
		return
	}
	admissionNo := strings.TrimSpace(payload.AdmissionNo)

	res := models.DB.Where("admission_no = ?", admissionNo).Delete(&models.Student{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Student not found"})
		return
	}

	if err := models.DB.Where("admission_no = ?", admissionNo).Delete(&models.Attendance{}).Error; err != nil {
		log.Printf("Warning: failed to purge attendance for %s: %v", admissionNo, err)
	}

	if err := SweepFaceStore(); err != nil {
		log.Printf("Warning: face store sweep after deleting %s failed: %v", admissionNo, err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Student deleted successfully!"})
}

func DeleteSearchStudentHandler(c *gin.Context) {
	var payload DeletePayload
	if err := c.ShouldBindJSON(&payload); err != nil || strings.TrimSpace(payload.AdmissionNo) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Admission No required"})
		return
	}

	res := models.DB.Where("admission_no = ?", strings.TrimSpace(payload.AdmissionNo)).Delete(&models.SearchStudent{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Search-student record not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Search-student record deleted successfully!"})
}

// SweepFaceStore reconciles the face store against the current roster.
// Also run nightly by the scheduler as a safety net.
func SweepFaceStore() error {
	var keys []string
	if err := models.DB.Model(&models.Student{}).Pluck("admission_no", &keys).Error; err != nil {
		return err
	}
	active := make(map[string]bool, len(keys))
	for _, k := range keys {
		active[k] = true
	}
	removed, err := facestore.Faces.Sweep(active)
	if removed > 0 {
		log.Printf("Face store sweep removed %d orphaned signatures", removed)
	}
	return err
}
