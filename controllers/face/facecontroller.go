package face

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"SMARTATTEND/config"
	"SMARTATTEND/facestore"
	"SMARTATTEND/models"
	"SMARTATTEND/recognizer"

	"github.com/gin-gonic/gin"
)

type EnrollFacePayload struct {
	AdmissionNo string `json:"admission_no"`
	Name        string `json:"name"`
	Image       string `json:"image"` // data-URL capture from the webcam
}

func EnrollFaceHandler(c *gin.Context) {
	if recognizer.Active == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Face recognition not available on this server"})
		return
	}

	// 1. Validate input
	var payload EnrollFacePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}
	admissionNo := strings.TrimSpace(payload.AdmissionNo)
	name := strings.TrimSpace(payload.Name)
	if admissionNo == "" || name == "" || payload.Image == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing fields"})
		return
	}

	// 2. One face per identity, ever. The enrolled flag flips false->true
	// exactly once.
	var student models.Student
	err := models.DB.Where("admission_no = ?", admissionNo).First(&student).Error
	if err == nil && student.FaceEnrolled {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   fmt.Sprintf("Face already enrolled for %s (%s)", name, admissionNo),
		})
		return
	}

	// 3. Decode the capture and extract the signature
	signature, err := recognizer.Active.ExtractSignature(payload.Image)
	if err != nil {
		if errors.Is(err, recognizer.ErrNoFaceDetected) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No face detected"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid image"})
		return
	}
	if len(signature) != config.EmbeddingDim {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   fmt.Sprintf("Face signature has wrong dimensionality (must be %d)", config.EmbeddingDim),
		})
		return
	}

	// 4. Duplicate-face guard + append + persist, atomically in the store
	conflict, err := facestore.Faces.Enroll(admissionNo, name, signature, config.EnrollThreshold)
	if conflict != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   fmt.Sprintf("Face already belongs to: %s (%s)", conflict.Name, conflict.AdmissionNo),
		})
		return
	}
	if err != nil {
		// enrollment is in memory; the snapshot gets rewritten next save
		log.Printf("Warning: %v", err)
	}

	// 5. Flip the roster flag
	if err := models.DB.Model(&models.Student{}).
		Where("admission_no = ?", admissionNo).
		Update("face_enrolled", true).Error; err != nil {
		log.Printf("Warning: failed to set face_enrolled for %s: %v", admissionNo, err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": fmt.Sprintf("Face enrolled for %s!", name)})
}
