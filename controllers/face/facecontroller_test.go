package face

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"SMARTATTEND/facestore"
	"SMARTATTEND/models"
	"SMARTATTEND/recognizer"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubRecognizer struct {
	sig []float64
	err error
}

func (s *stubRecognizer) ExtractSignature(string) ([]float64, error) {
	return s.sig, s.err
}

func testSig(offset float64) []float64 {
	v := make([]float64, 128)
	v[0] = offset
	return v
}

func setupEnrollTest(t *testing.T) *gin.Engine {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	models.DB = db

	facestore.Faces = facestore.New(filepath.Join(t.TempDir(), "encodings.db"), 128)
	t.Cleanup(func() { recognizer.Active = nil })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/enroll_face", EnrollFaceHandler)
	return r
}

func addStudent(t *testing.T, adm, name string) {
	t.Helper()
	if err := models.DB.Create(&models.Student{AdmissionNo: adm, Name: name, Branch: "CSE"}).Error; err != nil {
		t.Fatal(err)
	}
}

func postEnroll(t *testing.T, r *gin.Engine, adm, name string, capture []float64) (int, map[string]any) {
	t.Helper()
	recognizer.Active = &stubRecognizer{sig: capture}

	body, _ := json.Marshal(gin.H{
		"admission_no": adm,
		"name":         name,
		"image":        "data:image/jpeg;base64,Zg==",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/enroll_face", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body %q: %v", w.Body.String(), err)
	}
	return w.Code, resp
}

func TestEnrollFaceLifecycle(t *testing.T) {
	r := setupEnrollTest(t)
	addStudent(t, "S1", "Alice")
	addStudent(t, "S2", "Bob")

	// fresh store: Alice enrolls
	code, resp := postEnroll(t, r, "S1", "Alice", testSig(0))
	if code != http.StatusOK || resp["success"] != true {
		t.Fatalf("enroll Alice: code=%d resp=%v", code, resp)
	}
	if facestore.Faces.Count() != 1 {
		t.Fatalf("store size = %d, want 1", facestore.Faces.Count())
	}
	var alice models.Student
	models.DB.Where("admission_no = ?", "S1").First(&alice)
	if !alice.FaceEnrolled {
		t.Error("Alice's face_enrolled flag not set")
	}

	// Bob's face is 0.5 away, above the 0.4 enrollment threshold
	code, resp = postEnroll(t, r, "S2", "Bob", testSig(0.5))
	if code != http.StatusOK || resp["success"] != true {
		t.Fatalf("enroll Bob: code=%d resp=%v", code, resp)
	}
	if facestore.Faces.Count() != 2 {
		t.Fatalf("store size = %d, want 2", facestore.Faces.Count())
	}

	// Alice again: rejected on the roster flag, whatever the capture
	code, resp = postEnroll(t, r, "S1", "Alice", testSig(3.0))
	if code != http.StatusBadRequest {
		t.Fatalf("re-enroll Alice: code=%d resp=%v", code, resp)
	}
	if resp["error"] != "Face already enrolled for Alice (S1)" {
		t.Errorf("error = %v", resp["error"])
	}
}

func TestEnrollFaceDuplicateOfAnotherStudent(t *testing.T) {
	r := setupEnrollTest(t)
	addStudent(t, "S1", "Alice")
	addStudent(t, "S3", "Mallory")

	if code, _ := postEnroll(t, r, "S1", "Alice", testSig(0)); code != http.StatusOK {
		t.Fatalf("enroll Alice failed with code %d", code)
	}

	// Mallory's capture is 0.3 from Alice's stored face
	code, resp := postEnroll(t, r, "S3", "Mallory", testSig(0.3))
	if code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", code)
	}
	if resp["error"] != "Face already belongs to: Alice (S1)" {
		t.Errorf("error = %v", resp["error"])
	}
	if facestore.Faces.Count() != 1 {
		t.Errorf("store size = %d, want 1", facestore.Faces.Count())
	}
}

func TestEnrollFaceNoFaceDetected(t *testing.T) {
	r := setupEnrollTest(t)
	addStudent(t, "S1", "Alice")
	recognizer.Active = &stubRecognizer{err: recognizer.ErrNoFaceDetected}

	body, _ := json.Marshal(gin.H{"admission_no": "S1", "name": "Alice", "image": "data:image/jpeg;base64,Zg=="})
	req := httptest.NewRequest(http.MethodPost, "/api/enroll_face", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if w.Code != http.StatusBadRequest || resp["error"] != "No face detected" {
		t.Fatalf("code=%d resp=%v", w.Code, resp)
	}
}

func TestEnrollFaceMissingFields(t *testing.T) {
	r := setupEnrollTest(t)
	recognizer.Active = &stubRecognizer{sig: testSig(0)}

	body, _ := json.Marshal(gin.H{"admission_no": "S1"})
	req := httptest.NewRequest(http.MethodPost, "/api/enroll_face", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", w.Code)
	}
}
