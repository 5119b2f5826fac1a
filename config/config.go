package config

import (
	"log"
	"os"
	"strconv"

	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
)

// Global key so controllers/middlewares can sign and verify tokens
var JWT_KEY []byte

// Claims stored inside the token
type JWTClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Matching thresholds. These are tied to the distance distribution of the
// dlib 128-d embedding model, so they are tunable via env instead of being
// buried as literals in the controllers.
//
// EnrollThreshold is tighter than VerifyThreshold: enrollment guards against
// admitting a near-duplicate identity into the store, while live matching
// has to tolerate lighting/angle variation.
var (
	EnrollThreshold = 0.4
	VerifyThreshold = 0.6
)

// File locations (relative to working dir, same as the old deployment)
var (
	EncodingsFile = "face_encodings.db"
	UploadFolder  = "static_uploads"
)

// Embedding dimensionality of the face model (dlib ResNet descriptor)
const EmbeddingDim = 128

// Runs automatically at startup
func init() {
	// 1. Try to load .env (local development only).
	// In production the file is not there, env comes from the platform.
	if err := godotenv.Load(); err != nil {
		log.Println("Info: no .env file found, using system environment variables.")
	}

	// 2. JWT key, with the old dev fallback so local setups keep working.
	// Production deployments must set a real key.
	key := os.Getenv("JWT_KEY")
	if key == "" {
		log.Println("Warning: JWT_KEY not set, using insecure development key.")
		key = "super-secret-dev-key"
	}
	JWT_KEY = []byte(key)

	// 3. Optional overrides
	if v := os.Getenv("ENROLL_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			EnrollThreshold = f
		} else {
			log.Printf("Warning: ignoring invalid ENROLL_THRESHOLD %q", v)
		}
	}
	if v := os.Getenv("VERIFY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			VerifyThreshold = f
		} else {
			log.Printf("Warning: ignoring invalid VERIFY_THRESHOLD %q", v)
		}
	}
	if v := os.Getenv("ENCODINGS_FILE"); v != "" {
		EncodingsFile = v
	}
	if v := os.Getenv("UPLOAD_FOLDER"); v != "" {
		UploadFolder = v
	}
}
