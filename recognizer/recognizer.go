// Package recognizer turns camera captures into face signatures. The
// HTTP layer hands it the data-URL string exactly as the browser sends it
// ("data:image/jpeg;base64,...."); it hands back the 128-component
// signature of the first detected face.
package recognizer

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrNoFaceDetected is returned when the image decodes fine but contains
// no detectable face. Callers report it as its own outcome, distinct from
// a malformed image.
var ErrNoFaceDetected = errors.New("no face detected")

// Recognizer extracts a face signature from a data-URL encoded image.
type Recognizer interface {
	ExtractSignature(imageDataURL string) ([]float64, error)
}

// Active is the process-wide recognizer, set once at startup. It stays nil
// when the dlib models are missing, in which case the face endpoints
// report recognition as unavailable instead of crashing.
var Active Recognizer

// DecodeDataURL strips the "<header>," prefix and base64-decodes the rest.
func DecodeDataURL(dataURL string) ([]byte, error) {
	_, encoded, found := strings.Cut(dataURL, ",")
	if !found {
		return nil, errors.New("invalid image data: not a data URL")
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid image data: %w", err)
	}
	return raw, nil
}
