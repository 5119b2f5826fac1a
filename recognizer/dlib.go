package recognizer

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/Kagami/go-face"
)

// DlibRecognizer wraps the dlib face pipeline (detection + ResNet
// descriptor). Descriptors are 128-dimensional, matching the store.
type DlibRecognizer struct {
	rec *face.Recognizer
}

// NewDlib loads the dlib models from modelDir (shape predictor + resnet
// descriptor files, same layout go-face expects).
func NewDlib(modelDir string) (*DlibRecognizer, error) {
	rec, err := face.NewRecognizer(modelDir)
	if err != nil {
		return nil, fmt.Errorf("load face models from %s: %w", modelDir, err)
	}
	return &DlibRecognizer{rec: rec}, nil
}

// Close releases the dlib resources.
func (r *DlibRecognizer) Close() {
	r.rec.Close()
}

// ExtractSignature decodes the capture and returns the descriptor of the
// first detected face. Webcams send JPEG but some browsers send PNG, and
// dlib only eats JPEG, so non-JPEG payloads are transcoded first.
func (r *DlibRecognizer) ExtractSignature(imageDataURL string) ([]float64, error) {
	raw, err := DecodeDataURL(imageDataURL)
	if err != nil {
		return nil, err
	}

	jpg, err := ensureJPEG(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid image data: %w", err)
	}

	faces, err := r.rec.Recognize(jpg)
	if err != nil {
		return nil, fmt.Errorf("face recognition failed: %w", err)
	}
	if len(faces) == 0 {
		return nil, ErrNoFaceDetected
	}

	// first detected face only
	desc := faces[0].Descriptor
	sig := make([]float64, len(desc))
	for i, v := range desc {
		sig[i] = float64(v)
	}
	return sig, nil
}

func ensureJPEG(raw []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	if format == "jpeg" {
		return raw, nil
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
