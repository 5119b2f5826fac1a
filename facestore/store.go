// Package facestore holds the in-memory working set of enrolled face
// signatures and the matching logic over it. It is the single source of
// truth for "who is matchable right now"; the roster database only keeps
// the face_enrolled flag.
package facestore

import (
	"fmt"
	"log"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// Faces is the process-wide store, wired up in main before the router
// starts taking requests.
var Faces *Store

// Store keeps three parallel slices (signature vectors, admission numbers,
// display names) plus the snapshot file they are persisted to. Every
// logical operation runs under one mutex so concurrent enroll / match /
// sweep requests cannot observe a half-updated working set.
type Store struct {
	mu   sync.Mutex
	path string
	dim  int

	signatures   [][]float64
	admissionNos []string
	names        []string
}

// Entry is a (name, admission number) pair, used by the debug endpoint.
type Entry struct {
	Name        string `json:"name"`
	AdmissionNo string `json:"admission_no"`
}

// Match is the best candidate for a query signature.
type Match struct {
	Index       int
	AdmissionNo string
	Name        string
	Distance    float64
}

// Conflict reports the identity that already owns a near-identical face.
type Conflict struct {
	AdmissionNo string
	Name        string
	Distance    float64
}

// New returns an empty store persisting to path, accepting vectors of the
// given dimensionality.
func New(path string, dim int) *Store {
	return &Store{path: path, dim: dim}
}

// Load restores the working set from the snapshot file. A missing or
// corrupt snapshot is not fatal: the store starts empty and says so in the
// log, matching how the service has always behaved on a fresh deployment.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	sigs, admissionNos, names, err := readSnapshot(s.path, s.dim)
	if err != nil {
		log.Printf("Warning: could not load face encodings from %s: %v (starting empty)", s.path, err)
		s.signatures, s.admissionNos, s.names = nil, nil, nil
		return
	}
	s.signatures = sigs
	s.admissionNos = admissionNos
	s.names = names
	log.Printf("Loaded %d face encodings", len(s.signatures))
}

// Save persists the full working set. Used by the nightly job; the
// mutating operations persist on their own.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save assumes the caller holds s.mu.
func (s *Store) save() error {
	if err := writeSnapshot(s.path, s.signatures, s.admissionNos, s.names); err != nil {
		return fmt.Errorf("save face encodings: %w", err)
	}
	return nil
}

// Count reports how many signatures are currently enrolled.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.signatures)
}

// Entries returns a copy of the enrolled (name, admission number) pairs in
// insertion order.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.admissionNos))
	for i := range s.admissionNos {
		out[i] = Entry{Name: s.names[i], AdmissionNo: s.admissionNos[i]}
	}
	return out
}

// BestMatch scans every stored signature and returns the one with the
// smallest Euclidean distance to query. ok is false when the store is
// empty; callers must treat that as its own case ("nobody enrolled yet"),
// not as a failed match. query must have the store's dimensionality.
func (s *Store) BestMatch(query []float64) (Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bestMatch(query)
}

// bestMatch assumes the caller holds s.mu.
func (s *Store) bestMatch(query []float64) (Match, bool) {
	if len(s.signatures) == 0 {
		return Match{}, false
	}
	best := Match{Index: -1}
	for i, sig := range s.signatures {
		d := floats.Distance(query, sig, 2)
		if best.Index == -1 || d < best.Distance {
			best = Match{Index: i, AdmissionNo: s.admissionNos[i], Name: s.names[i], Distance: d}
		}
	}
	return best, true
}

// Enroll runs the duplicate-face check and, if it passes, appends the
// signature and persists the snapshot, all under one lock so a concurrent
// enrollment cannot sneak a near-duplicate in between check and append.
//
// A non-nil Conflict means a different identity already owns a face within
// threshold distance; the store is left untouched. A snapshot write
// failure is returned as err but the in-memory enrollment stands (the
// snapshot is rewritten on the next successful save).
func (s *Store) Enroll(admissionNo, name string, sig []float64, threshold float64) (*Conflict, error) {
	if len(sig) != s.dim {
		return nil, fmt.Errorf("face signature has %d components, want %d", len(sig), s.dim)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.bestMatch(sig); ok && m.Distance < threshold && m.AdmissionNo != admissionNo {
		return &Conflict{AdmissionNo: m.AdmissionNo, Name: m.Name, Distance: m.Distance}, nil
	}

	s.add(admissionNo, name, sig)
	return nil, s.save()
}

// Add appends a signature without the duplicate-face check and persists.
// Enroll is the normal entry point; this exists for imports/recovery
// tooling that already vetted its data.
func (s *Store) Add(admissionNo, name string, sig []float64) error {
	if len(sig) != s.dim {
		return fmt.Errorf("face signature has %d components, want %d", len(sig), s.dim)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(admissionNo, name, sig)
	return s.save()
}

// add assumes the caller holds s.mu.
func (s *Store) add(admissionNo, name string, sig []float64) {
	s.signatures = append(s.signatures, sig)
	s.admissionNos = append(s.admissionNos, admissionNo)
	s.names = append(s.names, name)
}

// RemoveAt drops the signature/key/name triple at index i, keeping the
// relative order of the rest, and persists immediately.
func (s *Store) RemoveAt(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.signatures) {
		return fmt.Errorf("face store index %d out of range (size %d)", i, len(s.signatures))
	}
	s.removeAt(i)
	return s.save()
}

// removeAt assumes the caller holds s.mu.
func (s *Store) removeAt(i int) {
	s.signatures = append(s.signatures[:i], s.signatures[i+1:]...)
	s.admissionNos = append(s.admissionNos[:i], s.admissionNos[i+1:]...)
	s.names = append(s.names[:i], s.names[i+1:]...)
}

// Sweep removes every signature whose admission number is not in
// activeKeys and persists once. Called synchronously after a roster
// deletion and again by the nightly reconcile job; running it repeatedly
// with an unchanged roster removes nothing.
func (s *Store) Sweep(activeKeys map[string]bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var orphaned []int
	for i, adm := range s.admissionNos {
		if !activeKeys[adm] {
			orphaned = append(orphaned, i)
		}
	}
	if len(orphaned) == 0 {
		return 0, nil
	}

	// descending so earlier indices stay valid during multi-removal
	for j := len(orphaned) - 1; j >= 0; j-- {
		i := orphaned[j]
		log.Printf("Removed orphaned face: %s (%s)", s.names[i], s.admissionNos[i])
		s.removeAt(i)
	}
	return len(orphaned), s.save()
}
