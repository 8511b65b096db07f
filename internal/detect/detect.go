// Package detect implements pluggable document structure detection: a
// capability-dispatched detector registry and the scoring engine that diffs
// detector output against the attribute catalog.
package detect

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"parsegate/internal/domain"
)

// RawDetection is a detector's unscored proposal for a document: a candidate
// parse case, a raw confidence, and the attribute findings that back it.
type RawDetection struct {
	ParseCase           string
	Confidence          float64
	Findings            []domain.AttributeFinding
	Metadata            domain.StructuralMetadata
	DetectorName        string
	DetectorVersion     string
	DetectionMethod     string
	ConfidenceBreakdown map[string]float64
}

// Detector analyzes one document format. Implementations must be stateless
// or internally synchronized; Analyze is called concurrently.
type Detector interface {
	Name() string
	// CanHandle reports whether this detector understands the document's
	// declared format and shape. It must not mutate the document.
	CanHandle(doc *domain.Document) bool
	// Analyze proposes a parse case for the document. It returns
	// domain.ErrDocumentUnreadable when the content cannot be decoded.
	Analyze(ctx context.Context, doc *domain.Document) (*RawDetection, error)
}

// Registry dispatches documents to the first registered detector that can
// handle them, in registration order. Registration happens at composition
// time; the registry is immutable once the process is serving.
type Registry struct {
	detectors []Detector
}

// NewRegistry creates an empty detector registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a detector. Supporting a new format is exactly this call;
// existing detectors and selection logic stay untouched.
func (r *Registry) Register(d Detector) {
	r.detectors = append(r.detectors, d)
}

// Select returns the first detector whose CanHandle accepts the document,
// or domain.ErrNoDetectorAvailable.
func (r *Registry) Select(doc *domain.Document) (Detector, error) {
	for _, d := range r.detectors {
		if d.CanHandle(doc) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("registry: format %q (%s): %w",
		doc.Format, doc.Filename, domain.ErrNoDetectorAvailable)
}

// Names lists registered detectors in registration order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.detectors))
	for _, d := range r.detectors {
		out = append(out, d.Name())
	}
	return out
}

// StructureSignature derives a cache key for a document's content as seen by
// one detector. Identical content always yields the identical signature.
func StructureSignature(detectorName string, doc *domain.Document) string {
	sum := sha256.Sum256(doc.Content)
	return detectorName + ":" + hex.EncodeToString(sum[:])
}
