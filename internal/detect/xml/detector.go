// Package xml implements the structure detector for LIDC-style radiology
// annotation XML. It proposes a parse case from session structure and probes
// the catalog's locator expressions to produce attribute findings.
package xml

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	"parsegate/internal/catalog"
	"parsegate/internal/detect"
	"parsegate/internal/domain"
)

const (
	DetectorName    = "xml_structure"
	DetectorVersion = "1.0.0"
	detectionMethod = "structure_analysis"

	// Element names at most this edit distance from an expected leaf are
	// reported as near misses on not-found findings.
	fuzzyMaxDistance = 2
)

// Parse case names proposed by this detector. The catalog must seed matching
// cases for them to score; unrecognized proposals fail or fall back per
// engine configuration.
const (
	CaseCompleteAttributes = "complete_attributes"
	CaseSingleSession      = "lidc_single_session"
	CaseMultiSession2      = "lidc_multi_session_2"
	CaseMultiSession3      = "lidc_multi_session_3"
	CaseMultiSession4      = "lidc_multi_session_4"
	CaseWithReasonPartial  = "with_reason_partial"
	CaseCoreAttributesOnly = "core_attributes_only"
)

// Detector analyzes XML documents. It is stateless; the catalog reference is
// read-only.
type Detector struct {
	catalog *catalog.Catalog
}

// NewDetector creates the XML structure detector. The catalog supplies the
// locator expressions probed for the proposed case.
func NewDetector(cat *catalog.Catalog) *Detector {
	return &Detector{catalog: cat}
}

func (d *Detector) Name() string { return DetectorName }

// CanHandle accepts documents declared as XML, or named *.xml when the
// upstream handle omits the format.
func (d *Detector) CanHandle(doc *domain.Document) bool {
	if doc.Format == domain.FormatXML {
		return true
	}
	return doc.Format == "" && strings.HasSuffix(strings.ToLower(doc.Filename), ".xml")
}

// Analyze decodes the document tree, proposes a parse case from its session
// structure, and probes the expected locators for that case.
func (d *Detector) Analyze(_ context.Context, doc *domain.Document) (*detect.RawDetection, error) {
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document %s", domain.ErrDocumentUnreadable, doc.Filename)
	}
	root, err := parseTree(doc.Content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", doc.Filename, err)
	}

	meta := domain.StructuralMetadata{
		RootElement:  root.name,
		ElementCount: root.countElements(),
		Depth:        root.depth(),
		SessionCount: countSessions(root),
	}

	parseCase := proposeCase(root, meta.SessionCount)
	confidence, breakdown := rawConfidence(root, meta)

	findings := d.probeExpected(root, parseCase)

	return &detect.RawDetection{
		ParseCase:           parseCase,
		Confidence:          confidence,
		Findings:            findings,
		Metadata:            meta,
		DetectorName:        DetectorName,
		DetectorVersion:     DetectorVersion,
		DetectionMethod:     detectionMethod,
		ConfidenceBreakdown: breakdown,
	}, nil
}

// countSessions counts radiologist reading sessions; both the session
// element and the legacy header info element mark one session.
func countSessions(root *node) int {
	n := len(root.descendants("readingSession"))
	if n == 0 {
		n = len(root.descendants("readingSessionInfo"))
	}
	return n
}

// proposeCase maps observed structure to a candidate case: session count
// selects among the LIDC session variants, a reasonForMissing element marks
// the partial variant, and bare nodule lists fall back to the core set.
func proposeCase(root *node, sessions int) string {
	if len(root.descendants("reasonForMissing")) > 0 {
		return CaseWithReasonPartial
	}
	switch {
	case sessions == 1:
		return CaseSingleSession
	case sessions == 2:
		return CaseMultiSession2
	case sessions == 3:
		return CaseMultiSession3
	case sessions >= 4:
		return CaseMultiSession4
	}
	if len(root.descendants("unblindedReadNodule")) > 0 {
		return CaseCoreAttributesOnly
	}
	return CaseCompleteAttributes
}

func rawConfidence(root *node, meta domain.StructuralMetadata) (float64, map[string]float64) {
	breakdown := map[string]float64{}

	rootScore := 0.1
	if root.name == "LidcReadMessage" || len(root.descendants("ResponseHeader")) > 0 {
		rootScore = 0.4
	}
	breakdown["root_element"] = rootScore

	sessionScore := 0.0
	if meta.SessionCount > 0 {
		sessionScore = 0.3
	} else if len(root.descendants("unblindedReadNodule")) > 0 {
		sessionScore = 0.15
	}
	breakdown["session_structure"] = sessionScore

	charScore := 0.0
	if len(root.descendants("characteristics")) > 0 {
		charScore = 0.2
	}
	breakdown["characteristics"] = charScore

	uidScore := 0.0
	if len(root.descendants("StudyInstanceUID")) > 0 {
		uidScore = 0.1
	}
	breakdown["study_uid"] = uidScore

	total := rootScore + sessionScore + charScore + uidScore
	if total > 1 {
		total = 1
	}
	return total, breakdown
}

// probeExpected evaluates every catalog locator of the proposed case against
// the tree. An unknown case yields no findings; the engine handles the miss.
func (d *Detector) probeExpected(root *node, parseCase string) []domain.AttributeFinding {
	expected, err := d.catalog.ExpectedAttributes(parseCase)
	if err != nil {
		return nil
	}

	elementNames := collectElementNames(root)
	findings := make([]domain.AttributeFinding, 0, len(expected))
	for _, attr := range expected {
		matches, countValue := evalLocator(root, attr.Locator)
		f := domain.AttributeFinding{Name: attr.Name, Locator: attr.Locator}
		switch {
		case countValue != "":
			f.Found = countValue != "0"
			f.Value = countValue
		case len(matches) > 0:
			f.Found = true
			f.Value = matches[0].value()
		default:
			f.Note = nearMiss(leafName(attr.Locator), elementNames)
		}
		findings = append(findings, f)
	}
	return findings
}

func collectElementNames(root *node) []string {
	seen := map[string]bool{}
	root.walk(func(n *node) { seen[n.name] = true })
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// nearMiss reports the closest element name within the fuzzy distance limit,
// so reviewers can spot renamed fields in evolved schemas.
func nearMiss(want string, names []string) string {
	best, bestDist := "", fuzzyMaxDistance+1
	for _, name := range names {
		if strings.EqualFold(name, want) {
			continue
		}
		d := levenshtein.Distance(strings.ToLower(want), strings.ToLower(name), nil)
		if d < bestDist {
			best, bestDist = name, d
		}
	}
	if best == "" {
		return ""
	}
	return "near miss: " + best
}
