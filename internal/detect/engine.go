package detect

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"parsegate/internal/catalog"
	"parsegate/internal/config"
	"parsegate/internal/domain"
)

// Engine scores raw detections against the attribute catalog. Run is
// stateless apart from the bounded raw-detection cache and is safe under
// unbounded parallel invocation; registry and catalog are immutable inputs.
type Engine struct {
	registry *Registry
	catalog  *catalog.Catalog
	cfg      config.DetectionConfig
	cache    *lru.Cache[string, *RawDetection]
}

// NewEngine creates a detection engine. Blend weights are normalized so they
// sum to 1; non-positive weight pairs fall back to the documented 0.5/0.5.
func NewEngine(registry *Registry, cat *catalog.Catalog, cfg config.DetectionConfig) (*Engine, error) {
	if cfg.RawWeight+cfg.MatchWeight <= 0 {
		cfg.RawWeight, cfg.MatchWeight = 0.5, 0.5
	} else {
		sum := cfg.RawWeight + cfg.MatchWeight
		cfg.RawWeight /= sum
		cfg.MatchWeight /= sum
	}
	if cfg.FallbackCase != "" && !cat.Validate(cfg.FallbackCase) {
		return nil, fmt.Errorf("engine: fallback case %q: %w", cfg.FallbackCase, domain.ErrUnknownParseCase)
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = 512
	}
	cache, err := lru.New[string, *RawDetection](size)
	if err != nil {
		return nil, fmt.Errorf("engine: cache: %w", err)
	}
	return &Engine{registry: registry, catalog: cat, cfg: cfg, cache: cache}, nil
}

// Run selects a detector, analyzes the document, and cross-references the
// catalog to produce a scored DetectionResult. Identical documents against
// identical registered state produce identical results.
func (e *Engine) Run(ctx context.Context, doc *domain.Document) (*domain.DetectionResult, error) {
	detector, err := e.registry.Select(doc)
	if err != nil {
		return nil, err
	}

	raw, err := e.analyze(ctx, detector, doc)
	if err != nil {
		return nil, err
	}

	return e.score(raw)
}

// analyze runs the detector behind the signature cache. Detector panics are
// converted to ErrDetectionFailed rather than crossing the engine boundary.
func (e *Engine) analyze(ctx context.Context, detector Detector, doc *domain.Document) (raw *RawDetection, err error) {
	sig := StructureSignature(detector.Name(), doc)
	if cached, ok := e.cache.Get(sig); ok {
		return cached, nil
	}

	defer func() {
		if r := recover(); r != nil {
			raw = nil
			err = fmt.Errorf("%w: detector %s panicked: %v", domain.ErrDetectionFailed, detector.Name(), r)
		}
	}()

	raw, err = detector.Analyze(ctx, doc)
	if err != nil {
		if isExpectedAnalyzeError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: detector %s: %v", domain.ErrDetectionFailed, detector.Name(), err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: detector %s returned no detection", domain.ErrDetectionFailed, detector.Name())
	}

	e.cache.Add(sig, raw)
	return raw, nil
}

func isExpectedAnalyzeError(err error) bool {
	return errors.Is(err, domain.ErrDocumentUnreadable) || errors.Is(err, domain.ErrDetectionFailed)
}

// score diffs a raw detection against the catalog and blends confidence.
func (e *Engine) score(raw *RawDetection) (*domain.DetectionResult, error) {
	parseCase := raw.ParseCase
	fallbackApplied := false
	if !e.catalog.Validate(parseCase) {
		if e.cfg.FallbackCase == "" {
			return nil, fmt.Errorf("engine: detector proposed %q: %w", parseCase, domain.ErrUnknownParseCase)
		}
		parseCase = e.cfg.FallbackCase
		fallbackApplied = true
	}

	expected, err := e.catalog.ExpectedAttributes(parseCase)
	if err != nil {
		return nil, err
	}

	detectedNames := make(map[string]bool, len(raw.Findings))
	for _, f := range raw.Findings {
		if f.Found {
			detectedNames[f.Name] = true
		}
	}

	var missing []domain.AttributeDefinition
	var requiredTotal, requiredDetected, totalDetected int
	for _, attr := range expected {
		found := detectedNames[attr.Name]
		if found {
			totalDetected++
		} else {
			missing = append(missing, attr)
		}
		if attr.Required {
			requiredTotal++
			if found {
				requiredDetected++
			}
		}
	}

	// Vacuously perfect when the case requires nothing.
	matchPct := 100.0
	if requiredTotal > 0 {
		matchPct = float64(requiredDetected) / float64(requiredTotal) * 100
	}

	rawConf := clamp01(raw.Confidence)
	confidence := clamp01(e.cfg.RawWeight*rawConf + e.cfg.MatchWeight*matchPct/100)

	breakdown := make(map[string]float64, len(raw.ConfidenceBreakdown)+4)
	for k, v := range raw.ConfidenceBreakdown {
		breakdown[k] = v
	}
	breakdown["raw_confidence"] = rawConf
	breakdown["match_percentage"] = matchPct
	breakdown["raw_weight"] = e.cfg.RawWeight
	breakdown["match_weight"] = e.cfg.MatchWeight

	return &domain.DetectionResult{
		ParseCase:           parseCase,
		Confidence:          confidence,
		RawConfidence:       rawConf,
		ExpectedAttributes:  expected,
		DetectedAttributes:  raw.Findings,
		MissingAttributes:   missing,
		MatchPercentage:     matchPct,
		RequiredTotal:       requiredTotal,
		RequiredDetected:    requiredDetected,
		TotalExpected:       len(expected),
		TotalDetected:       totalDetected,
		DetectorName:        raw.DetectorName,
		DetectorVersion:     raw.DetectorVersion,
		DetectionMethod:     raw.DetectionMethod,
		ConfidenceBreakdown: breakdown,
		Metadata:            raw.Metadata,
		FallbackApplied:     fallbackApplied,
	}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
