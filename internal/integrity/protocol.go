package integrity

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/star-engine/internal/config"
)

// LockStatus is the terminal state of a lock record.
type LockStatus string

const (
	StatusLocked             LockStatus = "LOCKED"
	StatusVerificationFailed LockStatus = "VERIFICATION_FAILED"
)

// Record is the tamper-evident result of one Process call. Immutable once
// returned. Transformations preserve insertion order; the order encodes
// which stage produced each entry.
type Record struct {
	InputHash         string     `json:"input_hash"`
	Text              string     `json:"text"`
	Transformations   []string   `json:"transformations"`
	LockDigest        string     `json:"lock_digest"`
	OutputHash        string     `json:"output_hash"`
	Status            LockStatus `json:"status"`
	InternalValidated bool       `json:"internal_validated"`
	InverseApplied    bool       `json:"inverse_applied"`
	Timestamp         time.Time  `json:"timestamp"`
}

// Protocol runs the three-stage integrity transform: internal validation,
// inverse perspective, invariant locking. Construct once and share; the
// rule set and config are read-only after construction.
type Protocol struct {
	cfg         config.EngineConfig
	rules       Rules
	blocked     []*regexp.Regexp
	now         func() time.Time
}

// Option customizes a Protocol.
type Option func(*Protocol)

// WithClock overrides the timestamp source. The timestamp is part of the
// hashed payload, so pinning the clock makes lock digests reproducible.
func WithClock(now func() time.Time) Option {
	return func(p *Protocol) { p.now = now }
}

// WithRules overrides the default rule set.
func WithRules(rules Rules) Option {
	return func(p *Protocol) { p.rules = rules }
}

// New creates a Protocol with the given engine constants.
func New(cfg config.EngineConfig, opts ...Option) *Protocol {
	p := &Protocol{
		cfg:   cfg,
		rules: DefaultRules(),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(p)
	}
	for _, token := range p.rules.BlockedTokens {
		p.blocked = append(p.blocked, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(token)))
	}
	return p
}

// Process runs stage 1 (internal validation), stage 2 (inverse perspective),
// and stage 3 (invariant locking) in strict sequence. The context map is
// mutated in place by stage 1 and read by the later stages; the caller owns
// the map and must not share it across concurrent calls.
func (p *Protocol) Process(text string, ctx map[string]any) (Record, error) {
	if ctx == nil {
		ctx = map[string]any{}
	}

	var trace []string
	text, trace = p.internalStage(text, ctx, trace)
	trace = p.inverseStage(text, ctx, trace)

	rec, err := p.invariantStage(text, ctx, trace)
	if err != nil {
		return Record{}, err
	}

	zap.L().Info("integrity: lock complete",
		zap.String("status", string(rec.Status)),
		zap.Int("transformations", len(rec.Transformations)),
	)
	return rec, nil
}

// internalStage applies the fixed validation rule set. All checks run
// independently; a missing context key silently skips its check.
func (p *Protocol) internalStage(text string, ctx map[string]any, trace []string) (string, []string) {
	// Blocklist: replace every occurrence of each token, one trace entry
	// per distinct token found.
	for i, re := range p.blocked {
		if !re.MatchString(text) {
			continue
		}
		token := strings.ToUpper(p.rules.BlockedTokens[i])
		text = re.ReplaceAllString(text, "["+token+"_BLOCKED]")
		trace = append(trace, "SANITIZED: "+token+" token blocked")
	}

	alignment, hasAlignment := ctxFloat(ctx, "alignment")
	separation, hasSeparation := ctxFloat(ctx, "separation")
	if hasAlignment && hasSeparation && alignment < separation {
		ctx["alignment"] = separation + 0.1
		trace = append(trace, "CORRECTED: alignment enforced above separation")
	}

	coherence, hasCoherence := ctxFloat(ctx, "coherence")
	density, hasDensity := ctxFloat(ctx, "density")
	if hasCoherence && hasDensity && coherence > 1.5 && density < 2.0 {
		trace = append(trace, "WARNING: high coherence requires high density")
	}

	if growth, ok := ctxFloat(ctx, "dfruit_dt"); ok && growth > p.rules.GrowthCeiling {
		ctx["dfruit_dt"] = p.rules.GrowthCeiling
		trace = append(trace, fmt.Sprintf("CLAMPED: dfruit_dt limited to %g", p.rules.GrowthCeiling))
	}

	if qci, ok := ctxFloat(ctx, "qci"); ok && qci < math.Pi/4 {
		trace = append(trace, "FLAGGED: repentance required for low QCI")
	}

	return text, trace
}

// inverseStage flips perspective to surface hidden patterns. Every check is
// read-only: neither text nor context mutates past this point.
func (p *Protocol) inverseStage(text string, ctx map[string]any, trace []string) []string {
	alignment, hasAlignment := ctxFloat(ctx, "alignment")
	separation, hasSeparation := ctxFloat(ctx, "separation")
	if hasAlignment && hasSeparation {
		flipped := separation / (alignment + 1)
		coherence, _ := ctxFloat(ctx, "coherence")
		if flipped > coherence {
			trace = append(trace, "DETECTED: flipped perspective shows higher coherence")
		}
	}

	// Contradictions. Missing keys read as zero here, unlike stage 1.
	coherence, _ := ctxFloat(ctx, "coherence")
	density, _ := ctxFloat(ctx, "density")
	growth, _ := ctxFloat(ctx, "dfruit_dt")
	qci, _ := ctxFloat(ctx, "qci")
	tif, _ := ctxFloat(ctx, "tif")

	if coherence > 1.5 && density < 2.0 {
		trace = append(trace, "CONTRADICTION: high coherence with low density")
	}
	if growth > 5.0 && alignment < 1.0 {
		trace = append(trace, "CONTRADICTION: high growth with low alignment")
	}
	if qci > 1.5 && tif < 0.5 {
		trace = append(trace, "CONTRADICTION: high QCI with low TIF")
	}

	// Hidden text patterns.
	if hasRepeatedRun(text) {
		trace = append(trace, "PATTERN: repeated character sequence detected")
	}
	if strings.Contains(text, "%") || strings.Contains(text, `\x`) {
		trace = append(trace, "PATTERN: suspicious encoding detected")
	}
	upper := strings.ToUpper(text)
	for _, kw := range p.rules.SQLKeywords {
		if strings.Contains(upper, strings.ToUpper(kw)) {
			trace = append(trace, "PATTERN: SQL-like pattern detected")
			break
		}
	}

	// Inverse axioms.
	if coherence > 1.5 && separation > 2.0 {
		trace = append(trace, "INVERSE_VIOLATION: coherence-separation inverse violated")
	}
	if alignment > 1.5 && growth < 0 {
		trace = append(trace, "INVERSE_VIOLATION: alignment-growth inverse violated")
	}

	return trace
}

// invariantStage computes the hash chain and seals the record.
func (p *Protocol) invariantStage(text string, ctx map[string]any, trace []string) (Record, error) {
	ts := p.now()
	tsStr := ts.Format(time.RFC3339Nano)

	lockPayload, err := canonicalJSON(map[string]any{
		"data":                text,
		"context":             ctx,
		"transformations":     trace,
		"timestamp":           tsStr,
		"covenant_multiplier": p.cfg.CovenantMultiplier,
	})
	if err != nil {
		return Record{}, err
	}
	lock := chainedHash(lockPayload)

	outputPayload, err := canonicalJSON(map[string]any{
		"data":            text,
		"context":         ctx,
		"transformations": trace,
		"invariant_lock":  lock,
		"timestamp":       tsStr,
	})
	if err != nil {
		return Record{}, err
	}
	outputHash := hashHex(outputPayload)

	status := StatusVerificationFailed
	if strings.HasPrefix(lock, outputHash[:8]) {
		status = StatusLocked
	}

	return Record{
		InputHash:         hashHex([]byte(text)),
		Text:              text,
		Transformations:   trace,
		LockDigest:        lock,
		OutputHash:        outputHash,
		Status:            status,
		InternalValidated: len(trace) > 0,
		InverseApplied:    hasInverseEntry(trace),
		Timestamp:         ts,
	}, nil
}

// hasRepeatedRun reports whether any lowercase letter repeats three or more
// times consecutively.
func hasRepeatedRun(text string) bool {
	for ch := 'a'; ch <= 'z'; ch++ {
		if strings.Contains(text, strings.Repeat(string(ch), 3)) {
			return true
		}
	}
	return false
}

// hasInverseEntry reports whether any trace entry came from stage 2.
func hasInverseEntry(trace []string) bool {
	for _, t := range trace {
		if strings.HasPrefix(t, "DETECTED") ||
			strings.HasPrefix(t, "CONTRADICTION") ||
			strings.HasPrefix(t, "PATTERN") ||
			strings.HasPrefix(t, "INVERSE_VIOLATION") {
			return true
		}
	}
	return false
}

// ctxFloat extracts a numeric context value. JSON decoding produces
// float64; int covers values built in code.
func ctxFloat(ctx map[string]any, key string) (float64, bool) {
	v, ok := ctx[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
