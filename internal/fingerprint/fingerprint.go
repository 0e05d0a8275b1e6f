// Package fingerprint derives stable deduplication keys for incoming
// reports. Two reports with the same normalized text and coordinates
// that round to the same quantized cell produce the same key, across
// process restarts. The engine performs exact-match hashing of the
// normalized content only; reports worded differently about the same
// incident will not collapse.
package fingerprint

import (
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/spec-kit/civic-report-service/internal/domain"
)

// DefaultPrecision is the coordinate quantization in decimal degrees.
// Three decimals is roughly a 110 m cell, so nearby GPS readings of the
// same physical spot collapse to one key.
const DefaultPrecision = 3

// noLocationSentinel stands in for the coordinate component when a
// report carries no location, so text-only reports still fingerprint
// deterministically.
const noLocationSentinel = "nolocation"

// Engine computes fingerprints. It is stateless and safe for
// concurrent use.
type Engine struct {
	precision int
}

// New builds an engine with the given coordinate precision in decimal
// degrees. Non-positive values fall back to DefaultPrecision.
func New(precision int) *Engine {
	if precision <= 0 {
		precision = DefaultPrecision
	}
	return &Engine{precision: precision}
}

// Key derives the deduplication key for the given report content.
func (e *Engine) Key(text string, loc *domain.Location) string {
	var b strings.Builder
	b.WriteString(NormalizeText(text))
	b.WriteByte('|')
	if loc == nil {
		b.WriteString(noLocationSentinel)
	} else {
		b.WriteString(e.quantize(loc.Longitude))
		b.WriteByte('|')
		b.WriteString(e.quantize(loc.Latitude))
	}
	sum := blake3.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// NormalizeText case-folds and collapses whitespace runs so trivially
// re-transcribed text maps to identical bytes.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

func (e *Engine) quantize(v float64) string {
	scale := math.Pow10(e.precision)
	rounded := math.Round(v*scale) / scale
	return strconv.FormatFloat(rounded, 'f', e.precision, 64)
}
