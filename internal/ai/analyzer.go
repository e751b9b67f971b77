// Package ai defines the fit analysis capability and the decoding of its textual output.
package ai

import (
	"context"

	"github.com/spigell/fitting-room/internal/catalog"
	"github.com/spigell/fitting-room/internal/measurement"
)

// OverallFit is the coarse verdict of a fit analysis.
type OverallFit string

const (
	FitPerfect    OverallFit = "perfect"
	FitGood       OverallFit = "good"
	FitAcceptable OverallFit = "acceptable"
	FitPoor       OverallFit = "poor"
)

// FitAnalysis is the structured result of analysing a garment against a body.
type FitAnalysis struct {
	OverallFit          OverallFit `json:"overallFit" mapstructure:"overallFit"`
	TightAreas          []string   `json:"tightAreas" mapstructure:"tightAreas"`
	LooseAreas          []string   `json:"looseAreas" mapstructure:"looseAreas"`
	Recommendations     []string   `json:"recommendations" mapstructure:"recommendations"`
	Confidence          int        `json:"confidence" mapstructure:"confidence"`
	ClothingDescription string     `json:"clothingDescription,omitempty" mapstructure:"clothingDescription"`
	RecommendedSize     string     `json:"recommendedSize,omitempty" mapstructure:"recommendedSize"`
}

// Request carries everything an analyzer may put into its prompt.
type Request struct {
	Measurements     measurement.Body
	Item             *catalog.Item
	ClothingImageRef string
	PresetImageRef   string
}

// Response is the raw analyzer output. Raw is expected to contain a FitAnalysis object.
type Response struct {
	Raw            string
	ResultImageRef string
}

// Analyzer produces a fit analysis for a try-on request.
// Implementations must not retry; a failed call is reported as is.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, req *Request) (*Response, error)
}
