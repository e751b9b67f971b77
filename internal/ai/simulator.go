package ai

import (
	"context"
	"fmt"
	"strconv"
)

const simulatorConfidence = 85

// Simulator is a deterministic Analyzer used when no model credentials are configured.
type Simulator struct {
	resultImageRef string
}

func NewSimulator(resultImageRef string) *Simulator {
	return &Simulator{resultImageRef: resultImageRef}
}

func (s *Simulator) Name() string {
	return "simulator"
}

// Analysis returns the canned analysis for the given request.
func (s *Simulator) Analysis(req *Request) FitAnalysis {
	chest := req.Measurements.InCentimeters().Chest
	return FitAnalysis{
		OverallFit: FitGood,
		TightAreas: []string{},
		LooseAreas: []string{"shoulders"},
		Recommendations: []string{
			"The fit looks good overall based on your measurements",
			fmt.Sprintf("Chest: %scm should fit comfortably", strconv.FormatFloat(chest, 'f', -1, 64)),
			"Consider your preferred fit style when ordering",
		},
		Confidence: simulatorConfidence,
	}
}

func (s *Simulator) Analyze(_ context.Context, req *Request) (*Response, error) {
	if req == nil {
		req = &Request{}
	}

	analysis := s.Analysis(req)
	raw, err := analysis.Encode()
	if err != nil {
		return nil, err
	}

	return &Response{Raw: raw, ResultImageRef: s.resultImageRef}, nil
}
