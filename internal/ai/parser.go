package ai

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/spigell/fitting-room/internal/apperr"
)

const (
	defaultConfidence = 80
	schemaURL         = "fit_analysis.schema.json"
)

//go:embed fit_analysis.schema.json
var fitAnalysisSchema string

var analysisSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, strings.NewReader(fitAnalysisSchema)); err != nil {
		panic(fmt.Sprintf("add fit analysis schema: %v", err))
	}
	return compiler.MustCompile(schemaURL)
}

// ParseFitAnalysis decodes analyzer output into a FitAnalysis.
//
// Code fences are stripped first. When the remainder is not a JSON object the
// first balanced {...} span that decodes as one is used instead. Missing fields
// take defaults: overall fit "good", empty area and recommendation lists and a
// confidence of 80. Confidence is clamped to 0..100.
func ParseFitAnalysis(raw string) (*FitAnalysis, error) {
	text := stripFences(raw)
	if text == "" {
		return nil, apperr.New(apperr.KindParse, "analysis output is empty")
	}

	payload, err := decodeObject(text)
	if err != nil {
		var ok bool
		payload, ok = firstObject(text)
		if !ok {
			return nil, apperr.Wrap(apperr.KindParse, err, "no analysis object in output")
		}
	}

	return buildAnalysis(payload)
}

func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}

	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimLeftFunc(raw, isLanguageTagRune)
	if idx := strings.LastIndex(raw, "```"); idx != -1 {
		raw = raw[:idx]
	}
	return strings.TrimSpace(raw)
}

func isLanguageTagRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' || r == '+'
}

func decodeObject(text string) (map[string]any, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, fmt.Errorf("analysis output is null")
	}
	return payload, nil
}

// firstObject walks the text for balanced brace spans, skipping braces inside
// string literals, and returns the first span that decodes as an object.
func firstObject(text string) (map[string]any, bool) {
	for start := strings.IndexByte(text, '{'); start != -1; {
		if end := matchingBrace(text, start); end != -1 {
			if payload, err := decodeObject(text[start : end+1]); err == nil {
				return payload, true
			}
		}

		next := strings.IndexByte(text[start+1:], '{')
		if next == -1 {
			break
		}
		start += next + 1
	}
	return nil, false
}

func matchingBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func buildAnalysis(payload map[string]any) (*FitAnalysis, error) {
	for key, value := range payload {
		if value == nil {
			delete(payload, key)
		}
	}

	if fit, ok := payload["overallFit"].(string); ok {
		fit = strings.ToLower(strings.TrimSpace(fit))
		if fit == "" {
			delete(payload, "overallFit")
		} else {
			payload["overallFit"] = fit
		}
	}

	if err := analysisSchema.Validate(payload); err != nil {
		return nil, apperr.Wrap(apperr.KindParse, err, "analysis does not match schema")
	}

	confidence := defaultConfidence
	if value, ok := payload["confidence"]; ok {
		parsed, err := coerceConfidence(value)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindParse, err, "invalid confidence")
		}
		confidence = parsed
		delete(payload, "confidence")
	}

	var analysis FitAnalysis
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &analysis,
	})
	if err != nil {
		return nil, fmt.Errorf("create analysis decoder: %w", err)
	}
	if err := decoder.Decode(payload); err != nil {
		return nil, apperr.Wrap(apperr.KindParse, err, "decode analysis")
	}

	if analysis.OverallFit == "" {
		analysis.OverallFit = FitGood
	}
	analysis.TightAreas = cleanList(analysis.TightAreas)
	analysis.LooseAreas = cleanList(analysis.LooseAreas)
	analysis.Recommendations = cleanList(analysis.Recommendations)
	analysis.ClothingDescription = strings.TrimSpace(analysis.ClothingDescription)
	analysis.RecommendedSize = strings.TrimSpace(analysis.RecommendedSize)
	analysis.Confidence = clampConfidence(confidence)

	return &analysis, nil
}

func coerceConfidence(v any) (int, error) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, err
		}
		f = parsed
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
		parsed, err := strconv.ParseFloat(strings.TrimSpace(trimmed), 64)
		if err != nil {
			return 0, fmt.Errorf("confidence %q is not a number", val)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("confidence has unsupported type %T", v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("confidence %v is not finite", f)
	}
	return int(math.Round(math.Max(0, math.Min(100, f)))), nil
}

func clampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Encode renders the analysis as the JSON object stored with a try-on request.
func (a *FitAnalysis) Encode() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(a); err != nil {
		return "", fmt.Errorf("encode fit analysis: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
