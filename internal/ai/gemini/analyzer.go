package gemini

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/fitting-room/internal/ai"
	"github.com/spigell/fitting-room/internal/apperr"
	"github.com/spigell/fitting-room/internal/catalog"
	"github.com/spigell/fitting-room/internal/logger"
	"github.com/spigell/fitting-room/internal/measurement"
	"github.com/spigell/fitting-room/internal/utils"
)

const (
	providerName        = "gemini"
	defaultMaxLogLength = 200
	maxCatalogTextRunes = 300
	unknownValue        = "not provided"
)

//go:embed prompt.md
var promptTemplate string

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string, images ...InlineImage) (string, error)
	Model() string
}

// ImageLoader resolves an image reference to its bytes and MIME type.
type ImageLoader interface {
	Load(ctx context.Context, ref string) ([]byte, string, error)
}

// Analyzer is the ai.Analyzer backed by the Gemini API.
type Analyzer struct {
	generator      contentGenerator
	images         ImageLoader
	resultImageRef string
	logger         *zap.Logger
	maxLogLen      int
}

var _ ai.Analyzer = (*Analyzer)(nil)

func NewAnalyzer(generator contentGenerator, images ImageLoader, resultImageRef string, maxLogLength int, log *zap.Logger) *Analyzer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Analyzer{
		generator:      generator,
		images:         images,
		resultImageRef: resultImageRef,
		logger:         logger.WithCommonFields(log, providerName, generator.Model()),
		maxLogLen:      maxLogLength,
	}
}

func (a *Analyzer) Name() string {
	return providerName
}

func (a *Analyzer) Analyze(ctx context.Context, req *ai.Request) (*ai.Response, error) {
	if req == nil {
		return nil, errors.New("analysis request is required")
	}
	if req.Item == nil {
		return nil, errors.New("clothing item is required")
	}

	var images []InlineImage
	if ref := strings.TrimSpace(req.ClothingImageRef); ref != "" && a.images != nil {
		data, mimeType, err := a.images.Load(ctx, ref)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindAnalysisUnavailable, err, "load clothing image %q", ref)
		}
		images = append(images, InlineImage{Data: data, MIMEType: mimeType})
	}

	prompt := buildPrompt(req.Measurements, req.Item)

	a.logger.Debug("gemini generate content request",
		zap.String("clothing_id", req.Item.ID),
		zap.Int("images", len(images)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt, images...)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindAnalysisUnavailable, err, "gemini analysis failed")
	}
	if strings.TrimSpace(raw) == "" {
		return nil, apperr.New(apperr.KindAnalysisUnavailable, "gemini returned an empty analysis")
	}

	a.logger.Debug("gemini generate content response",
		zap.String("clothing_id", req.Item.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	return &ai.Response{Raw: raw, ResultImageRef: a.resultImageRef}, nil
}

func buildPrompt(body measurement.Body, item *catalog.Item) string {
	cm := body.InCentimeters()

	sizes := make([]string, 0, len(item.Sizes))
	for _, option := range item.Sizes {
		sizes = append(sizes, string(option.Size))
	}

	replacer := strings.NewReplacer(
		"{{CHEST}}", formatLength(cm.Chest, "cm"),
		"{{WAIST}}", formatLength(cm.Waist, "cm"),
		"{{HIPS}}", formatLength(cm.Hips, "cm"),
		"{{HEIGHT}}", formatLength(cm.Height, "cm"),
		"{{WEIGHT}}", formatLength(cm.Weight, "kg"),
		"{{SHOULDER_WIDTH}}", formatLength(cm.ShoulderWidth, "cm"),
		"{{INSEAM}}", formatLength(cm.Inseam, "cm"),
		"{{NAME}}", sanitizeCatalogText(item.Name),
		"{{CATEGORY}}", sanitizeCatalogText(string(item.Category)),
		"{{BRAND}}", sanitizeCatalogText(item.Brand),
		"{{DESCRIPTION}}", sanitizeCatalogText(item.Description),
		"{{SIZES}}", sanitizeCatalogText(strings.Join(sizes, ", ")),
	)

	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Measurements: chest {{CHEST}}, waist {{WAIST}}, hips {{HIPS}}.\nItem: {{NAME}} ({{CATEGORY}}).\nJSON Response:"
	}
	return replacer.Replace(template)
}

func formatLength(v float64, unit string) string {
	if v <= 0 {
		return unknownValue
	}
	return fmt.Sprintf("%s%s", strconv.FormatFloat(v, 'f', 1, 64), unit)
}

// sanitizeCatalogText folds catalog text onto a single line and bounds its length.
func sanitizeCatalogText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return unknownValue
	}
	if utf8.RuneCountInString(s) > maxCatalogTextRunes {
		s = string([]rune(s)[:maxCatalogTextRunes])
	}
	return s
}
