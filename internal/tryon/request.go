// Package tryon owns the lifecycle of virtual try-on requests.
package tryon

import (
	"fmt"
	"strings"
	"time"

	"github.com/spigell/fitting-room/internal/ai"
	"github.com/spigell/fitting-room/internal/apperr"
)

// Status of a try-on request. Completed and failed are terminal.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ParseStatus accepts an empty string as "any status".
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case "", StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return status, nil
	default:
		return "", apperr.Validation("unknown try-on status %q", s)
	}
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Request is the durable record of one try-on attempt.
type Request struct {
	ID               string          `json:"id"`
	UserID           string          `json:"userId"`
	ClothingID       string          `json:"clothingId"`
	PresetImageID    string          `json:"presetImageId"`
	PresetImageRef   string          `json:"presetImageRef"`
	ClothingImageRef string          `json:"clothingImageRef"`
	ResultImageRef   string          `json:"resultImageRef,omitempty"`
	FitAnalysis      *ai.FitAnalysis `json:"fitAnalysis,omitempty"`
	Status           Status          `json:"status"`
	ErrorMessage     string          `json:"errorMessage,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	CompletedAt      *time.Time      `json:"completedAt,omitempty"`
}

func (r *Request) transition(from []Status, to Status) error {
	for _, s := range from {
		if r.Status == s {
			r.Status = to
			return nil
		}
	}
	return fmt.Errorf("try-on %s: cannot move from %q to %q", r.ID, r.Status, to)
}

// Start moves a pending request into processing.
func (r *Request) Start() error {
	return r.transition([]Status{StatusPending}, StatusProcessing)
}

// Complete records a successful analysis.
func (r *Request) Complete(resultImageRef string, analysis *ai.FitAnalysis, at time.Time) error {
	if analysis == nil {
		return fmt.Errorf("try-on %s: completed request requires a fit analysis", r.ID)
	}
	if err := r.transition([]Status{StatusProcessing}, StatusCompleted); err != nil {
		return err
	}
	r.ResultImageRef = resultImageRef
	r.FitAnalysis = analysis
	r.ErrorMessage = ""
	completed := at.UTC()
	r.CompletedAt = &completed
	return nil
}

// Fail records a terminal failure. Result fields are cleared.
func (r *Request) Fail(message string) error {
	if err := r.transition([]Status{StatusPending, StatusProcessing}, StatusFailed); err != nil {
		return err
	}
	if message = strings.TrimSpace(message); message == "" {
		message = "try-on processing failed"
	}
	r.ErrorMessage = message
	r.ResultImageRef = ""
	r.FitAnalysis = nil
	r.CompletedAt = nil
	return nil
}

// ImageType describes the pose of a preset body image.
type ImageType string

const (
	ImageFront  ImageType = "front"
	ImageSide   ImageType = "side"
	ImageBack   ImageType = "back"
	ImageCustom ImageType = "custom"
)

// PresetImage is a body photo uploaded by a user for try-on.
type PresetImage struct {
	ID         string    `json:"id" yaml:"id"`
	UserID     string    `json:"userId" yaml:"userId"`
	ImageRef   string    `json:"imageRef" yaml:"imageRef"`
	ImageType  ImageType `json:"imageType" yaml:"imageType"`
	IsDefault  bool      `json:"isDefault" yaml:"isDefault"`
	UploadedAt time.Time `json:"uploadedAt" yaml:"uploadedAt"`
}
