package models

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

type AspectRatio string

const (
	AspectRatioLandscape AspectRatio = "16:9"
	AspectRatioPortrait  AspectRatio = "9:16"
)

type Resolution string

const (
	Resolution720p  Resolution = "720p"
	Resolution1080p Resolution = "1080p"
)

// MaxPromptLength is the number of characters the prompt field accepts.
const MaxPromptLength = 2000

// DefaultPrompt pre-fills the prompt field on first launch.
const DefaultPrompt = "A majestic lion roaring on a cliff at sunset, cinematic lighting"

var (
	ErrEmptyPrompt      = errors.New("prompt cannot be empty")
	ErrPromptTooLong    = fmt.Errorf("prompt cannot exceed %d characters", MaxPromptLength)
	ErrInvalidOption    = errors.New("invalid generation option")
	ErrUnknownImageType = errors.New("please select an image file")
)

// ImageFile is a reference image picked by the user.
type ImageFile struct {
	Bytes    []byte `json:"-"`
	MIMEType string `json:"mimeType"`
	Filename string `json:"name"`
}

// Validate checks that the file is non-empty and declares an image MIME type.
func (f *ImageFile) Validate() error {
	if f == nil {
		return nil
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(f.MIMEType)), "image/") {
		return fmt.Errorf("%w (%s)", ErrUnknownImageType, f.MIMEType)
	}
	if len(f.Bytes) == 0 {
		return fmt.Errorf("image %q is empty", f.Filename)
	}
	return nil
}

// GenerationRequest is one submission of the generation form. AspectRatio,
// Resolution and SoundEnabled are kept for display only; the provider does
// not accept them yet.
type GenerationRequest struct {
	Prompt         string      `json:"prompt"`
	AspectRatio    AspectRatio `json:"aspectRatio"`
	Resolution     Resolution  `json:"resolution"`
	SoundEnabled   bool        `json:"soundEnabled"`
	ModelVariant   string      `json:"veoModel"`
	ReferenceImage *ImageFile  `json:"image,omitempty"`
}

// DefaultGenerationRequest returns the form state shown on first launch.
func DefaultGenerationRequest(modelVariant string) GenerationRequest {
	return GenerationRequest{
		Prompt:       DefaultPrompt,
		AspectRatio:  AspectRatioLandscape,
		Resolution:   Resolution1080p,
		SoundEnabled: true,
		ModelVariant: modelVariant,
	}
}

func (r GenerationRequest) Validate() error {
	prompt := strings.TrimSpace(r.Prompt)
	if prompt == "" {
		return ErrEmptyPrompt
	}
	if utf8.RuneCountInString(r.Prompt) > MaxPromptLength {
		return ErrPromptTooLong
	}
	switch r.AspectRatio {
	case AspectRatioLandscape, AspectRatioPortrait:
	default:
		return fmt.Errorf("%w: aspect ratio %q", ErrInvalidOption, r.AspectRatio)
	}
	switch r.Resolution {
	case Resolution720p, Resolution1080p:
	default:
		return fmt.Errorf("%w: resolution %q", ErrInvalidOption, r.Resolution)
	}
	if strings.TrimSpace(r.ModelVariant) == "" {
		return fmt.Errorf("%w: model is required", ErrInvalidOption)
	}
	return r.ReferenceImage.Validate()
}

// Snapshot returns a deep copy so later form edits cannot reach an in-flight job.
func (r GenerationRequest) Snapshot() GenerationRequest {
	out := r
	out.Prompt = strings.TrimSpace(r.Prompt)
	out.ModelVariant = strings.TrimSpace(r.ModelVariant)
	if r.ReferenceImage != nil {
		img := *r.ReferenceImage
		img.Bytes = append([]byte(nil), r.ReferenceImage.Bytes...)
		out.ReferenceImage = &img
	}
	return out
}
