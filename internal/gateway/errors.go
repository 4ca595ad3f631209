package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"studio/internal/domain"
	"studio/internal/providers/genai"
)

const (
	msgThrottled = "You've sent too many requests in a short time. Please wait a moment and try again."
	msgTransient = "The image service ran into a temporary problem. Please try again."
	msgNoImage   = "The model did not return an image. Try adjusting your photo or instruction."
	msgNoVideo   = "The video job finished without producing a video. Please try again."
	msgGeneric   = "Something went wrong while generating. Please try again."
)

// normalize funnels every provider failure into a *domain.GenerationError
// with a message fit to show the user. Context cancellation passes through so
// callers can distinguish an aborted request from a failed one.
func (g *Gateway) normalize(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var genErr *domain.GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		message := "The request was blocked by the model's safety system."
		if len(blocked.Categories) > 0 {
			message = fmt.Sprintf("%s Blocked categories: %s.", message, strings.Join(blocked.Categories, ", "))
		}
		return &domain.GenerationError{Class: domain.ErrorClassRefusal, Message: message, Cause: err}
	}

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == "RESOURCE_EXHAUSTED" || apiErr.Code == 429 || apiErr.HTTPStatus == 429:
			return &domain.GenerationError{Class: domain.ErrorClassTransient, Message: msgThrottled, Cause: err}
		case apiErr.HTTPStatus >= 500 || apiErr.Status == "UNAVAILABLE" || apiErr.Status == "INTERNAL":
			return &domain.GenerationError{Class: domain.ErrorClassTransient, Message: msgTransient, Cause: err}
		case apiErr.Message != "":
			return &domain.GenerationError{Class: domain.ErrorClassUnknown, Message: apiErr.Message, Cause: err}
		default:
			return &domain.GenerationError{Class: domain.ErrorClassUnknown, Message: msgGeneric, Cause: err}
		}
	}

	switch {
	case errors.Is(err, domain.ErrNoImageReturned):
		return &domain.GenerationError{Class: domain.ErrorClassUnknown, Message: msgNoImage, Cause: err}
	case errors.Is(err, domain.ErrNoVideoReturned):
		return &domain.GenerationError{Class: domain.ErrorClassUnknown, Message: msgNoVideo, Cause: err}
	}

	g.logger.Warn().Err(err).Msg("gateway: unrecognized provider failure")
	return &domain.GenerationError{Class: domain.ErrorClassUnknown, Message: msgGeneric, Cause: err}
}
