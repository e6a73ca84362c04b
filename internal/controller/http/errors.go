package http

import (
	"errors"
	"net/http"

	"github.com/vadim/ghostwrite/internal/domain/post/entity"
	"github.com/vadim/ghostwrite/internal/httpx/response"
)

// handleDomainError maps workflow errors onto HTTP responses
func handleDomainError(w http.ResponseWriter, err error) {
	var partial *entity.PartialPublishError
	if errors.As(err, &partial) {
		response.ErrorWithCode(w, http.StatusBadGateway, "partial_publish", err.Error())
		return
	}

	switch {
	case errors.Is(err, entity.ErrPostNotFound), errors.Is(err, entity.ErrCampaignNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, entity.ErrAlreadyInStatus), errors.Is(err, entity.ErrActionInFlight):
		response.Conflict(w, err.Error())
	case errors.Is(err, entity.ErrNoActiveDraft), errors.Is(err, entity.ErrPublishPlatform),
		errors.Is(err, entity.ErrNoPageSelected):
		response.UnprocessableEntity(w, err.Error())
	case errors.Is(err, entity.ErrUnsupportedImage):
		response.Error(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, entity.ErrEmptyTopic), errors.Is(err, entity.ErrEmptyContent),
		errors.Is(err, entity.ErrMissingOAuthCode), errors.Is(err, entity.ErrInvalidStatus):
		response.BadRequest(w, err.Error())
	case errors.Is(err, entity.ErrWebhookFailed), errors.Is(err, entity.ErrStoreFailed):
		response.BadGateway(w, err.Error())
	default:
		response.InternalError(w, "internal server error")
	}
}
