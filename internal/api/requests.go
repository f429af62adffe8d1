// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/kappaworks/kappa/internal/recommend"
	"github.com/kappaworks/kappa/internal/validation"
)

// maxRequestBody caps recommendation request bodies at 1 MiB. Even the
// maximum rating list is far below this.
const maxRequestBody = 1 << 20

// RatingInput is one element of the request body's rating list.
type RatingInput struct {
	ID     int     `json:"id" validate:"required,gte=1"`
	Rating float64 `json:"rating" validate:"required,gte=1,lte=5"`
	// Title is accepted for client convenience and ignored.
	Title string `json:"title,omitempty" validate:"-"`
}

// recommendRequest wraps the decoded rating list for struct validation.
// Length bounds come from configuration, so only per-item rules live here.
type recommendRequest struct {
	Ratings []RatingInput `validate:"required,min=1,dive"`
}

// decodeRatingList reads and validates the JSON rating list of a
// recommendation request. minLen and maxLen are the configured rating
// list bounds.
func decodeRatingList(r *http.Request, minLen, maxLen int) ([]recommend.UserRating, *validation.APIError) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody+1))
	if err != nil {
		return nil, &validation.APIError{
			Code:    ErrCodeBadRequest,
			Message: "failed to read request body",
		}
	}
	if len(body) > maxRequestBody {
		return nil, &validation.APIError{
			Code:    ErrCodeBadRequest,
			Message: "request body too large",
		}
	}

	var inputs []RatingInput
	if err := json.Unmarshal(body, &inputs); err != nil {
		return nil, &validation.APIError{
			Code:    ErrCodeBadRequest,
			Message: "request body must be a JSON array of {id, rating} objects",
		}
	}

	if len(inputs) < minLen {
		return nil, &validation.APIError{
			Code:    ErrCodeValidationFailed,
			Message: fmt.Sprintf("at least %d ratings are required, got %d", minLen, len(inputs)),
		}
	}
	if len(inputs) > maxLen {
		return nil, &validation.APIError{
			Code:    ErrCodeValidationFailed,
			Message: fmt.Sprintf("at most %d ratings are allowed, got %d", maxLen, len(inputs)),
		}
	}

	if verr := validation.ValidateStruct(&recommendRequest{Ratings: inputs}); verr != nil {
		return nil, verr.ToAPIError()
	}

	ratings := make([]recommend.UserRating, len(inputs))
	for i, in := range inputs {
		ratings[i] = recommend.UserRating{
			ID:     in.ID,
			Rating: in.Rating,
			Title:  in.Title,
		}
	}
	return ratings, nil
}
