// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

package validation

import (
	"strings"
	"testing"
)

type ratingInput struct {
	ID     int     `validate:"required,gte=1"`
	Rating float64 `validate:"required,gte=1,lte=5"`
}

type recommendRequest struct {
	Ratings []ratingInput `validate:"required,min=1,dive"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		wantErr   bool
		wantField string
	}{
		{
			name: "valid request",
			input: &recommendRequest{Ratings: []ratingInput{
				{ID: 1, Rating: 4.5},
				{ID: 2, Rating: 3},
			}},
		},
		{
			name:      "missing ratings",
			input:     &recommendRequest{},
			wantErr:   true,
			wantField: "Ratings",
		},
		{
			name: "rating above range",
			input: &recommendRequest{Ratings: []ratingInput{
				{ID: 1, Rating: 5.5},
			}},
			wantErr:   true,
			wantField: "Rating",
		},
		{
			name: "rating below range",
			input: &recommendRequest{Ratings: []ratingInput{
				{ID: 1, Rating: 0.5},
			}},
			wantErr:   true,
			wantField: "Rating",
		},
		{
			name: "non-positive comic id",
			input: &recommendRequest{Ratings: []ratingInput{
				{ID: -3, Rating: 4},
			}},
			wantErr:   true,
			wantField: "ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(tt.input)
			if (verr != nil) != tt.wantErr {
				t.Fatalf("ValidateStruct() = %v, wantErr %v", verr, tt.wantErr)
			}
			if verr == nil {
				return
			}
			found := false
			for _, e := range verr.Errors() {
				if e.Field() == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v mention no field %q", verr.Error(), tt.wantField)
			}
		})
	}
}

func TestToAPIErrorSingle(t *testing.T) {
	verr := ValidateStruct(&recommendRequest{Ratings: []ratingInput{{ID: 1, Rating: 9}}})
	if verr == nil {
		t.Fatal("expected validation error")
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "less than or equal to 5") {
		t.Errorf("Message = %q, want lte translation", apiErr.Message)
	}
	if apiErr.Details["tag"] != "lte" {
		t.Errorf("Details tag = %v, want lte", apiErr.Details["tag"])
	}
}

func TestToAPIErrorMultiple(t *testing.T) {
	verr := ValidateStruct(&recommendRequest{Ratings: []ratingInput{{ID: -1, Rating: 0.2}}})
	if verr == nil {
		t.Fatal("expected validation error")
	}
	if len(verr.Errors()) < 2 {
		t.Fatalf("got %d errors, want at least 2", len(verr.Errors()))
	}

	apiErr := verr.ToAPIError()
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Error("multiple errors should carry a fields detail list")
	}
	if !strings.Contains(apiErr.Message, ";") {
		t.Errorf("Message = %q, want joined messages", apiErr.Message)
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() returned different instances")
	}
}
