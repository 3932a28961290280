// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

// Package validation wraps go-playground/validator v10 behind a
// thread-safe singleton with error translation into the API error
// envelope format.
//
// Request structs declare their rules with validate tags:
//
//	type CreateNotificationRequest struct {
//	    Kind    string `json:"kind" validate:"required,max=64"`
//	    Message string `json:"message" validate:"required,max=500"`
//	}
//
// Handlers call ValidateStruct and convert the result:
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
package validation
