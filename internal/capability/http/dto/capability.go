// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	capabilityDomain "github.com/allisson/entitygate/internal/capability/domain"
	capabilityUseCase "github.com/allisson/entitygate/internal/capability/usecase"
)

// maxArguments bounds how many invocation arguments a single request may
// carry.
const maxArguments = 32

// InvokeRequest contains the arguments for a capability invocation. The
// capability name travels in the URL, not the body.
type InvokeRequest struct {
	Arguments map[string]any `json:"arguments"`
}

// Validate checks if the invoke request is valid.
func (r *InvokeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Arguments,
			validation.Length(0, maxArguments),
		),
	)
}

// ListCapabilitiesResponse lists the capabilities visible to the caller.
type ListCapabilitiesResponse struct {
	Capabilities []capabilityUseCase.View `json:"capabilities"`
	Total        int                      `json:"total"`
}

// MapViewsToListResponse converts capability views to the list response.
func MapViewsToListResponse(views []capabilityUseCase.View) *ListCapabilitiesResponse {
	return &ListCapabilitiesResponse{
		Capabilities: views,
		Total:        len(views),
	}
}

// InvokeResponse carries the outcome of a capability invocation.
type InvokeResponse struct {
	Capability string   `json:"capability"`
	Data       any      `json:"data"`
	Warnings   []string `json:"warnings,omitempty"`
}

// MapResultToInvokeResponse converts an invocation result to the response.
func MapResultToInvokeResponse(name string, result *capabilityDomain.Result) *InvokeResponse {
	return &InvokeResponse{
		Capability: name,
		Data:       result.Data,
		Warnings:   result.Warnings,
	}
}
