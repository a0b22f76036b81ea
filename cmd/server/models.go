package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/liamcoop/sentest/registration"
)

// API request and response models

// number decodes a JSON number or a numeric string.
// Strings that do not parse decode to NaN so the handler can reject them as invalid values.
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*n = number(math.NaN())
			return nil
		}
		*n = number(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("expected a number, got %s", data)
	}
	*n = number(v)
	return nil
}

// ValidateRequest is the body of POST /api/validate.
// Pointer fields distinguish a missing value from zero.
type ValidateRequest struct {
	ScenarioID        string  `json:"scenario_id"`
	UserPBO           *number `json:"user_pbo"`
	BasePBO           *number `json:"base_pbo"`
	InternalPctChange *number `json:"internal_pct_change"`
	RegistrationID    string  `json:"registration_id,omitempty"`
}

func (r *ValidateRequest) complete() bool {
	return r.ScenarioID != "" && r.UserPBO != nil && r.BasePBO != nil && r.InternalPctChange != nil
}

// RegisterRequest is the body of POST /api/register
type RegisterRequest struct {
	FullName     string `json:"fullName"`
	Organization string `json:"organization,omitempty"`
	Phone        string `json:"phone"`
	Email        string `json:"email,omitempty"`
}

func (r RegisterRequest) input() registration.Input {
	return registration.Input{
		FullName:     r.FullName,
		Organization: r.Organization,
		Phone:        r.Phone,
		Email:        r.Email,
	}
}

// RegisterResponse is returned when a registration is saved
type RegisterResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// RegisterErrorResponse carries the first failing rule plus every field failure
type RegisterErrorResponse struct {
	Error  string                    `json:"error"`
	Fields []registration.FieldError `json:"fields"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RoutesResponse lists the registered API routes
type RoutesResponse struct {
	Routes []string `json:"routes"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status       string `json:"status"`
	Store        string `json:"store"`
	AuditEntries int    `json:"auditEntries"`
	Error        string `json:"error,omitempty"`
}
