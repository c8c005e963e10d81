// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"retailtracker/internal/core"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

var (
	errEmptyBody     = errors.New("request body is required")
	errMalformedBody = errors.New("malformed JSON body")
	errBodyTooLarge  = errors.New("request body too large")
	errInvalidID     = errors.New("id must be a positive integer")
)

// DecodeJSON reads one JSON value from the request body into dst. Failures
// come back as a *core.ValidationError on the "body" field.
func DecodeJSON(r *http.Request, dst any) error {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return bodyError(errMalformedBody)
	}
	if len(raw) > maxBodyBytes {
		return bodyError(errBodyTooLarge)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return bodyError(errEmptyBody)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			v := &core.ValidationError{}
			v.Add(typeErr.Field, fmt.Errorf("must be a %s", jsonKind(typeErr.Type.Kind().String())))
			return v
		}
		return bodyError(errMalformedBody)
	}
	if dec.More() {
		return bodyError(errMalformedBody)
	}
	return nil
}

func jsonKind(goKind string) string {
	switch goKind {
	case "string", "ptr":
		return "string"
	case "int", "int64", "float64":
		return "number"
	}
	return goKind
}

func bodyError(err error) error {
	v := &core.ValidationError{}
	v.Add("body", err)
	return v
}

// ParseID returns the positive integer path value {id}.
func ParseID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.PathValue("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		v := &core.ValidationError{}
		v.Add("id", errInvalidID)
		return 0, v
	}
	return id, nil
}

// ParseDateRange reads the optional startDate and endDate query values.
func ParseDateRange(r *http.Request) (core.DateRange, error) {
	q := r.URL.Query()
	dr := core.DateRange{
		Start: core.Date(strings.TrimSpace(q.Get("startDate"))),
		End:   core.Date(strings.TrimSpace(q.Get("endDate"))),
	}
	if err := dr.Validate(); err != nil {
		return core.DateRange{}, err
	}
	return dr, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
