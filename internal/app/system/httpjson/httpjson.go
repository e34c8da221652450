// internal/app/system/httpjson/httpjson.go

// Package httpjson holds the JSON response conventions shared by every
// feature handler. Mutation endpoints use the {success, error?, data?}
// envelope that the optimistic client reconciles against; read endpoints
// write their payload directly.
package httpjson

import (
	"encoding/json"
	"net/http"
)

// Write serializes v with the given status code.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a success envelope with optional data.
func OK(w http.ResponseWriter, data any) {
	if data == nil {
		Write(w, http.StatusOK, map[string]any{"success": true})
		return
	}
	Write(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

// Created writes a success envelope with a 201 status.
func Created(w http.ResponseWriter, data any) {
	Write(w, http.StatusCreated, map[string]any{"success": true, "data": data})
}

// Fail writes a failure envelope. The message is shown to users, so callers
// must keep backend details out of it and log them instead.
func Fail(w http.ResponseWriter, status int, msg string) {
	Write(w, status, map[string]any{"success": false, "error": msg})
}

// Error writes a bare {error} object for non-mutation endpoints (search,
// reads) where the envelope would be noise.
func Error(w http.ResponseWriter, status int, msg string) {
	Write(w, status, map[string]any{"error": msg})
}

// Decode reads a JSON request body into dst, rejecting unknown fields.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
