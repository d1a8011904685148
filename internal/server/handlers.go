package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"hashfs/internal/api"
	"hashfs/internal/engine"
)

type apiError struct {
	status  int
	code    string
	errCode int
	err     error
}

func (e apiError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e apiError) Unwrap() error {
	return e.err
}

func badRequestCode(err error, code int) error {
	return apiError{status: http.StatusBadRequest, code: "invalid_argument", errCode: code, err: err}
}

// classifyEngineError translates an engine outcome into the HTTP error
// envelope: every outcome kind gets a distinct status and code pair.
func classifyEngineError(err error) apiError {
	var existing apiError
	if errors.As(err, &existing) {
		return existing
	}

	switch engine.KindOf(err) {
	case engine.KindBadRequest:
		return apiError{status: http.StatusBadRequest, code: "invalid_argument", errCode: ErrCodeInvalidArgument, err: err}
	case engine.KindNotFound:
		return apiError{status: http.StatusNotFound, code: "not_found", errCode: ErrCodeObjectNotFound, err: err}
	case engine.KindConflict:
		return apiError{status: http.StatusConflict, code: "conflict", errCode: ErrCodeObjectExists, err: err}
	case engine.KindCapacityExceeded:
		return apiError{status: http.StatusInsufficientStorage, code: "capacity_exceeded", errCode: ErrCodeCapacityExceeded, err: err}
	case engine.KindStorageFailure:
		return apiError{status: http.StatusInternalServerError, code: "internal", errCode: ErrCodeStorageFailure, err: err}
	default:
		return apiError{status: http.StatusInternalServerError, code: "internal", errCode: ErrCodeInternal, err: err}
	}
}

func (s *Server) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	s.writeErrorReq(w, r, classifyEngineError(err))
}

func (s *Server) writeErrorReq(w http.ResponseWriter, r *http.Request, apiErr apiError) {
	if apiErr.err == nil {
		apiErr.err = errors.New(http.StatusText(apiErr.status))
	}
	if apiErr.errCode == 0 {
		apiErr.errCode = defaultErrorCodeByStatus(apiErr.status)
	}

	message := apiErr.err.Error()

	fields := []any{"status", apiErr.status, "code", apiErr.code, "error_code", apiErr.errCode, "error", apiErr.err}
	if r != nil {
		fields = append(fields, "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)
	}

	switch {
	case apiErr.status == http.StatusInternalServerError:
		s.log().Error("request error", fields...)
		message = "internal error"
	case apiErr.status >= 500:
		s.log().Warn("request rejected", fields...)
	default:
		s.log().Debug("request rejected", fields...)
	}

	s.writeJSON(w, apiErr.status, api.ErrorResponse{Error: message, Code: apiErr.code, ErrorCode: apiErr.errCode})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("write json response", "status", status, "error", err)
	}
}
