package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hashfs/internal/api"
	"hashfs/internal/digest"
	"hashfs/internal/engine"
)

const ownerIdentityHeader = "X-HashFS-PKH"

func (s *Server) handleGetObject(w http.ResponseWriter, r *http.Request) {
	key := strings.ToLower(r.PathValue("hash"))

	result, err := s.engine.Get(r.Context(), key)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	rec := result.Record

	w.Header().Set("Content-Type", rec.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(rec.Size, 10))
	// The hash is a strong content tag by construction.
	w.Header().Set("ETag", rec.Hash)
	w.Header().Set("Last-Modified", time.Unix(rec.CreatedAt, 0).UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		s.log().Error("write object body", "hash", key, "error", err)
	}
}

func (s *Server) handlePutObject(w http.ResponseWriter, r *http.Request) {
	key := strings.ToLower(r.PathValue("hash"))

	if r.ContentLength < 0 {
		s.writeErrorReq(w, r, classifyEngineError(badRequestCode(fmt.Errorf("content-length header is required"), ErrCodeInvalidLength)))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			s.writeErrorReq(w, r, classifyEngineError(badRequestCode(fmt.Errorf("body exceeds %d bytes", s.opts.MaxBodyBytes), ErrCodeInvalidLength)))
			return
		}
		s.writeErrorReq(w, r, apiError{status: http.StatusInternalServerError, code: "internal", errCode: ErrCodeInternal, err: fmt.Errorf("read body: %w", err)})
		return
	}

	rec, err := s.engine.Put(r.Context(), engine.PutRequest{
		Key:            key,
		Data:           body,
		DeclaredLength: r.ContentLength,
		ContentType:    r.Header.Get("Content-Type"),
		OwnerIdentity:  strings.TrimSpace(r.Header.Get(ownerIdentityHeader)),
	})
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "%s\n", rec.Hash)
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	key := strings.ToLower(r.PathValue("hash"))
	if err := digest.ValidateKey(key); err != nil {
		s.writeErrorReq(w, r, classifyEngineError(badRequestCode(err, ErrCodeInvalidKey)))
		return
	}

	price, err := s.engine.PriceFor(r.Context(), key)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, api.PriceResponse{Hash: key, Price: price})
}
