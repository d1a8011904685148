package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Pricing announcement, health, and occupancy.
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)

	// Object storage surface.
	mux.HandleFunc("GET /"+serviceName+"/"+serviceVersion+"/get/{hash}", s.handleGetObject)
	mux.HandleFunc("PUT /"+serviceName+"/"+serviceVersion+"/put/{hash}", s.handlePutObject)

	// Pricing oracle for the payment collaborator.
	mux.HandleFunc("GET /"+serviceName+"/"+serviceVersion+"/price/{hash}", s.handlePrice)

	// Admin.
	mux.HandleFunc("POST /v1/admin/reconcile", s.handleReconcile)

	return s.withRequestLogging(mux)
}
