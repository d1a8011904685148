package server

import (
	"net/http"

	"hashfs/internal/api"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleHome serves the pricing announcement consumed by payment-aware
// clients before they issue storage calls.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	pricing := s.opts.Pricing
	doc := []api.PricingService{
		{
			Name:        serviceName + "/" + serviceVersion,
			PricingType: "per-rpc",
			Pricing: []api.PricingEntry{
				{RPC: "get", PerReq: pricing.Base, PerMB: pricing.PerMB},
				{RPC: "put", PerReq: pricing.Base, PerKB: pricing.PutPerKB, PerHour: pricing.PutPerHour},
				// Default pricing, if no specific match.
				{RPC: true, PerReq: pricing.Base},
			},
		},
	}

	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.Stats(r.Context())
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, api.StatusResponse{
		Objects:       stats.Objects,
		TotalBytes:    stats.TotalBytes,
		FreeBytes:     stats.FreeBytes,
		CapacityBytes: stats.CapacityBytes,
	})
}
