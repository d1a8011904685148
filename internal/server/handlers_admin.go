package server

import (
	"fmt"
	"net/http"

	"hashfs/internal/api"
)

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	dryRun := r.URL.Query().Get("dry_run") == "true"
	if !dryRun && r.Header.Get("X-Confirm") != "true" {
		s.writeErrorReq(w, r, classifyEngineError(badRequestCode(fmt.Errorf("non-dry-run requires X-Confirm: true header"), ErrCodeMissingRequired)))
		return
	}

	report, err := s.engine.Reconcile(r.Context(), dryRun)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, api.ReconcileResponse{
		OrphanFiles:  report.OrphanFiles,
		OrphanBytes:  report.OrphanBytes,
		MissingFiles: report.MissingFiles,
		DryRun:       report.DryRun,
	})
}
