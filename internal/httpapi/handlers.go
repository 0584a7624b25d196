package httpapi

import (
	"encoding/json"
	"net/http"

	"dbjson/internal/diff"
	"dbjson/internal/errs"
	"dbjson/internal/sync"
)

type dumpRequest struct {
	OutputPath  string `json:"outputPath"`
	Limit       *int   `json:"limit,omitempty"`
	NestedLimit *int   `json:"nestedLimit,omitempty"`
	Flat        bool   `json:"flat,omitempty"`
	NoBase      bool   `json:"noBase,omitempty"`
}

type inputPathRequest struct {
	InputPath string `json:"inputPath"`
}

type changeSetResponse struct {
	Inserts int              `json:"inserts"`
	Updates int              `json:"updates"`
	Deletes int              `json:"deletes"`
	Changes []changeResponse `json:"changes"`
}

type changeResponse struct {
	Kind  string `json:"kind"`
	Table string `json:"table"`
}

func toChangeSetResponse(changes diff.ChangeSet) changeSetResponse {
	resp := changeSetResponse{Changes: make([]changeResponse, 0, len(changes))}
	for _, c := range changes {
		switch c.Kind {
		case diff.Insert:
			resp.Inserts++
		case diff.Update:
			resp.Updates++
		case diff.Delete:
			resp.Deletes++
		}
		resp.Changes = append(resp.Changes, changeResponse{Kind: c.Kind.String(), Table: c.Table})
	}
	return resp
}

func (s *Server) handleDump(w http.ResponseWriter, r *http.Request) {
	var req dumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Wrap(errs.KindParseError, "decode request body", err))
		return
	}
	if req.OutputPath == "" {
		writeError(w, errs.New(errs.KindParseError, "outputPath is required"))
		return
	}

	opts := sync.DumpOptions{
		OutputPath:  req.OutputPath,
		Limit:       req.Limit,
		NestedLimit: req.NestedLimit,
		Flat:        req.Flat,
		NoBase:      req.NoBase,
	}
	if err := s.Orchestrator.Dump(r.Context(), opts); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"outputPath": req.OutputPath})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req inputPathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Wrap(errs.KindParseError, "decode request body", err))
		return
	}
	changes, err := s.Orchestrator.Preview(r.Context(), sync.PreviewOptions{InputPath: req.InputPath})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChangeSetResponse(changes))
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req inputPathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Wrap(errs.KindParseError, "decode request body", err))
		return
	}
	changes, err := s.Orchestrator.Sync(r.Context(), sync.PreviewOptions{InputPath: req.InputPath})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChangeSetResponse(changes))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req inputPathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Wrap(errs.KindParseError, "decode request body", err))
		return
	}
	changes, err := s.Orchestrator.Reset(r.Context(), sync.ResetOptions{InputPath: req.InputPath})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChangeSetResponse(changes))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an errs.Kind to the HTTP status a CI caller should act on:
// client-fixable input problems are 4xx, everything else is 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errs.IsParseError(err), errs.IsUnknownTable(err), errs.IsTruncatedInput(err):
		status = http.StatusBadRequest
	case errs.IsMissingBase(err):
		status = http.StatusConflict
	case errs.IsConflictDetected(err):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
