package cli

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/civicsignal/regwatch/pkg/data"
	"github.com/civicsignal/regwatch/pkg/entity"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requestState resolves the record scope: an explicit query param wins,
// otherwise the state the server was started with (possibly empty, which
// means all states).
func requestState(r *http.Request, cfg *appConfig) string {
	if s := r.URL.Query().Get("state"); s != "" {
		return s
	}
	return cfg.State
}

func queryParamInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func summaryAPIHandler(cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := data.GetImportSummary(cfg.DB, requestState(r, cfg))
		if err != nil {
			slog.Error("failed to get import summary", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get import summary")
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func networksAPIHandler(cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		networks, err := buildNetworks(cfg.DB, requestState(r, cfg), cfg.Engine)
		if err != nil {
			slog.Error("failed to build networks", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to build networks")
			return
		}
		writeJSON(w, http.StatusOK, networks)
	}
}

func clustersAPIHandler(cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clusters, err := buildClusters(cfg.DB, requestState(r, cfg))
		if err != nil {
			slog.Error("failed to build clusters", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to build clusters")
			return
		}
		writeJSON(w, http.StatusOK, clusters)
	}
}

func formationAPIHandler(cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine := cfg.Engine
		engine.FormationWindowDays = queryParamInt(r, "w", engine.FormationWindowDays)

		clusters, err := buildFormation(cfg.DB, requestState(r, cfg), engine)
		if err != nil {
			slog.Error("failed to detect formation clusters", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to detect formation clusters")
			return
		}
		writeJSON(w, http.StatusOK, clusters)
	}
}

func linkAPIHandler(cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		license := r.URL.Query().Get("license")
		if license == "" {
			writeError(w, http.StatusBadRequest, "license is required")
			return
		}

		f, err := data.GetFacilityByLicense(cfg.DB, license)
		if err != nil {
			slog.Error("failed to load facility", "license", license, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load facility")
			return
		}
		if f == nil {
			writeError(w, http.StatusNotFound, "no facility with that license")
			return
		}

		businesses, err := data.ListBusinesses(cfg.DB, requestState(r, cfg))
		if err != nil {
			slog.Error("failed to load businesses", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load businesses")
			return
		}

		linker := entity.NewLinker(entity.NewMatcher(cfg.Engine.NameThreshold))
		writeJSON(w, http.StatusOK, &entity.FacilityLinks{
			Facility: f,
			Matches:  linker.FindLinkedBusinesses(f, businesses),
		})
	}
}

func riskAPIHandler(cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fileNumber := r.URL.Query().Get("file")
		if fileNumber == "" {
			writeError(w, http.StatusBadRequest, "file is required")
			return
		}

		assessed, err := assessBusiness(cfg.DB, requestState(r, cfg), fileNumber, cfg.Engine)
		if err != nil {
			slog.Error("failed to assess business", "file", fileNumber, "error", err)
			writeError(w, http.StatusNotFound, "failed to assess business")
			return
		}
		writeJSON(w, http.StatusOK, assessed)
	}
}

func crossRiskAPIHandler(cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := r.URL.Query().Get("owner")
		if owner == "" {
			writeError(w, http.StatusBadRequest, "owner is required")
			return
		}

		assessed, err := assessOwner(cfg.DB, requestState(r, cfg), owner, cfg.Engine)
		if err != nil {
			slog.Error("failed to assess owner", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to assess owner")
			return
		}
		writeJSON(w, http.StatusOK, assessed)
	}
}
