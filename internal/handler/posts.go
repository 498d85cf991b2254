package handler

import (
	"net/http"
	"strconv"

	"halidom/internal/domain/models"
	"halidom/internal/httputil"
)

// respondEditOutcome maps the three-way edit outcome onto the wire: a missing
// revision is 404, everything else is 200 with the outcome in the body.
func respondEditOutcome(w http.ResponseWriter, outcome models.EditOutcome) {
	if outcome == models.EditNotFound {
		httputil.RespondError(w, http.StatusNotFound, "Revision not found")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"result": outcome})
}

// availabilityCheck is the shared shape of the three per-kind availability
// endpoints, which differ only in the service method they call.
type availabilityCheck func(r *http.Request, language string, sequenceID *int64) (bool, error)

// respondAvailability parses the lang and optional id query parameters and
// runs the check. A missing id means "next auto-assigned id", which is always
// available; an id that is not an integer can never be assigned, so it is
// reported unavailable rather than rejected.
func respondAvailability(w http.ResponseWriter, r *http.Request, check availabilityCheck) {
	language := r.URL.Query().Get("lang")
	if language == "" {
		httputil.RespondError(w, http.StatusBadRequest, "lang query parameter is required")
		return
	}

	var sequenceID *int64
	if raw := r.URL.Query().Get("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httputil.RespondJSON(w, http.StatusOK, map[string]any{"available": false})
			return
		}
		sequenceID = &id
	}

	available, err := check(r, language, sequenceID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"available": available})
}
