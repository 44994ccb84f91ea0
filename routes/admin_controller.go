package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/mbolis/expert-mapper/app"
	"github.com/mbolis/expert-mapper/httpx"
	"github.com/mbolis/expert-mapper/log"
)

// ListSubmissions lists the submission journal, optionally narrowed to one
// applicant with ?user=.
func ListSubmissions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_query_param.limit")
				return
			}
			limit = n
		}

		records, err := app.Journal.List(r.Context(), r.URL.Query().Get("user"), limit)
		if err != nil {
			httpx.LogInternalError(w, "db.journal.list", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"submissions": records,
		})
	}
}
