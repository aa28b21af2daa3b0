package api

import (
	"context"
	"log/slog"
	"net/http"

	"racing-api/internal/domain"
	"racing-api/internal/service/standings"
)

// StandingsService runs the named season aggregations.
type StandingsService interface {
	Views() []standings.View
	Standings(ctx context.Context, name string) ([]domain.StandingsRow, domain.PageMetadata, error)
}

func standingsHandler(svc StandingsService, view string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, page, err := svc.Standings(r.Context(), view)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		if rows == nil {
			rows = []domain.StandingsRow{}
		}
		setContentRange(w, page)
		writeJSON(w, http.StatusOK, rows)
	}
}
