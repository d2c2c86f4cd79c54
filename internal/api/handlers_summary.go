package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/louisbranch/splittab/internal/platform/errors"
	"github.com/louisbranch/splittab/internal/split/domain"
	"github.com/louisbranch/splittab/internal/split/settle"
)

type groupSummaryEntry struct {
	ParticipantID string          `json:"participant_id"`
	Name          string          `json:"name"`
	Submitted     bool            `json:"submitted"`
	SharePercent  int             `json:"share_percent"`
	Summary       summaryResponse `json:"summary"`
	Lines         []lineResponse  `json:"lines"`
}

type lineResponse struct {
	ItemID     string  `json:"item_id"`
	Name       string  `json:"name"`
	Proportion float64 `json:"proportion"`
	Amount     float64 `json:"amount"`
}

type summaryResponse struct {
	Subtotal        float64 `json:"subtotal"`
	Tax             float64 `json:"tax"`
	Tip             float64 `json:"tip"`
	Total           float64 `json:"total"`
	CoveragePercent int     `json:"coverage_percent"`
}

func summaryToResponse(summary settle.Summary) summaryResponse {
	return summaryResponse{
		Subtotal:        summary.Subtotal,
		Tax:             summary.Tax,
		Tip:             summary.Tip,
		Total:           summary.Total,
		CoveragePercent: summary.CoveragePercent,
	}
}

func (a *API) handleEvenSplit(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, r, errors.New(errors.CodeTokenInvalid, "missing participant identity"))
		return
	}
	sessionID := mux.Vars(r)["session_id"]
	if sessionID != claims.SessionID {
		writeError(w, r, errors.New(errors.CodeClaimNotOwned, "token is for another session"))
		return
	}

	var payload struct {
		N int `json:"n"`
	}
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	written, err := a.svc.ApplyEvenSplit(r.Context(), claims.ParticipantID, sessionID, payload.N)
	if err != nil {
		writeError(w, r, err)
		return
	}
	responses := make([]claimResponse, 0, len(written))
	for _, claim := range written {
		responses = append(responses, claimToResponse(claim))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (a *API) handleSubmit(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, r, errors.New(errors.CodeTokenInvalid, "missing participant identity"))
		return
	}

	var payload struct {
		TipPercent float64 `json:"tip_percent"`
	}
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	participant, err := a.svc.SubmitTaxTip(r.Context(), claims.ParticipantID, payload.TipPercent)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"participant_id": participant.ID,
		"tip_percent":    participant.TipPercent,
		"submitted_at":   participant.SubmittedAt,
	})
}

func (a *API) handleSummary(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, r, errors.New(errors.CodeTokenInvalid, "missing participant identity"))
		return
	}

	summary, err := a.svc.Summary(r.Context(), claims.ParticipantID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryToResponse(summary))
}

func (a *API) handleGroupSummary(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, r, errors.New(errors.CodeTokenInvalid, "missing participant identity"))
		return
	}
	sessionID := mux.Vars(r)["session_id"]
	if sessionID != claims.SessionID {
		writeError(w, r, errors.New(errors.CodeClaimNotOwned, "token is for another session"))
		return
	}

	summaries, err := a.svc.GroupSummary(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	responses := make([]groupSummaryEntry, 0, len(summaries))
	for _, entry := range summaries {
		lines := make([]lineResponse, 0, len(entry.Lines))
		for _, line := range entry.Lines {
			lines = append(lines, lineResponse{
				ItemID:     line.ItemID,
				Name:       line.Name,
				Proportion: line.Proportion,
				Amount:     domain.FloorCents(line.Amount),
			})
		}
		responses = append(responses, groupSummaryEntry{
			ParticipantID: entry.Participant.ID,
			Name:          entry.Participant.Name,
			Submitted:     entry.Participant.Submitted(),
			SharePercent:  entry.SharePercent,
			Summary:       summaryToResponse(entry.Summary),
			Lines:         lines,
		})
	}
	writeJSON(w, http.StatusOK, responses)
}
