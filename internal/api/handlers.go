package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/louisbranch/splittab/internal/platform/errors"
	"github.com/louisbranch/splittab/internal/split/domain"
)

type sessionResponse struct {
	ID         string  `json:"id"`
	Code       string  `json:"code"`
	TaxPercent float64 `json:"tax_percent"`
}

type joinResponse struct {
	Token         string `json:"token"`
	ParticipantID string `json:"participant_id"`
	SessionID     string `json:"session_id"`
}

type itemPayload struct {
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

type itemResponse struct {
	ID        string  `json:"id"`
	SessionID string  `json:"session_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

type claimPayload struct {
	Method  string  `json:"method"`
	Units   int     `json:"units"`
	Percent string  `json:"percent"`
	Value   float64 `json:"value"`
}

type claimResponse struct {
	ParticipantID string  `json:"participant_id"`
	ItemID        string  `json:"item_id"`
	Proportion    float64 `json:"proportion"`
	Method        string  `json:"method"`
}

func itemToResponse(item domain.Item) itemResponse {
	return itemResponse{
		ID:        item.ID,
		SessionID: item.SessionID,
		Name:      item.Name,
		UnitPrice: item.UnitPrice,
		Quantity:  item.Quantity,
	}
}

func claimToResponse(claim domain.Claim) claimResponse {
	return claimResponse{
		ParticipantID: claim.ParticipantID,
		ItemID:        claim.ItemID,
		Proportion:    claim.Proportion,
		Method:        string(claim.Method),
	}
}

func (a *API) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TaxPercent float64 `json:"tax_percent"`
	}
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := a.svc.CreateSession(r.Context(), payload.TaxPercent)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{
		ID:         session.ID,
		Code:       session.Code,
		TaxPercent: session.TaxPercent,
	})
}

func (a *API) handleJoin(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	var payload struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := a.svc.GetSessionByCode(r.Context(), code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	participant, err := a.svc.Join(r.Context(), session.ID, payload.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	token, err := a.issueToken(participant.ID, session.ID, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, joinResponse{
		Token:         token,
		ParticipantID: participant.ID,
		SessionID:     session.ID,
	})
}

func (a *API) handleListItems(w http.ResponseWriter, r *http.Request) {
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

	items, err := a.svc.ListItems(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	responses := make([]itemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, itemToResponse(item))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (a *API) handleAddItem(w http.ResponseWriter, r *http.Request) {
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

	var payload itemPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	item, err := a.svc.AddItem(r.Context(), domain.CreateItemInput{
		SessionID: sessionID,
		Name:      payload.Name,
		UnitPrice: payload.UnitPrice,
		Quantity:  payload.Quantity,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, itemToResponse(item))
}

// itemForActor resolves the actor's token claims and the item, checking the
// item belongs to the actor's session.
func (a *API) itemForActor(r *http.Request, itemID string) (*Claims, domain.Item, error) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		return nil, domain.Item{}, errors.New(errors.CodeTokenInvalid, "missing participant identity")
	}
	item, err := a.svc.GetItem(r.Context(), itemID)
	if err != nil {
		return nil, domain.Item{}, err
	}
	if item.SessionID != claims.SessionID {
		return nil, domain.Item{}, errors.New(errors.CodeClaimNotOwned, "token is for another session")
	}
	return claims, item, nil
}

func (a *API) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID := mux.Vars(r)["item_id"]
	if _, _, err := a.itemForActor(r, itemID); err != nil {
		writeError(w, r, err)
		return
	}
	var payload itemPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	item, err := a.svc.UpdateItem(r.Context(), itemID, domain.UpdateItemInput{
		Name:      payload.Name,
		UnitPrice: payload.UnitPrice,
		Quantity:  payload.Quantity,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, itemToResponse(item))
}

func (a *API) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID := mux.Vars(r)["item_id"]
	if _, _, err := a.itemForActor(r, itemID); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.svc.DeleteItem(r.Context(), itemID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpsertClaim accepts either a unit count or a percent value. Percent
// arrives as free text so "1/3" works the way it does on a receipt.
func (a *API) handleUpsertClaim(w http.ResponseWriter, r *http.Request) {
	itemID := mux.Vars(r)["item_id"]
	claims, item, err := a.itemForActor(r, itemID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var payload claimPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	// "rest" claims whatever the other participants have left unclaimed.
	if domain.Method(payload.Method) == domain.MethodPercentage && strings.EqualFold(strings.TrimSpace(payload.Percent), "rest") {
		written, err := a.svc.ClaimRest(r.Context(), claims.ParticipantID, item.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, claimToResponse(written))
		return
	}

	claim, err := a.buildClaim(claims.ParticipantID, item, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	written, err := a.svc.UpsertClaim(r.Context(), claims.ParticipantID, claim)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, claimToResponse(written))
}

func (a *API) buildClaim(participantID string, item domain.Item, payload claimPayload) (domain.Claim, error) {
	switch domain.Method(payload.Method) {
	case domain.MethodUnits:
		return domain.NewUnitsClaim(participantID, item.ID, payload.Units, item.Quantity)
	case domain.MethodPercentage:
		percent := payload.Value
		if payload.Percent != "" {
			parsed, err := domain.ParsePercentInput(payload.Percent)
			if err != nil {
				return domain.Claim{}, err
			}
			percent = parsed
		}
		return domain.NewPercentageClaim(participantID, item.ID, percent)
	}
	return domain.Claim{}, errors.New(errors.CodeClaimInvalidMethod, "claim method must be units or percentage")
}
