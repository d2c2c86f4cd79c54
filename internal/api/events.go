package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/louisbranch/splittab/internal/feed"
	"github.com/louisbranch/splittab/internal/platform/errors"
)

type eventPayload struct {
	Entity      string `json:"entity"`
	Type        string `json:"type"`
	Item        any    `json:"item,omitempty"`
	Claim       any    `json:"claim,omitempty"`
	Participant any    `json:"participant,omitempty"`
}

// handleEvents streams the session's change feed as server-sent events until
// the client goes away or the hub shuts down.
func (a *API) handleEvents(w http.ResponseWriter, r *http.Request) {
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

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, errors.New(errors.CodeFeedSubscriptionFailed, "streaming is not supported"))
		return
	}

	sub, err := a.hub.Subscribe(sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer a.hub.Unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.C:
			if !ok {
				return
			}
			if err := writeSSE(w, event); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, event feed.ChangeEvent) error {
	payload := eventPayload{
		Entity: string(event.Entity),
		Type:   string(event.Type),
	}
	switch event.Entity {
	case feed.EntityItem:
		payload.Item = event.Item
	case feed.EntityClaim:
		payload.Claim = event.Claim
	case feed.EntityParticipant:
		payload.Participant = event.Participant
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n\n"))
	return err
}
