package api

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/louisbranch/splittab/internal/feed"
	"github.com/louisbranch/splittab/internal/split/service"
	"github.com/louisbranch/splittab/internal/storage/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "splittab.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	hub := feed.NewHub()
	t.Cleanup(hub.Close)

	a := New(service.New(store, hub), hub, []byte("test-secret"))
	server := httptest.NewServer(a.Handler())
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url, token string, body any, into any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	if into != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}

type joinedClient struct {
	token         string
	participantID string
	sessionID     string
}

func createAndJoin(t *testing.T, server *httptest.Server, name string) (string, joinedClient) {
	t.Helper()

	var session sessionResponse
	resp := doJSON(t, http.MethodPost, server.URL+"/api/sessions", "", map[string]any{"tax_percent": 0.13}, &session)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session: status %d", resp.StatusCode)
	}
	return session.Code, join(t, server, session.Code, name)
}

func join(t *testing.T, server *httptest.Server, code, name string) joinedClient {
	t.Helper()

	var joined joinResponse
	resp := doJSON(t, http.MethodPost, server.URL+"/api/sessions/"+code+"/join", "", map[string]string{"name": name}, &joined)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("join: status %d", resp.StatusCode)
	}
	return joinedClient{token: joined.Token, participantID: joined.ParticipantID, sessionID: joined.SessionID}
}

func addItem(t *testing.T, server *httptest.Server, client joinedClient, name string, price float64, quantity int) itemResponse {
	t.Helper()

	var item itemResponse
	resp := doJSON(t, http.MethodPost, server.URL+"/api/sessions/"+client.sessionID+"/items", client.token, itemPayload{
		Name:      name,
		UnitPrice: price,
		Quantity:  quantity,
	}, &item)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add item: status %d", resp.StatusCode)
	}
	return item
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	code, ana := createAndJoin(t, server, "Ana")
	bea := join(t, server, code, "Bea")

	item := addItem(t, server, ana, "Wings", 10, 2)

	var items []itemResponse
	resp := doJSON(t, http.MethodGet, server.URL+"/api/sessions/"+ana.sessionID+"/items", bea.token, nil, &items)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list items: status %d", resp.StatusCode)
	}
	if len(items) != 1 || items[0].ID != item.ID {
		t.Fatalf("items = %+v", items)
	}

	// Ana claims one of two units; Bea claims a third by fraction input.
	var claim claimResponse
	resp = doJSON(t, http.MethodPut, server.URL+"/api/items/"+item.ID+"/claim", ana.token, claimPayload{Method: "units", Units: 1}, &claim)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("units claim: status %d", resp.StatusCode)
	}
	if math.Abs(claim.Proportion-0.5) > 1e-9 {
		t.Errorf("Proportion = %v, want 0.5", claim.Proportion)
	}

	resp = doJSON(t, http.MethodPut, server.URL+"/api/items/"+item.ID+"/claim", bea.token, claimPayload{Method: "percentage", Percent: "1/3"}, &claim)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("fraction claim: status %d", resp.StatusCode)
	}
	if math.Abs(claim.Proportion-1.0/3) > 1e-9 {
		t.Errorf("Proportion = %v, want 1/3", claim.Proportion)
	}

	// A claim over the remaining sixth is rejected with a conflict.
	resp = doJSON(t, http.MethodPut, server.URL+"/api/items/"+item.ID+"/claim", bea.token, claimPayload{Method: "percentage", Value: 60}, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("over capacity: status %d, want 409", resp.StatusCode)
	}

	// Deleting a claimed item conflicts too.
	resp = doJSON(t, http.MethodDelete, server.URL+"/api/items/"+item.ID, ana.token, nil, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("delete claimed item: status %d, want 409", resp.StatusCode)
	}
}

func TestSummaryFlow(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	_, ana := createAndJoin(t, server, "Ana")

	wings := addItem(t, server, ana, "Wings", 10, 2)
	soda := addItem(t, server, ana, "Soda", 5, 1)

	for _, call := range []struct {
		itemID  string
		payload claimPayload
	}{
		{wings.ID, claimPayload{Method: "percentage", Value: 50}},
		{soda.ID, claimPayload{Method: "percentage", Value: 100}},
	} {
		resp := doJSON(t, http.MethodPut, server.URL+"/api/items/"+call.itemID+"/claim", ana.token, call.payload, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("claim: status %d", resp.StatusCode)
		}
	}

	resp := doJSON(t, http.MethodPost, server.URL+"/api/submit", ana.token, map[string]any{"tip_percent": 20}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit: status %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodPost, server.URL+"/api/submit", ana.token, map[string]any{"tip_percent": 25}, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second submit: status %d, want 409", resp.StatusCode)
	}

	var summary summaryResponse
	resp = doJSON(t, http.MethodGet, server.URL+"/api/summary", ana.token, nil, &summary)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary: status %d", resp.StatusCode)
	}
	if math.Abs(summary.Subtotal-15) > 1e-9 || math.Abs(summary.Total-19.95) > 1e-9 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.CoveragePercent != 60 {
		t.Errorf("CoveragePercent = %d, want 60", summary.CoveragePercent)
	}

	var group []groupSummaryEntry
	resp = doJSON(t, http.MethodGet, server.URL+"/api/sessions/"+ana.sessionID+"/summary", ana.token, nil, &group)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("group summary: status %d", resp.StatusCode)
	}
	if len(group) != 1 {
		t.Fatalf("group = %+v", group)
	}
	if !group[0].Submitted || group[0].SharePercent != 60 {
		t.Errorf("group entry = %+v", group[0])
	}
}

func TestEvenSplitEndpoint(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	code, ana := createAndJoin(t, server, "Ana")
	join(t, server, code, "Bea")
	addItem(t, server, ana, "Pizza", 20, 1)

	var claims []claimResponse
	resp := doJSON(t, http.MethodPost, server.URL+"/api/sessions/"+ana.sessionID+"/even-split", ana.token, map[string]any{"n": 2}, &claims)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("even split: status %d", resp.StatusCode)
	}
	if len(claims) != 1 || math.Abs(claims[0].Proportion-0.5) > 1e-9 {
		t.Fatalf("claims = %+v", claims)
	}

	resp = doJSON(t, http.MethodPost, server.URL+"/api/sessions/"+ana.sessionID+"/even-split", ana.token, map[string]any{"n": 1}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("n below count: status %d, want 400", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	_, ana := createAndJoin(t, server, "Ana")

	resp := doJSON(t, http.MethodGet, server.URL+"/api/sessions/"+ana.sessionID+"/items", "", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token: status %d, want 401", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, server.URL+"/api/sessions/"+ana.sessionID+"/items", "garbage", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad token: status %d, want 401", resp.StatusCode)
	}

	// A token from one session cannot read another.
	_, other := createAndJoin(t, server, "Eve")
	resp = doJSON(t, http.MethodGet, server.URL+"/api/sessions/"+ana.sessionID+"/items", other.token, nil, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("foreign session: status %d, want 403", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, server.URL+"/api/sessions/UNKNOWN/join", "", map[string]string{"name": "Zoe"}, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown code: status %d, want 404", resp.StatusCode)
	}
}

func TestValidationErrorsCarryCodes(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	_, ana := createAndJoin(t, server, "Ana")

	resp := doJSON(t, http.MethodPost, server.URL+"/api/sessions/"+ana.sessionID+"/items", ana.token, itemPayload{
		Name:      "",
		UnitPrice: 5,
		Quantity:  1,
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty name: status %d, want 400", resp.StatusCode)
	}
	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Code != "ITEM_NAME_EMPTY" {
		t.Errorf("Code = %q, want ITEM_NAME_EMPTY", body.Code)
	}
	if body.Message != "Item name cannot be empty" {
		t.Errorf("Message = %q, want catalog text", body.Message)
	}
	if body.Locale != "en-US" {
		t.Errorf("Locale = %q, want en-US", body.Locale)
	}
}

func TestErrorMessagesTemplateMetadata(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	_, ana := createAndJoin(t, server, "Ana")
	item := addItem(t, server, ana, "Wings", 10, 2)

	resp := doJSON(t, http.MethodPut, server.URL+"/api/items/"+item.ID+"/claim", ana.token, claimPayload{Method: "units", Units: 5}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("units out of range: status %d, want 400", resp.StatusCode)
	}
	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Code != "CLAIM_INVALID_UNITS" {
		t.Errorf("Code = %q", body.Code)
	}
	if body.Message != "Selected units must be between 0 and 2" {
		t.Errorf("Message = %q, want templated catalog text", body.Message)
	}
	if body.Metadata["Max"] != "2" {
		t.Errorf("Metadata = %v, want Max=2", body.Metadata)
	}
}

func TestEventsStream(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	_, ana := createAndJoin(t, server, "Ana")

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/sessions/"+ana.sessionID+"/events", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+ana.token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("events: status %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("Content-Type = %q", got)
	}

	addItem(t, server, ana, "Nachos", 8, 1)

	buf := make([]byte, 4096)
	n, err := resp.Body.Read(buf)
	if err != nil {
		t.Fatalf("read event: %v", err)
	}
	line := string(buf[:n])
	if !bytes.HasPrefix(buf[:n], []byte("data: ")) {
		t.Fatalf("event frame = %q", line)
	}
	var payload eventPayload
	if err := json.Unmarshal(bytes.TrimSpace(bytes.TrimPrefix(buf[:n], []byte("data: "))), &payload); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if payload.Entity != "item" || payload.Type != "insert" {
		t.Errorf("event = %+v", payload)
	}
}
