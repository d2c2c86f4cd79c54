package api

import (
	"encoding/json"
	"net/http"

	"google.golang.org/grpc/codes"

	"github.com/louisbranch/splittab/internal/platform/errors"
	"github.com/louisbranch/splittab/internal/platform/errors/i18n"
)

type errorResponse struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Locale   string            `json:"locale"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeBody(r *http.Request, into any) error {
	if r.Body == nil {
		return errors.New(errors.CodeUnknown, "request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		return errors.Wrap(errors.CodeUnknown, "decode request body", err)
	}
	return nil
}

// writeError renders a platform error for the client: the machine-readable
// code, the localized user-facing message, and the templating metadata. The
// internal message stays out of the response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	metadata := errors.GetMetadata(err)
	catalog := i18n.GetCatalog(requestLocale(r))
	writeJSON(w, httpStatus(code), errorResponse{
		Code:     string(code),
		Message:  catalog.Format(string(code), metadata),
		Locale:   catalog.Locale(),
		Metadata: metadata,
	})
}

func requestLocale(r *http.Request) string {
	if r == nil {
		return errors.DefaultLocale
	}
	return r.Header.Get("Accept-Language")
}

// httpStatus derives the HTTP status from the code's gRPC mapping, keeping
// the two transports' views of each code family in one place.
func httpStatus(code errors.Code) int {
	switch code.GRPCCode() {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.FailedPrecondition:
		return http.StatusConflict
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.NotFound:
		return http.StatusNotFound
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
