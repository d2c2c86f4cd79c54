package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/louisbranch/splittab/internal/platform/errors"
)

// tokenTTL bounds how long a participant token stays valid. Sessions are
// single-evening affairs; a day is generous.
const tokenTTL = 24 * time.Hour

// Claims are the participant identity carried in a bearer token.
type Claims struct {
	ParticipantID string `json:"participant_id"`
	SessionID     string `json:"session_id"`
	jwt.RegisteredClaims
}

type contextKey struct{}

var claimsKey contextKey

// issueToken signs a participant token at join time.
func (a *API) issueToken(participantID, sessionID string, now time.Time) (string, error) {
	claims := &Claims{
		ParticipantID: participantID,
		SessionID:     sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.jwtSecret)
	if err != nil {
		return "", errors.Wrap(errors.CodeTokenInvalid, "sign participant token", err)
	}
	return signed, nil
}

// verifyToken parses and validates a bearer token string.
func (a *API) verifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		if strings.Contains(err.Error(), "expired") {
			return nil, errors.Wrap(errors.CodeTokenExpired, "participant token expired", err)
		}
		return nil, errors.Wrap(errors.CodeTokenInvalid, "parse participant token", err)
	}
	if !token.Valid {
		return nil, errors.New(errors.CodeTokenInvalid, "participant token is not valid")
	}
	return claims, nil
}

func (a *API) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, r, errors.New(errors.CodeTokenInvalid, "missing authorization header"))
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			writeError(w, r, errors.New(errors.CodeTokenInvalid, "authorization header is not a bearer token"))
			return
		}

		claims, err := a.verifyToken(tokenString)
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}
