package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"wishop.org/authd/internal/audit"
	"wishop.org/authd/internal/auth"
	"wishop.org/authd/internal/obs"
)

const (
	authHeader   = "Authorization"
	bearerScheme = "Bearer "
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// withAuth runs the authentication pipeline ahead of routing. Login
// submissions are answered here directly: on success the fresh token
// goes into both the response body and the Authorization header. All
// rejections surface as the same 401; the reason stays in logs and
// audit only.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := auth.Request{
			Method:      r.Method,
			Path:        r.URL.Path,
			BearerToken: extractBearerToken(r.Header.Get(authHeader)),
		}
		if r.Method == http.MethodPost && r.URL.Path == a.loginPath {
			var body loginRequest
			if err := decodeJSON(r, &body); err != nil {
				respondError(w, r, http.StatusBadRequest, err.Error())
				return
			}
			req.Credential = &auth.Credential{Username: body.Username, Password: body.Password}
		}

		decision := a.pipeline.Authenticate(r.Context(), req)
		switch decision.Outcome {
		case auth.OutcomeAnonymous:
			next.ServeHTTP(w, r)

		case auth.OutcomeAuthenticated:
			ctx := auth.ContextWithIdentity(r.Context(), decision.Identity)
			if decision.Token != "" {
				// Successful login: the response is the token itself.
				_ = audit.LogEvent(ctx, "auth.login", map[string]any{
					"username":   decision.Identity.Username,
					"expires_at": decision.TokenExpiresAt.Format(time.RFC3339),
				})
				w.Header().Set(authHeader, bearerScheme+decision.Token)
				writeJSON(w, http.StatusOK, loginResponse{
					Token:     decision.Token,
					ExpiresAt: decision.TokenExpiresAt,
				})
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))

		default:
			reason := rejectionTag(decision.Reason)
			obs.CountAuthRejection(reason)
			_ = audit.LogEvent(r.Context(), "auth.rejected", map[string]any{
				"reason": reason,
				"path":   r.URL.Path,
			})
			respondError(w, r, http.StatusUnauthorized, "unauthorized")
		}
	})
}

// requireAuthority is the guard clause every administrative handler
// calls first. Operations without an identity get 401; an identity
// lacking the authority gets 403.
func (a *API) requireAuthority(w http.ResponseWriter, r *http.Request, authority string) bool {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "unauthorized")
		return false
	}
	if err := auth.Authorize(id, auth.RequireAuthority(authority)); err != nil {
		obs.CountAuthRejection("forbidden")
		_ = audit.LogEvent(r.Context(), "auth.denied", map[string]any{
			"authority": authority,
			"path":      r.URL.Path,
		})
		respondError(w, r, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}

// extractBearerToken returns the token portion of a Bearer header, or
// empty when the header is absent or uses another scheme. A non-Bearer
// header is treated as no credentials at all, which the pipeline
// rejects.
func extractBearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearerScheme)) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerScheme):])
}

func rejectionTag(reason error) string {
	switch {
	case errors.Is(reason, auth.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(reason, auth.ErrBadCredentials):
		return "bad_credentials"
	case errors.Is(reason, auth.ErrMissingCredentials):
		return "missing_credentials"
	case errors.Is(reason, auth.ErrTokenMalformed):
		return "token_malformed"
	case errors.Is(reason, auth.ErrTokenSignature):
		return "token_signature"
	case errors.Is(reason, auth.ErrTokenExpired):
		return "token_expired"
	default:
		return "other"
	}
}
