package authsvc

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/ZigmaSoftware/erp-final-backend/internal/httpx"
	"github.com/ZigmaSoftware/erp-final-backend/pkg/auth"
	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
	"github.com/ZigmaSoftware/erp-final-backend/pkg/token"
)

// errCodeInvalidCredentials is the machine-readable login failure code.
// The same code covers unknown user, wrong password, and inactive account
// so the response never reveals which one failed.
const errCodeInvalidCredentials = "INVALID_CREDENTIALS"

// userPayload is the user object embedded in login and refresh responses.
type userPayload struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Roles    []int64 `json:"roles"`
}

// tokenResponse is the success body of login and refresh.
type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
	User         userPayload `json:"user"`
}

// Handler carries the dependencies of the auth endpoints.
type Handler struct {
	users    UserReader
	audit    AuditSink
	issuer   *token.Issuer
	verifier *token.Verifier
	logger   *slog.Logger

	// lastLogin is optional; nil when the store does not track it.
	lastLogin interface {
		TouchLastLogin(ctx context.Context, userID int64) error
	}
}

// NewHandler creates the auth endpoint handler.
func NewHandler(users UserReader, audit AuditSink, issuer *token.Issuer, verifier *token.Verifier, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		users:    users,
		audit:    audit,
		issuer:   issuer,
		verifier: verifier,
		logger:   logger,
	}
	if store, ok := users.(*UserStore); ok {
		h.lastLogin = store
	}
	return h
}

// Login verifies a username/password pair and issues a token pair.
//
// POST /login/ {"username": ..., "password": ...}
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		httpx.WriteDetail(w, http.StatusBadRequest, "username and password are required")
		return
	}

	ctx := r.Context()
	user, err := h.users.GetByUsername(ctx, req.Username)
	switch {
	case err != nil && erperr.IsNotFound(err):
		h.rejectLogin(w, r, req.Username, "unknown username")
		return
	case err != nil:
		h.logger.ErrorContext(ctx, "user lookup failed", "error", err)
		httpx.WriteError(w, err)
		return
	case !user.IsActive:
		h.rejectLogin(w, r, req.Username, "account inactive")
		return
	case !CheckPassword(user.PasswordHash, req.Password):
		h.rejectLogin(w, r, req.Username, "wrong password")
		return
	}

	resp, err := h.issueTokens(user, true)
	if err != nil {
		h.logger.ErrorContext(ctx, "token issuance failed", "error", err)
		httpx.WriteError(w, err)
		return
	}

	if h.lastLogin != nil {
		if err := h.lastLogin.TouchLastLogin(ctx, user.ID); err != nil {
			h.logger.WarnContext(ctx, "failed to record last login", "user_id", user.ID, "error", err)
		}
	}
	h.writeAudit(r, EventLoginSuccess, user.Username, "")

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is returned unchanged; its lifetime is not
// extended.
//
// POST /refresh/ {"refresh_token": ...}
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if req.RefreshToken == "" {
		httpx.WriteDetail(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	ctx := r.Context()
	claims, err := h.verifier.Verify(ctx, req.RefreshToken, token.TypeRefresh)
	if err != nil {
		detail := "Invalid token"
		if erperr.HasCode(err, erperr.CodeTokenExpired) {
			detail = "Token expired"
		}
		// The token did not verify, so no claim in it can be trusted;
		// the failure is recorded without a username.
		h.writeAudit(r, EventRefreshFailed, "", detail)
		httpx.WriteDetail(w, http.StatusUnauthorized, detail)
		return
	}

	userID, err := ParseUserID(claims.Subject)
	if err != nil {
		h.writeAudit(r, EventRefreshFailed, claims.Username, "malformed subject")
		httpx.WriteDetail(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		if erperr.IsNotFound(err) {
			h.writeAudit(r, EventRefreshFailed, claims.Username, "user not found")
			httpx.WriteDetail(w, http.StatusUnauthorized, "User not found")
			return
		}
		h.logger.ErrorContext(ctx, "user lookup failed", "error", err)
		httpx.WriteError(w, err)
		return
	}

	resp, err := h.issueTokens(user, false)
	if err != nil {
		h.logger.ErrorContext(ctx, "token issuance failed", "error", err)
		httpx.WriteError(w, err)
		return
	}
	// Hand back the presented refresh token, not a new one.
	resp.RefreshToken = req.RefreshToken

	h.writeAudit(r, EventRefreshSuccess, user.Username, "")
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// Me returns the account behind the resolved principal.
//
// GET /users/me/
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httpx.WriteDetail(w, http.StatusUnauthorized, "Authorization header missing")
		return
	}

	id, err := ParseUserID(principal.ID())
	if err != nil {
		httpx.WriteDetail(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"id":        user.ID,
		"username":  user.Username,
		"email":     user.Email,
		"is_active": user.IsActive,
		"groups":    user.GroupNames(),
		"roles":     user.RoleIDs(),
	})
}

// ListUsers returns a paginated account listing without credentials.
//
// GET /users/?limit=50&offset=0
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r, 50)
	users, err := h.users.List(r.Context(), limit, offset)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	items := make([]map[string]any, 0, len(users))
	for _, u := range users {
		items = append(items, map[string]any{
			"id":        u.ID,
			"username":  u.Username,
			"email":     u.Email,
			"is_active": u.IsActive,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"count":   len(items),
		"results": items,
	})
}

// ListRoles returns all groups as role records.
//
// GET /roles/
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	groups, err := h.users.ListGroups(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if groups == nil {
		groups = []Group{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"count":   len(groups),
		"results": groups,
	})
}

// issueTokens builds the token response for a user. When withRefresh is
// false the RefreshToken field is left for the caller to fill.
func (h *Handler) issueTokens(user *User, withRefresh bool) (*tokenResponse, error) {
	subject := token.Subject{
		ID:       strconv.FormatInt(user.ID, 10),
		Username: user.Username,
		Groups:   user.GroupNames(),
	}

	now := h.issuer.Now()
	access, err := h.issuer.IssueAccessToken(subject, now)
	if err != nil {
		return nil, err
	}
	resp := &tokenResponse{
		AccessToken: access,
		ExpiresIn:   int64(h.issuer.AccessTokenLifetime().Seconds()),
		User: userPayload{
			ID:       user.ID,
			Username: user.Username,
			Roles:    user.RoleIDs(),
		},
	}
	if resp.User.Roles == nil {
		resp.User.Roles = []int64{}
	}
	if withRefresh {
		refresh, err := h.issuer.IssueRefreshToken(subject, now)
		if err != nil {
			return nil, err
		}
		resp.RefreshToken = refresh
	}
	return resp, nil
}

func (h *Handler) rejectLogin(w http.ResponseWriter, r *http.Request, username, reason string) {
	h.writeAudit(r, EventLoginFailed, username, reason)
	httpx.WriteCodedError(w, http.StatusUnauthorized, errCodeInvalidCredentials)
}

func (h *Handler) writeAudit(r *http.Request, event, username, reason string) {
	if h.audit == nil {
		return
	}
	ctx := r.Context()
	traceID, _ := auth.TraceIDFromContext(ctx)
	rec := AuditRecord{
		EventType: event,
		Username:  username,
		ClientIP:  clientIP(r),
		UserAgent: r.UserAgent(),
		Reason:    reason,
		TraceID:   traceID,
	}
	if err := h.audit.Record(ctx, rec); err != nil {
		h.logger.WarnContext(ctx, "failed to write audit record", "event", event, "error", err)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func pagination(r *http.Request, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 500 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
