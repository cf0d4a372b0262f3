package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/worktodo-api/internal/api/shared"
	"github.com/phrazzld/worktodo-api/internal/domain"
	"github.com/phrazzld/worktodo-api/internal/platform/logger"
	"github.com/phrazzld/worktodo-api/internal/redact"
	"github.com/phrazzld/worktodo-api/internal/service/auth"
	"github.com/phrazzld/worktodo-api/internal/store"
)

// invalidCredentialsMessage is the single message for every login failure.
// Wrong password and unknown username must be indistinguishable to the
// client; anything more specific is a username oracle.
const invalidCredentialsMessage = "Invalid username or password"

// AuthHandler handles authentication-related API requests. Tokens travel
// exclusively in cookies; response bodies never carry them.
type AuthHandler struct {
	userStore        store.UserStore
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	cookies          *auth.CookieManager
	logger           *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userStore store.UserStore,
	jwtService auth.JWTService,
	passwordVerifier auth.PasswordVerifier,
	cookies *auth.CookieManager,
	log *slog.Logger,
) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		userStore:        userStore,
		jwtService:       jwtService,
		passwordVerifier: passwordVerifier,
		cookies:          cookies,
		logger:           log.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /api/auth/register requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, SanitizeValidationError(err))
		return
	}

	user, err := domain.NewUser(req.Username, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.userStore.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			shared.RespondWithError(w, r, http.StatusUnprocessableEntity, "Username already taken")
			return
		}
		log.Error("failed to create user", "error", redact.Error(err))
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewUserResponse(user))
}

// Login handles POST /api/auth/login requests. On success both token
// cookies are set. Unknown usernames and wrong passwords fail identically.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, invalidCredentialsMessage)
		return
	}

	user, err := h.userStore.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, invalidCredentialsMessage,
				err, shared.WithElevatedLogLevel())
			return
		}
		log.Error("failed to get user by username", "error", redact.Error(err))
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, req.Password); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, invalidCredentialsMessage,
			err, shared.WithElevatedLogLevel())
		return
	}

	if !h.issueTokenCookies(w, r, user, log) {
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user))
}

// Logout handles POST /api/auth/logout requests, expiring both token
// cookies. Already-issued tokens stay valid until expiry; there is no
// server-side revocation.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Logged out"})
}

// Refresh handles POST /api/auth/refresh requests: a valid refresh cookie
// yields a fresh token pair in new cookies.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	cookie, err := r.Cookie(auth.RefreshTokenCookie)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), cookie.Value)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.userStore.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// The account is gone; a token pair must not outlive it.
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		log.Error("failed to get user for refresh", "error", redact.Error(err))
		HandleAPIError(w, r, err, "Failed to refresh tokens")
		return
	}

	if !h.issueTokenCookies(w, r, user, log) {
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Tokens refreshed"})
}

// Me handles GET /api/auth/users/me requests for the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.userStore.GetByID(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user))
}

// issueTokenCookies generates a token pair for the user and sets both
// cookies, writing a 500 response on failure.
func (h *AuthHandler) issueTokenCookies(
	w http.ResponseWriter,
	r *http.Request,
	user *domain.User,
	log *slog.Logger,
) bool {
	accessToken, err := h.jwtService.GenerateToken(r.Context(), user.ID, user.Username)
	if err != nil {
		log.Error("failed to generate access token", "error", redact.Error(err))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate tokens")
		return false
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(r.Context(), user.ID, user.Username)
	if err != nil {
		log.Error("failed to generate refresh token", "error", redact.Error(err))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate tokens")
		return false
	}

	h.cookies.Set(w, accessToken, refreshToken)
	return true
}
