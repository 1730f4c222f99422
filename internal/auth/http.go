// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/adminauth/internal/platform/constants"
	"github.com/taibuivan/adminauth/internal/platform/middleware"
	requestutil "github.com/taibuivan/adminauth/internal/platform/request"
	"github.com/taibuivan/adminauth/internal/platform/respond"
	"github.com/taibuivan/adminauth/internal/platform/sec"
	"github.com/taibuivan/adminauth/internal/platform/validate"
)

// TokenValidator checks session tokens presented by clients.
type TokenValidator interface {
	Validate(tokenString string) bool
	ExtractClaims(tokenString string) (*sec.Claims, error)
}

// Handler implements the authentication HTTP endpoints.
type Handler struct {
	authService *Service
	tokens      TokenValidator
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, tokens TokenValidator) *Handler {
	return &Handler{authService: service, tokens: tokens}
}

// Routes returns a [chi.Router] with the authentication routes.
//
// # Endpoints
//   - POST /login       : Checks the password and emails a code.
//   - POST /verify-code : Redeems the code for a session token.
//   - POST /refresh     : Swaps a valid token for a fresh one.
//   - POST /logout      : Acknowledges the end of the session (auth).
//   - GET  /me          : Returns the authenticated profile (auth).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/login", handler.login)
	router.Post("/verify-code", handler.verifyCode)
	router.Post("/refresh", handler.refresh)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.Authenticate(handler.tokens), middleware.RequireAuth)
		protected.Post("/logout", handler.logout)
		protected.Get("/me", handler.me)
	})

	return router
}

// # Payloads

type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=256"`
}

type verifyCodeRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
	Code  string `json:"code" validate:"required,len=6,alphanum"`
}

type loginResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type sessionResponse struct {
	Status    string  `json:"status"`
	Token     string  `json:"token"`
	ExpiresAt int64   `json:"expires_at"`
	User      Profile `json:"user"`
	Message   string  `json:"message"`
}

type profileResponse struct {
	Status string  `json:"status"`
	User   Profile `json:"user"`
}

func newSessionResponse(session *Session, message string) sessionResponse {
	return sessionResponse{
		Status:    constants.StatusOK,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Unix(),
		User:      session.User,
		Message:   message,
	}
}

// # Endpoints

// login handles POST /api/v1/auth/login.
//
// # Returns
//   - 200 with status "verification_required" once the code is sent.
//   - 400 for a malformed payload.
//   - 401 for bad credentials or while locked.
//   - 503 when the code could not be delivered.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := validate.Struct(input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pending, err := handler.authService.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, loginResponse{
		Status:  constants.StatusVerificationRequired,
		Message: pending.Message,
	})
}

// verifyCode handles POST /api/v1/auth/verify-code.
func (handler *Handler) verifyCode(writer http.ResponseWriter, request *http.Request) {
	var input verifyCodeRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := validate.Struct(input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.VerifyCode(request.Context(), input.Email, input.Code)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, newSessionResponse(session, MessageLoginSuccess))
}

// refresh handles POST /api/v1/auth/refresh.
//
// The bearer token is checked here rather than by [middleware.Authenticate]
// so every failure maps to TOKEN_INVALID.
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	tokenString, ok := requestutil.BearerToken(request)
	if !ok || !handler.tokens.Validate(tokenString) {
		respond.Error(writer, request, ErrTokenInvalid)
		return
	}

	claims, err := handler.tokens.ExtractClaims(tokenString)
	if err != nil {
		respond.Error(writer, request, ErrTokenInvalid.WithCause(err))
		return
	}

	session, err := handler.authService.Refresh(request.Context(), claims.Subject)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, newSessionResponse(session, MessageTokenRenewed))
}

// logout handles POST /api/v1/auth/logout. Tokens are stateless, so the
// client discarding its copy is what ends the session.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, loginResponse{Status: constants.StatusOK, Message: MessageSessionClosed})
}

// me handles GET /api/v1/auth/me.
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.authService.Profile(claims.Subject)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profileResponse{Status: constants.StatusOK, User: profile})
}
