package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/clipforge/clipforge/internal/common"
	"github.com/goccy/go-json"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, "malformed request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || len(req.Password) < 8 {
		respondError(w, http.StatusBadRequest, codeValidation, "username required and password must be at least 8 characters")
		return
	}

	user, err := s.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			respondError(w, http.StatusConflict, codeConflict, "username is taken")
			return
		}
		s.log.Error(r.Context(), "register failed", "error", err)
		respondError(w, http.StatusInternalServerError, codeInternal, "registration failed")
		return
	}

	respondSuccess(w, http.StatusCreated, map[string]string{"id": user.ID, "username": user.UserName})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, "malformed request body")
		return
	}

	pair, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			respondError(w, http.StatusUnauthorized, codeUnauthorized, "invalid username or password")
			return
		}
		s.log.Error(r.Context(), "login failed", "error", err)
		respondError(w, http.StatusInternalServerError, codeInternal, "login failed")
		return
	}

	respondSuccess(w, http.StatusOK, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		respondError(w, http.StatusBadRequest, codeValidation, "refresh_token is required")
		return
	}

	pair, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrRefreshTokenExpired) {
			respondError(w, http.StatusUnauthorized, codeUnauthorized, "refresh token expired")
			return
		}
		respondError(w, http.StatusUnauthorized, codeUnauthorized, "invalid refresh token")
		return
	}

	respondSuccess(w, http.StatusOK, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}
