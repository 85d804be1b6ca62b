package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"assistive.app/buttons/internal/auth"
	"assistive.app/buttons/internal/core"
	"assistive.app/buttons/internal/notify"
	"assistive.app/buttons/internal/store"
	"go.uber.org/zap"
)

type SignupRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	Primary          bool   `json:"primary_account"`
	FullName         string `json:"full_name"`
	Phone            string `json:"phone"`
	SecurityQuestion string `json:"security_question"`
	SecurityAnswer   string `json:"security_answer"`
}

func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res, err := h.accounts.Signup(core.SignupInput{
		Email:            req.Email,
		Password:         req.Password,
		Primary:          req.Primary,
		FullName:         req.FullName,
		Phone:            req.Phone,
		SecurityQuestion: req.SecurityQuestion,
		SecurityAnswer:   req.SecurityAnswer,
	})
	if err != nil {
		h.logger.Error("Failed to create account", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}
	if !res.Success {
		status := http.StatusConflict
		if req.Email == "" || req.Password == "" {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, res)
		return
	}

	accountType := store.AccountCaretaker
	if req.Primary {
		accountType = store.AccountPrimary
	}
	h.background(func(ctx context.Context) {
		notify.NotifyAccountSignup(ctx, h.notifier, store.UserKey(req.Email), accountType)
	})
	writeJSON(w, http.StatusCreated, res)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	core.Result
	UserID string `json:"user_id,omitempty"`
	Token  string `json:"token,omitempty"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res := h.accounts.Login(req.Email, req.Password)
	if !res.Success {
		writeJSON(w, http.StatusUnauthorized, LoginResponse{Result: res.Result})
		return
	}

	token, err := auth.GenerateJWT(res.UserID)
	if err != nil {
		h.logger.Error("Error generating JWT", zap.String("user_id", res.UserID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Result: res.Result, UserID: res.UserID, Token: token})
}

func (h *APIHandler) SecurityQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.SecurityQuestions)
}

func (h *APIHandler) PasswordQuestionHandler(w http.ResponseWriter, r *http.Request) {
	q, ok := h.accounts.SecurityQuestion(r.URL.Query().Get("email"))
	if !ok {
		writeJSON(w, http.StatusNotFound, core.Result{Message: "No account found for this email"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"security_question": q})
}

type VerifyAnswerRequest struct {
	Email  string `json:"email"`
	Answer string `json:"answer"`
}

func (h *APIHandler) VerifyAnswerHandler(w http.ResponseWriter, r *http.Request) {
	var req VerifyAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if !h.accounts.VerifySecurityAnswer(req.Email, req.Answer) {
		writeJSON(w, http.StatusOK, core.Result{Message: "Incorrect security answer"})
		return
	}
	writeJSON(w, http.StatusOK, core.Result{Success: true, Message: "Security answer verified"})
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Answer      string `json:"answer"`
	NewPassword string `json:"new_password"`
}

// ResetPasswordHandler requires the security answer again; the verify
// endpoint holds no state between calls.
func (h *APIHandler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if _, ok := h.accounts.Profile(req.Email); !ok {
		writeJSON(w, http.StatusNotFound, core.Result{Message: "No account found"})
		return
	}
	if !h.accounts.VerifySecurityAnswer(req.Email, req.Answer) {
		writeJSON(w, http.StatusForbidden, core.Result{Message: "Incorrect security answer"})
		return
	}

	res, err := h.accounts.ResetPassword(req.Email, req.NewPassword)
	if err != nil {
		h.logger.Error("Failed to reset password", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}
	if !res.Success {
		writeJSON(w, http.StatusBadRequest, res)
		return
	}

	email := store.UserKey(req.Email)
	h.background(func(ctx context.Context) {
		notify.NotifySecurityReset(ctx, h.notifier, email)
	})
	writeJSON(w, http.StatusOK, res)
}

func (h *APIHandler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := h.accounts.Profile(userIDFrom(r.Context()))
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

func (h *APIHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	userID := userIDFrom(r.Context())
	if err := h.accounts.UpdateProfile(userID, req.FullName, req.Phone); err != nil {
		h.writeAccountError(w, err)
		return
	}
	p, _ := h.accounts.Profile(userID)
	writeJSON(w, http.StatusOK, p)
}

type ThemeRequest struct {
	Theme string `json:"theme"`
}

func (h *APIHandler) GetThemeHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := h.accounts.Profile(userIDFrom(r.Context()))
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, ThemeRequest{Theme: p.Theme})
}

func (h *APIHandler) SetThemeHandler(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.accounts.SetTheme(userIDFrom(r.Context()), req.Theme); err != nil {
		h.writeAccountError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, core.Result{Success: true, Message: "Theme updated"})
}

func (h *APIHandler) GetMedicinesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.accounts.Medicines(userIDFrom(r.Context())))
}

func (h *APIHandler) SetMedicinesHandler(w http.ResponseWriter, r *http.Request) {
	var medicines []store.Medicine
	if err := json.NewDecoder(r.Body).Decode(&medicines); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.accounts.SetMedicines(userIDFrom(r.Context()), medicines); err != nil {
		h.writeAccountError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, core.Result{Success: true, Message: "Medicines updated"})
}

type AddCaretakerRequest struct {
	CaretakerEmail string `json:"caretaker_email"`
}

func (h *APIHandler) AddCaretakerHandler(w http.ResponseWriter, r *http.Request) {
	var req AddCaretakerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.accounts.AddCaretaker(userIDFrom(r.Context()), req.CaretakerEmail); err != nil {
		h.writeAccountError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, core.Result{Success: true, Message: "Caretaker added"})
}

func (h *APIHandler) AccessibleAccountsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.accounts.AccessibleAccounts(userIDFrom(r.Context())))
}

func (h *APIHandler) writeAccountError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrAccountNotFound):
		writeJSON(w, http.StatusNotFound, core.Result{Message: "User not found"})
	case errors.Is(err, core.ErrInvalidTheme), errors.Is(err, core.ErrSelfCaretaker):
		writeJSON(w, http.StatusBadRequest, core.Result{Message: err.Error()})
	default:
		h.logger.Error("Account update failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to update account")
	}
}

// background runs best-effort side work detached from the request.
func (h *APIHandler) background(fn func(ctx context.Context)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		fn(ctx)
	}()
}
