package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"antigravity/focus/internal/services"
	"antigravity/focus/internal/utils"
)

// AuthHandler manages authentication endpoints.
type AuthHandler struct {
	Accounts AccountService
}

func NewAuthHandler(accounts AccountService) *AuthHandler {
	return &AuthHandler{Accounts: accounts}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	IsGuest  bool   `json:"isGuest"`
}

func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "无效的请求")
		return
	}
	if !utils.IsUsernameValid(req.Username) {
		utils.JSONError(w, http.StatusBadRequest, "用户名长度必须在3-50之间")
		return
	}
	if !utils.IsPasswordValid(req.Password) {
		utils.JSONError(w, http.StatusBadRequest, "密码长度必须在6-50之间")
		return
	}
	if !utils.IsNicknameValid(req.Nickname) {
		utils.JSONError(w, http.StatusBadRequest, "昵称长度不能超过100")
		return
	}

	result, err := h.Accounts.Register(req.Username, req.Password, req.Nickname)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			utils.JSONError(w, http.StatusConflict, "用户名已存在")
			return
		}
		utils.JSONError(w, http.StatusInternalServerError, "注册失败")
		return
	}
	utils.JSON(w, http.StatusOK, newAuthResponse(result))
}

func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "无效的请求")
		return
	}

	result, err := h.Accounts.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.JSONError(w, http.StatusUnauthorized, "用户名或密码错误")
			return
		}
		utils.JSONError(w, http.StatusInternalServerError, "登录失败")
		return
	}
	utils.JSON(w, http.StatusOK, newAuthResponse(result))
}

func (h *AuthHandler) GuestLoginHandler(w http.ResponseWriter, r *http.Request) {
	result, err := h.Accounts.LoginAsGuest()
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "游客登录失败")
		return
	}
	utils.JSON(w, http.StatusOK, newAuthResponse(result))
}

func (h *AuthHandler) CheckUsernameHandler(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		utils.JSONError(w, http.StatusBadRequest, "用户名不能为空")
		return
	}
	available, err := h.Accounts.CheckUsername(username)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "查询失败")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]bool{"available": available})
}

func newAuthResponse(result *services.AuthResult) authResponse {
	return authResponse{
		Token:    result.Token,
		Username: result.Identity.Username,
		Nickname: result.Nickname,
		IsGuest:  result.Identity.IsGuest,
	}
}
