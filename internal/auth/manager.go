// Package auth はセッション認証と所有権チェックを提供します。
package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/community-board/internal/config"
	"github.com/yourusername/community-board/internal/store"
)

// SessionCookieName はセッショントークンを運ぶクッキーの名前です。
const SessionCookieName = "session_id"

const (
	contextUserKey  = "auth.user"
	contextTokenKey = "auth.token"
)

// Manager は会員登録・ログイン・セッション解決をまとめた構造体です。
type Manager struct {
	cfg   *config.Config
	users *store.UserStore
}

// NewManager は認証マネージャーを作成します。
func NewManager(cfg *config.Config, users *store.UserStore) *Manager {
	return &Manager{
		cfg:   cfg,
		users: users,
	}
}

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Nickname string `json:"nickname" binding:"required,min=2,max=30"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Signup は POST /api/v1/auth/signup のハンドラーです。
func (m *Manager) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, ErrInvalidInput)
		return
	}

	// 重複チェックと保存は単一クリティカルセクションで行う（メール優先で検査）
	userID, err := m.users.Register(store.User{
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
		Status:   store.StatusActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrEmailTaken):
			WriteError(c, ErrEmailExists)
		case errors.Is(err, store.ErrNicknameTaken):
			WriteError(c, ErrNicknameExists)
		default:
			WriteError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "REGISTER_SUCCESS",
		"data":    gin.H{"userId": userID},
	})
}

// Login は POST /api/v1/auth/login のハンドラーです。
// エラーの判定順序は固定で、ユーザー不在とパスワード不一致は区別できない
// 応答を返します（登録済みメールアドレスの探索を防ぐため）。
func (m *Manager) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, ErrInvalidInput)
		return
	}

	user, ok := m.users.FindByEmail(req.Email)
	if !ok || user.Password != req.Password {
		WriteError(c, ErrLoginFailed)
		return
	}

	if user.Status == store.StatusSuspended {
		WriteError(c, ErrAccountSuspended)
		return
	}

	token, err := m.users.StartSession(req.Email)
	if err != nil {
		if errors.Is(err, store.ErrSessionActive) {
			WriteError(c, ErrAlreadyLogin)
			return
		}
		WriteError(c, err)
		return
	}

	// MaxAge は付けない。セッションはサーバー側でも失効しない（ログアウトなし）
	secure := m.cfg.GinMode == gin.ReleaseMode
	c.SetCookie(SessionCookieName, token, 0, "/", "", secure, true)

	c.JSON(http.StatusOK, gin.H{
		"message": "LOGIN_SUCCESS",
		"data": gin.H{
			"userId":       user.UserID,
			"email":        user.Email,
			"nickname":     user.Nickname,
			"profileImage": m.profileImageOrDefault(user.ProfileImage),
		},
	})
}

// Me は GET /api/v1/auth/me のハンドラーです。RequireLogin の後段で動きます。
// authToken には提示されたセッショントークンをそのまま返します。
func (m *Manager) Me(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		WriteError(c, ErrLoginRequired)
		return
	}
	token, _ := SessionToken(c)

	c.JSON(http.StatusOK, gin.H{
		"message": "AUTH_SUCCESS",
		"data": gin.H{
			"userId":       user.UserID,
			"email":        user.Email,
			"nickname":     user.Nickname,
			"profileImage": user.ProfileImage,
			"authToken":    token,
		},
	})
}

// RequireLogin はセッショントークンを検証するミドルウェアを返します。
func (m *Manager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			AbortWithError(c, ErrLoginRequired)
			return
		}

		user, ok := m.users.GetUserBySession(token)
		if !ok {
			AbortWithError(c, ErrInvalidSession)
			return
		}

		// status はここでは再検査しない。停止処分より前に発行された
		// セッションは処分後も有効のまま（仕様どおりの挙動）
		c.Set(contextUserKey, user)
		c.Set(contextTokenKey, token)
		c.Next()
	}
}

// CurrentUser は RequireLogin が格納した認証済みユーザーを取り出します。
func CurrentUser(c *gin.Context) (*store.User, bool) {
	v, ok := c.Get(contextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*store.User)
	return user, ok
}

// SessionToken は RequireLogin が格納したセッショントークンを取り出します。
func SessionToken(c *gin.Context) (string, bool) {
	v, ok := c.Get(contextTokenKey)
	if !ok {
		return "", false
	}
	token, ok := v.(string)
	return token, ok
}

func (m *Manager) profileImageOrDefault(image string) string {
	if image == "" {
		return m.cfg.DefaultProfileImage
	}
	return image
}
