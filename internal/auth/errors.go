package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error はAPIエラーを表します。Code はクライアントに返す固定のメッセージコードで、
// それ以上の内部情報はレスポンスに含めません。
type Error struct {
	Status  int    // HTTPステータスコード
	Code    string // クライアント向けメッセージコード
	Message string // ログ用の補足説明
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// 認証・認可まわりの定義済みエラー
var (
	ErrInvalidInput     = &Error{Status: http.StatusBadRequest, Code: "INVALID_INPUT", Message: "リクエストの形式が正しくありません"}
	ErrEmailExists      = &Error{Status: http.StatusConflict, Code: "EMAIL_ALREADY_EXISTS", Message: "同じメールアドレスが既に登録されています"}
	ErrNicknameExists   = &Error{Status: http.StatusConflict, Code: "NICKNAME_ALREADY_EXISTS", Message: "同じニックネームが既に登録されています"}
	ErrLoginFailed      = &Error{Status: http.StatusUnauthorized, Code: "LOGIN_FAILED", Message: "メールアドレスまたはパスワードが正しくありません"}
	ErrAccountSuspended = &Error{Status: http.StatusForbidden, Code: "ACCOUNT_SUSPENDED", Message: "停止中のアカウントです"}
	ErrAlreadyLogin     = &Error{Status: http.StatusConflict, Code: "ALREADY_LOGIN", Message: "このアカウントは既にログインしています"}
	ErrLoginRequired    = &Error{Status: http.StatusUnauthorized, Code: "LOGIN_REQUIRED", Message: "ログインが必要です"}
	ErrInvalidSession   = &Error{Status: http.StatusUnauthorized, Code: "INVALID_SESSION", Message: "セッションが無効です"}
	ErrPermissionDenied = &Error{Status: http.StatusForbidden, Code: "PERMISSION_DENIED", Message: "この操作を行う権限がありません"}
)

// WriteError はエラーを {message, data} エンベロープで書き出します。
// 成功レスポンスと同じ形を保つため、message にメッセージコードを載せて data は null にします。
func WriteError(c *gin.Context, err error) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Status, gin.H{
			"message": apiErr.Code,
			"data":    nil,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"message": "INTERNAL_ERROR",
		"data":    nil,
	})
}

// AbortWithError はミドルウェアから後続処理を打ち切ってエラーを書き出します。
func AbortWithError(c *gin.Context, err error) {
	WriteError(c, err)
	c.Abort()
}
