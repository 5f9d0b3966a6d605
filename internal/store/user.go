// Package store はドメインレコードをプロセス内メモリに保持するストア群を提供します。
// 各ストアは単一のミューテックスで直列化されており、再起動でデータは消えます。
package store

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// UserStatus はアカウントの状態を表します。
type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusSuspended UserStatus = "suspended"
)

var (
	// ErrEmailTaken は同じメールアドレスのユーザーが既に存在する場合に返されます。
	ErrEmailTaken = errors.New("email already registered")
	// ErrNicknameTaken は同じニックネームのユーザーが既に存在する場合に返されます。
	ErrNicknameTaken = errors.New("nickname already registered")
	// ErrSessionActive は対象メールアドレスのセッションが既に生きている場合に返されます。
	ErrSessionActive = errors.New("session already active for this email")
)

// User は会員レコードを表します。
type User struct {
	UserID       int64      `json:"userId"`
	Email        string     `json:"email"`
	Password     string     `json:"-"` // 不透明文字列。比較にのみ使用し、レスポンスには含めない
	Nickname     string     `json:"nickname"`
	ProfileImage string     `json:"profileImage,omitempty"` // 空なら未設定
	Status       UserStatus `json:"status"`
}

// UserStore は会員レコードとセッショントークンを保持します。
type UserStore struct {
	mu       sync.Mutex
	users    []User
	sessions map[string]string // セッショントークン → メールアドレス
	nextID   int64
}

// NewUserStore は空の UserStore を作成します。
func NewUserStore() *UserStore {
	return &UserStore{
		sessions: make(map[string]string),
	}
}

// FindByEmail はメールアドレスでユーザーを検索します（重複チェック用）。
func (s *UserStore) FindByEmail(email string) (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findByEmailLocked(email)
}

// FindByNickname はニックネームでユーザーを検索します（重複チェック用）。
func (s *UserStore) FindByNickname(nickname string) (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].Nickname == nickname {
			u := s.users[i]
			return &u, true
		}
	}
	return nil, false
}

// SaveUser は新しいユーザーを保存し、採番したIDを返します。
// IDはストア内カウンタによる連番で、再計算による採番衝突は起きません。
func (s *UserStore) SaveUser(u User) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(u)
}

// Register は重複チェックと保存を単一のクリティカルセクションで行います。
// メールアドレスの重複を先に検査し、次にニックネームを検査します。
func (s *UserStore) Register(u User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.findByEmailLocked(u.Email); ok {
		return 0, ErrEmailTaken
	}
	for i := range s.users {
		if s.users[i].Nickname == u.Nickname {
			return 0, ErrNicknameTaken
		}
	}
	return s.saveLocked(u), nil
}

// CreateSession はセッショントークンを発行し、メールアドレスに紐付けます。
// 既存セッションの有無は検査しません（呼び出し側の責務）。
func (s *UserStore) CreateSession(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createSessionLocked(email)
}

// StartSession はログイン済みチェックとセッション発行を単一のクリティカル
// セクションで行います。同じメールアドレスのセッションが生きている場合は
// ErrSessionActive を返します。
func (s *UserStore) StartSession(email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, owner := range s.sessions {
		if owner == email {
			return "", ErrSessionActive
		}
	}
	return s.createSessionLocked(email), nil
}

// GetUserBySession はセッショントークンからユーザーを解決します。
// トークンが未知の場合、または紐付くユーザーが消えている場合は false を返します。
func (s *UserStore) GetUserBySession(token string) (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email, ok := s.sessions[token]
	if !ok {
		return nil, false
	}
	return s.findByEmailLocked(email)
}

// IsAlreadyLoggedIn は対象メールアドレスのセッションが生きているかを返します。
func (s *UserStore) IsAlreadyLoggedIn(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, owner := range s.sessions {
		if owner == email {
			return true
		}
	}
	return false
}

// SetStatus はアカウント状態を書き換えます。対象がいない場合は false を返します。
// 停止処分にしても発行済みセッションは無効化されません。
func (s *UserStore) SetStatus(email string, status UserStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].Email == email {
			s.users[i].Status = status
			return true
		}
	}
	return false
}

// Seed はデモ用ユーザーをまとめて投入します。以降の採番は投入分の続きになります。
func (s *UserStore) Seed(users ...User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		s.saveLocked(u)
	}
}

func (s *UserStore) findByEmailLocked(email string) (*User, bool) {
	for i := range s.users {
		if s.users[i].Email == email {
			u := s.users[i]
			return &u, true
		}
	}
	return nil, false
}

func (s *UserStore) saveLocked(u User) int64 {
	s.nextID++
	u.UserID = s.nextID
	s.users = append(s.users, u)
	return u.UserID
}

func (s *UserStore) createSessionLocked(email string) string {
	token := uuid.NewString()
	s.sessions[token] = email
	return token
}
