package post

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/community-board/internal/auth"
	"github.com/yourusername/community-board/internal/config"
	"github.com/yourusername/community-board/internal/store"
)

type env struct {
	router   *gin.Engine
	users    *store.UserStore
	posts    *store.PostStore
	comments *store.CommentStore
	likes    *store.LikeStore
}

func newEnv() *env {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		GinMode:             gin.TestMode,
		DefaultProfileImage: "https://image.kr/img.jpg",
	}

	users := store.NewUserStore()
	posts := store.NewPostStore()
	comments := store.NewCommentStore()
	likes := store.NewLikeStore()

	manager := auth.NewManager(cfg, users)
	handler := NewHandler(cfg, users, posts, comments, likes)

	router := gin.New()
	group := router.Group("/api/v1/posts")
	group.GET("", handler.List)
	group.GET("/:id", handler.Detail)
	group.POST("", manager.RequireLogin(), handler.Create)
	group.PUT("/:id", manager.RequireLogin(), handler.Update)
	group.DELETE("/:id", manager.RequireLogin(), handler.Delete)
	group.POST("/:id/comments", manager.RequireLogin(), handler.CreateComment)
	group.PUT("/:id/comments/:commentId", manager.RequireLogin(), handler.UpdateComment)
	group.DELETE("/:id/comments/:commentId", manager.RequireLogin(), handler.DeleteComment)
	group.POST("/:id/like", manager.RequireLogin(), handler.Like)
	group.DELETE("/:id/like", manager.RequireLogin(), handler.Unlike)

	return &env{
		router:   router,
		users:    users,
		posts:    posts,
		comments: comments,
		likes:    likes,
	}
}

// loginAs はユーザーを登録してセッショントークンを返します。
func (e *env) loginAs(email, nickname string) string {
	e.users.SaveUser(store.User{
		Email:    email,
		Password: "password123",
		Nickname: nickname,
		Status:   store.StatusActive,
	})
	return e.users.CreateSession(email)
}

func (e *env) do(t *testing.T, method, path string, body any, sessionToken string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sessionToken != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: sessionToken})
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (string, any) {
	t.Helper()

	var payload struct {
		Message string `json:"message"`
		Data    any    `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to parse response %q: %v", rec.Body.String(), err)
	}
	return payload.Message, payload.Data
}

func TestCreatePostRequiresLogin(t *testing.T) {
	e := newEnv()

	rec := e.do(t, http.MethodPost, "/api/v1/posts", gin.H{"title": "t", "content": "c"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if message, _ := decodeEnvelope(t, rec); message != "LOGIN_REQUIRED" {
		t.Fatalf("unexpected message: %s", message)
	}
}

func TestCreateAndDetail(t *testing.T) {
	e := newEnv()
	token := e.loginAs("ann@x.com", "ann")

	created := e.do(t, http.MethodPost, "/api/v1/posts", gin.H{
		"title": "hello", "content": "first post",
	}, token)
	if created.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", created.Code, created.Body.String())
	}
	message, data := decodeEnvelope(t, created)
	if message != "POST_CREATE_SUCCESS" {
		t.Fatalf("unexpected message: %s", message)
	}
	if data.(map[string]any)["postId"] != float64(1) {
		t.Fatalf("unexpected postId: %v", data)
	}

	detail := e.do(t, http.MethodGet, "/api/v1/posts/1", nil, "")
	if detail.Code != http.StatusOK {
		t.Fatalf("detail status = %d", detail.Code)
	}
	message, raw := decodeEnvelope(t, detail)
	if message != "POST_DETAIL_GET_SUCCESS" {
		t.Fatalf("unexpected message: %s", message)
	}
	body := raw.(map[string]any)
	if body["title"] != "hello" || body["content"] != "first post" {
		t.Fatalf("unexpected detail: %v", body)
	}
	// 詳細閲覧で閲覧数が増える
	if body["viewCount"] != float64(1) {
		t.Fatalf("viewCount = %v, want 1", body["viewCount"])
	}
	author := body["author"].(map[string]any)
	if author["userId"] != float64(1) || author["nickname"] != "ann" {
		t.Fatalf("unexpected author: %v", author)
	}
}

func TestDetailMissingPost(t *testing.T) {
	e := newEnv()

	rec := e.do(t, http.MethodGet, "/api/v1/posts/42", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if message, _ := decodeEnvelope(t, rec); message != "POST_NOT_FOUND" {
		t.Fatalf("unexpected message: %s", message)
	}
}

func TestListFiltersAndSlices(t *testing.T) {
	e := newEnv()
	token := e.loginAs("ann@x.com", "ann")
	for _, title := range []string{"one", "two", "three"} {
		e.do(t, http.MethodPost, "/api/v1/posts", gin.H{"title": title, "content": "body"}, token)
	}

	// offset は postId の下限
	rec := e.do(t, http.MethodGet, "/api/v1/posts?offset=2", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	_, raw := decodeEnvelope(t, rec)
	list := raw.([]any)
	if len(list) != 2 {
		t.Fatalf("list length = %d, want 2", len(list))
	}
	first := list[0].(map[string]any)
	if first["postId"] != float64(2) || first["title"] != "two" {
		t.Fatalf("unexpected first entry: %v", first)
	}
	// 一覧には本文を含めない
	if _, ok := first["content"]; ok {
		t.Fatal("summary leaked post content")
	}

	rec = e.do(t, http.MethodGet, "/api/v1/posts?size=1", nil, "")
	_, raw = decodeEnvelope(t, rec)
	if list := raw.([]any); len(list) != 1 {
		t.Fatalf("sized list length = %d, want 1", len(list))
	}
}

func TestListEmpty(t *testing.T) {
	e := newEnv()

	rec := e.do(t, http.MethodGet, "/api/v1/posts", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if message, _ := decodeEnvelope(t, rec); message != "POSTS_NOT_FOUND" {
		t.Fatalf("unexpected message: %s", message)
	}
}

func TestUpdateByNonOwner(t *testing.T) {
	e := newEnv()
	owner := e.loginAs("ann@x.com", "ann")
	other := e.loginAs("bob@x.com", "bob")

	e.do(t, http.MethodPost, "/api/v1/posts", gin.H{"title": "mine", "content": "body"}, owner)

	rec := e.do(t, http.MethodPut, "/api/v1/posts/1", gin.H{"title": "stolen", "content": "body"}, other)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if message, _ := decodeEnvelope(t, rec); message != "PERMISSION_DENIED" {
		t.Fatalf("unexpected message: %s", message)
	}

	// 内容が変わっていないこと
	post, _ := e.posts.GetByID(1)
	if post.Title != "mine" {
		t.Fatalf("post was modified: %+v", post)
	}
}

func TestUpdateByOwner(t *testing.T) {
	e := newEnv()
	token := e.loginAs("ann@x.com", "ann")
	e.do(t, http.MethodPost, "/api/v1/posts", gin.H{"title": "before", "content": "old"}, token)

	rec := e.do(t, http.MethodPut, "/api/v1/posts/1", gin.H{"title": "after", "content": "new"}, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	if message, _ := decodeEnvelope(t, rec); message != "POST_UPDATE_SUCCESS" {
		t.Fatalf("unexpected message: %s", message)
	}

	post, _ := e.posts.GetByID(1)
	if post.Title != "after" || post.Content != "new" {
		t.Fatalf("update not applied: %+v", post)
	}
}

func TestUpdateMissingPost(t *testing.T) {
	e := newEnv()
	token := e.loginAs("ann@x.com", "ann")

	rec := e.do(t, http.MethodPut, "/api/v1/posts/99", gin.H{"title": "x", "content": "y"}, token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if message, _ := decodeEnvelope(t, rec); message != "POST_NOT_FOUND" {
		t.Fatalf("unexpected message: %s", message)
	}
}

func TestDeleteByNonOwner(t *testing.T) {
	e := newEnv()
	owner := e.loginAs("ann@x.com", "ann")
	other := e.loginAs("bob@x.com", "bob")
	e.do(t, http.MethodPost, "/api/v1/posts", gin.H{"title": "mine", "content": "body"}, owner)

	rec := e.do(t, http.MethodDelete, "/api/v1/posts/1", nil, other)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if _, ok := e.posts.GetByID(1); !ok {
		t.Fatal("post was deleted by non-owner")
	}
}

func TestDeleteCascades(t *testing.T) {
	e := newEnv()
	owner := e.loginAs("ann@x.com", "ann")
	commenter := e.loginAs("bob@x.com", "bob")

	e.do(t, http.MethodPost, "/api/v1/posts", gin.H{"title": "t", "content": "c"}, owner)
	e.do(t, http.MethodPost, "/api/v1/posts/1/comments", gin.H{"content": "nice"}, commenter)
	e.do(t, http.MethodPost, "/api/v1/posts/1/like", nil, commenter)

	rec := e.do(t, http.MethodDelete, "/api/v1/posts/1", nil, owner)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d body=%s", rec.Code, rec.Body.String())
	}
	if message, _ := decodeEnvelope(t, rec); message != "POST_DELETE_SUCCESS" {
		t.Fatalf("unexpected message: %s", message)
	}

	if _, ok := e.posts.GetByID(1); ok {
		t.Fatal("post still present after delete")
	}
	if len(e.comments.ListByPost(1)) != 0 {
		t.Fatal("comments not cascaded")
	}
	if e.likes.CountByPost(1) != 0 {
		t.Fatal("likes not cascaded")
	}
}

func TestCommentFlow(t *testing.T) {
	e := newEnv()
	owner := e.loginAs("ann@x.com", "ann")
	other := e.loginAs("bob@x.com", "bob")
	e.do(t, http.MethodPost, "/api/v1/posts", gin.H{"title": "t", "content": "c"}, owner)

	created := e.do(t, http.MethodPost, "/api/v1/posts/1/comments", gin.H{"content": "first!"}, other)
	if created.Code != http.StatusCreated {
		t.Fatalf("comment create status = %d", created.Code)
	}
	message, data := decodeEnvelope(t, created)
	if message != "COMMENT_CREATE_SUCCESS" {
		t.Fatalf("unexpected message: %s", message)
	}
	if data.(map[string]any)["commentId"] != float64(1) {
		t.Fatalf("unexpected commentId: %v", data)
	}

	post, _ := e.posts.GetByID(1)
	if post.CommentCount != 1 {
		t.Fatalf("CommentCount = %d, want 1", post.CommentCount)
	}

	// コメントの所有権は投稿ではなくコメント作成者に対して効く
	denied := e.do(t, http.MethodPut, "/api/v1/posts/1/comments/1", gin.H{"content": "edited"}, owner)
	if denied.Code != http.StatusForbidden {
		t.Fatalf("comment update by non-author status = %d", denied.Code)
	}

	updated := e.do(t, http.MethodPut, "/api/v1/posts/1/comments/1", gin.H{"content": "edited"}, other)
	if updated.Code != http.StatusOK {
		t.Fatalf("comment update status = %d", updated.Code)
	}

	deleted := e.do(t, http.MethodDelete, "/api/v1/posts/1/comments/1", nil, other)
	if deleted.Code != http.StatusOK {
		t.Fatalf("comment delete status = %d", deleted.Code)
	}
	post, _ = e.posts.GetByID(1)
	if post.CommentCount != 0 {
		t.Fatalf("CommentCount after delete = %d, want 0", post.CommentCount)
	}
}

func TestCommentOnMissingPost(t *testing.T) {
	e := newEnv()
	token := e.loginAs("ann@x.com", "ann")

	rec := e.do(t, http.MethodPost, "/api/v1/posts/9/comments", gin.H{"content": "hello"}, token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if message, _ := decodeEnvelope(t, rec); message != "POST_NOT_FOUND" {
		t.Fatalf("unexpected message: %s", message)
	}
}

func TestLikeFlow(t *testing.T) {
	e := newEnv()
	owner := e.loginAs("ann@x.com", "ann")
	liker := e.loginAs("bob@x.com", "bob")
	e.do(t, http.MethodPost, "/api/v1/posts", gin.H{"title": "t", "content": "c"}, owner)

	liked := e.do(t, http.MethodPost, "/api/v1/posts/1/like", nil, liker)
	if liked.Code != http.StatusOK {
		t.Fatalf("like status = %d", liked.Code)
	}
	message, data := decodeEnvelope(t, liked)
	if message != "LIKE_SUCCESS" || data.(map[string]any)["likeCount"] != float64(1) {
		t.Fatalf("unexpected like response: %s %v", message, data)
	}

	again := e.do(t, http.MethodPost, "/api/v1/posts/1/like", nil, liker)
	if again.Code != http.StatusConflict {
		t.Fatalf("duplicate like status = %d", again.Code)
	}
	if message, _ := decodeEnvelope(t, again); message != "ALREADY_LIKED" {
		t.Fatalf("unexpected message: %s", message)
	}

	unliked := e.do(t, http.MethodDelete, "/api/v1/posts/1/like", nil, liker)
	if unliked.Code != http.StatusOK {
		t.Fatalf("unlike status = %d", unliked.Code)
	}
	message, data = decodeEnvelope(t, unliked)
	if message != "LIKE_CANCEL_SUCCESS" || data.(map[string]any)["likeCount"] != float64(0) {
		t.Fatalf("unexpected unlike response: %s %v", message, data)
	}

	missing := e.do(t, http.MethodDelete, "/api/v1/posts/1/like", nil, liker)
	if missing.Code != http.StatusNotFound {
		t.Fatalf("unlike without like status = %d", missing.Code)
	}
	if message, _ := decodeEnvelope(t, missing); message != "LIKE_NOT_FOUND" {
		t.Fatalf("unexpected message: %s", message)
	}
}
