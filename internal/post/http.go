// Package post は投稿・コメント・いいねのHTTPハンドラーを提供します。
package post

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/community-board/internal/auth"
	"github.com/yourusername/community-board/internal/config"
	"github.com/yourusername/community-board/internal/store"
)

// timeFormat は投稿・コメントの作成日時の表示形式です。
const timeFormat = "2006-01-02 15:04:05"

const defaultPageSize = 10

var (
	errPostNotFound    = &auth.Error{Status: http.StatusNotFound, Code: "POST_NOT_FOUND", Message: "指定された投稿は存在しません"}
	errPostsNotFound   = &auth.Error{Status: http.StatusNotFound, Code: "POSTS_NOT_FOUND", Message: "該当する投稿がありません"}
	errCommentNotFound = &auth.Error{Status: http.StatusNotFound, Code: "COMMENT_NOT_FOUND", Message: "指定されたコメントは存在しません"}
	errLikeNotFound    = &auth.Error{Status: http.StatusNotFound, Code: "LIKE_NOT_FOUND", Message: "いいねが登録されていません"}
	errAlreadyLiked    = &auth.Error{Status: http.StatusConflict, Code: "ALREADY_LIKED", Message: "既にいいね済みです"}
)

// Handler は投稿まわりのHTTPハンドラーをまとめた構造体です。
type Handler struct {
	cfg      *config.Config
	users    *store.UserStore
	posts    *store.PostStore
	comments *store.CommentStore
	likes    *store.LikeStore
}

// NewHandler は Handler を作成します。
func NewHandler(cfg *config.Config, users *store.UserStore, posts *store.PostStore, comments *store.CommentStore, likes *store.LikeStore) *Handler {
	return &Handler{
		cfg:      cfg,
		users:    users,
		posts:    posts,
		comments: comments,
		likes:    likes,
	}
}

type createPostRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
	Image   string `json:"image"`
}

type updatePostRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

// List は GET /api/v1/posts のハンドラーです。
// offset は postId の下限として扱い、先頭から size 件の要約を返します。
func (h *Handler) List(c *gin.Context) {
	offset, err := queryAsInt64(c, "offset", 0)
	if err != nil {
		auth.WriteError(c, auth.ErrInvalidInput)
		return
	}
	size, err := queryAsInt64(c, "size", defaultPageSize)
	if err != nil || size < 0 {
		auth.WriteError(c, auth.ErrInvalidInput)
		return
	}

	var filtered []store.Post
	for _, p := range h.posts.All() {
		if p.PostID >= offset {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == 0 {
		auth.WriteError(c, errPostsNotFound)
		return
	}
	if int64(len(filtered)) > size {
		filtered = filtered[:size]
	}

	summaries := make([]gin.H, 0, len(filtered))
	for _, p := range filtered {
		// 一覧では本文を落とした要約のみを返す
		summaries = append(summaries, gin.H{
			"postId":       p.PostID,
			"title":        p.Title,
			"author":       p.Author,
			"profileImage": p.ProfileImage,
			"createdAt":    p.CreatedAt,
			"likeCount":    p.LikeCount,
			"commentCount": p.CommentCount,
			"viewCount":    p.ViewCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "POST_RETRIEVAL_SUCCESS",
		"data":    summaries,
	})
}

// Detail は GET /api/v1/posts/:id のハンドラーです。閲覧数を1増やして返します。
func (h *Handler) Detail(c *gin.Context) {
	postID, err := paramAsInt64(c, "id")
	if err != nil {
		auth.WriteError(c, auth.ErrInvalidInput)
		return
	}

	if !h.posts.IncrementViewCount(postID) {
		auth.WriteError(c, errPostNotFound)
		return
	}
	post, ok := h.posts.GetByID(postID)
	if !ok {
		auth.WriteError(c, errPostNotFound)
		return
	}

	// author（ニックネーム）でユーザーを引き当てる。退会済みなどで
	// 見つからない場合は userId 0 のプレースホルダーを返す
	author := gin.H{
		"userId":          int64(0),
		"nickname":        post.Author,
		"profileImageUrl": nil,
	}
	if u, ok := h.users.FindByNickname(post.Author); ok {
		author = gin.H{
			"userId":          u.UserID,
			"nickname":        u.Nickname,
			"profileImageUrl": nullable(u.ProfileImage),
		}
	}

	rawComments := h.comments.ListByPost(postID)
	commentList := make([]gin.H, 0, len(rawComments))
	for _, cm := range rawComments {
		commentList = append(commentList, gin.H{
			"author":    cm.Author,
			"content":   cm.Content,
			"createdAt": cm.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "POST_DETAIL_GET_SUCCESS",
		"data": gin.H{
			"postId":       post.PostID,
			"title":        post.Title,
			"author":       author,
			"content":      post.Content,
			"createdAt":    post.CreatedAt,
			"likeCount":    post.LikeCount,
			"commentCount": len(commentList),
			"viewCount":    post.ViewCount,
			"comments":     commentList,
		},
	})
}

// Create は POST /api/v1/posts のハンドラーです。
func (h *Handler) Create(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		auth.WriteError(c, auth.ErrLoginRequired)
		return
	}

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		auth.WriteError(c, auth.ErrInvalidInput)
		return
	}

	profileImage := user.ProfileImage
	if profileImage == "" {
		profileImage = h.cfg.DefaultProfileImage
	}

	postID := h.posts.Create(store.Post{
		Title:        req.Title,
		Content:      req.Content,
		Image:        req.Image,
		Author:       user.Nickname,
		ProfileImage: profileImage,
		CreatedAt:    time.Now().Format(timeFormat),
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "POST_CREATE_SUCCESS",
		"data":    gin.H{"postId": postID},
	})
}

// Update は PUT /api/v1/posts/:id のハンドラーです。作成者本人のみ実行できます。
func (h *Handler) Update(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		auth.WriteError(c, auth.ErrLoginRequired)
		return
	}
	postID, err := paramAsInt64(c, "id")
	if err != nil {
		auth.WriteError(c, auth.ErrInvalidInput)
		return
	}

	post, found := h.posts.GetByID(postID)
	if !found {
		auth.WriteError(c, errPostNotFound)
		return
	}
	if err := auth.Authorize(post.Author, user.Nickname); err != nil {
		auth.WriteError(c, err)
		return
	}

	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		auth.WriteError(c, auth.ErrInvalidInput)
		return
	}

	if !h.posts.Update(postID, req.Title, req.Content, time.Now().Format(timeFormat)) {
		auth.WriteError(c, errPostNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "POST_UPDATE_SUCCESS",
		"data":    gin.H{"postId": postID},
	})
}

// Delete は DELETE /api/v1/posts/:id のハンドラーです。作成者本人のみ実行できます。
// 投稿に紐付くコメントといいねも合わせて削除します。
func (h *Handler) Delete(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		auth.WriteError(c, auth.ErrLoginRequired)
		return
	}
	postID, err := paramAsInt64(c, "id")
	if err != nil {
		auth.WriteError(c, auth.ErrInvalidInput)
		return
	}

	post, found := h.posts.GetByID(postID)
	if !found {
		auth.WriteError(c, errPostNotFound)
		return
	}
	if err := auth.Authorize(post.Author, user.Nickname); err != nil {
		auth.WriteError(c, err)
		return
	}

	h.comments.DeleteByPost(postID)
	h.likes.DeleteByPost(postID)
	if !h.posts.Delete(postID) {
		auth.WriteError(c, errPostNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "POST_DELETE_SUCCESS",
		"data":    nil,
	})
}

// CreateComment は POST /api/v1/posts/:id/comments のハンドラーです。
func (h *Handler) CreateComment(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		auth.WriteError(c, auth.ErrLoginRequired)
		return
	}
	postID, err := paramAsInt64(c, "id")
	if err != nil {
		auth.WriteError(c, auth.ErrInvalidInput)
		return
	}
	if _, found := h.posts.GetByID(postID); !found {
		auth.WriteError(c, errPostNotFound)
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		auth.WriteError(c, auth.ErrInvalidInput)
		return
	}

	commentID := h.comments.Create(store.Comment{
		PostID:    postID,
		Author:    user.Nickname,
		Content:   req.Content,
		CreatedAt: time.Now().Format(timeFormat),
	})
	h.posts.AdjustCommentCount(postID, 1)

	c.JSON(http.StatusCreated, gin.H{
		"message": "COMMENT_CREATE_SUCCESS",
		"data":    gin.H{"commentId": commentID},
	})
}

// UpdateComment は PUT /api/v1/posts/:id/comments/:commentId のハンドラーです。
func (h *Handler) UpdateComment(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		auth.WriteError(c, auth.ErrLoginRequired)
		return
	}
	postID, err := paramAsInt64(c, "id")
	if err != nil {
		auth.WriteError(c, auth.ErrInvalidInput)
		return
	}
	commentID, err := paramAsInt64(c, "commentId")
	if err != nil {
		auth.WriteError(c, auth.ErrInvalidInput)
		return
	}

	comment, found := h.comments.GetByID(commentID)
	if !found || comment.PostID != postID {
		auth.WriteError(c, errCommentNotFound)
		return
	}
	if err := auth.Authorize(comment.Author, user.Nickname); err != nil {
		auth.WriteError(c, err)
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		auth.WriteError(c, auth.ErrInvalidInput)
		return
	}

	if !h.comments.Update(commentID, req.Content, time.Now().Format(timeFormat)) {
		auth.WriteError(c, errCommentNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "COMMENT_UPDATE_SUCCESS",
		"data":    gin.H{"commentId": commentID},
	})
}

// DeleteComment は DELETE /api/v1/posts/:id/comments/:commentId のハンドラーです。
func (h *Handler) DeleteComment(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		auth.WriteError(c, auth.ErrLoginRequired)
		return
	}
	postID, err := paramAsInt64(c, "id")
	if err != nil {
		auth.WriteError(c, auth.ErrInvalidInput)
		return
	}
	commentID, err := paramAsInt64(c, "commentId")
	if err != nil {
		auth.WriteError(c, auth.ErrInvalidInput)
		return
	}

	comment, found := h.comments.GetByID(commentID)
	if !found || comment.PostID != postID {
		auth.WriteError(c, errCommentNotFound)
		return
	}
	if err := auth.Authorize(comment.Author, user.Nickname); err != nil {
		auth.WriteError(c, err)
		return
	}

	if !h.comments.Delete(commentID) {
		auth.WriteError(c, errCommentNotFound)
		return
	}
	h.posts.AdjustCommentCount(postID, -1)

	c.JSON(http.StatusOK, gin.H{
		"message": "COMMENT_DELETE_SUCCESS",
		"data":    nil,
	})
}

// Like は POST /api/v1/posts/:id/like のハンドラーです。1ユーザー1回までです。
func (h *Handler) Like(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		auth.WriteError(c, auth.ErrLoginRequired)
		return
	}
	postID, err := paramAsInt64(c, "id")
	if err != nil {
		auth.WriteError(c, auth.ErrInvalidInput)
		return
	}
	if _, found := h.posts.GetByID(postID); !found {
		auth.WriteError(c, errPostNotFound)
		return
	}

	if !h.likes.Add(postID, user.UserID) {
		auth.WriteError(c, errAlreadyLiked)
		return
	}
	likeCount, _ := h.posts.AdjustLikeCount(postID, 1)

	c.JSON(http.StatusOK, gin.H{
		"message": "LIKE_SUCCESS",
		"data":    gin.H{"likeCount": likeCount},
	})
}

// Unlike は DELETE /api/v1/posts/:id/like のハンドラーです。
func (h *Handler) Unlike(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		auth.WriteError(c, auth.ErrLoginRequired)
		return
	}
	postID, err := paramAsInt64(c, "id")
	if err != nil {
		auth.WriteError(c, auth.ErrInvalidInput)
		return
	}
	if _, found := h.posts.GetByID(postID); !found {
		auth.WriteError(c, errPostNotFound)
		return
	}

	if !h.likes.Remove(postID, user.UserID) {
		auth.WriteError(c, errLikeNotFound)
		return
	}
	likeCount, _ := h.posts.AdjustLikeCount(postID, -1)

	c.JSON(http.StatusOK, gin.H{
		"message": "LIKE_CANCEL_SUCCESS",
		"data":    gin.H{"likeCount": likeCount},
	})
}

func paramAsInt64(c *gin.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

func queryAsInt64(c *gin.Context, name string, defaultValue int64) (int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
