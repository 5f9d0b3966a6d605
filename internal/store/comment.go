package store

import "sync"

// Comment は投稿に紐付くコメントレコードを表します。
type Comment struct {
	CommentID int64  `json:"commentId"`
	PostID    int64  `json:"postId"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// CommentStore はコメントレコードを保持します。
type CommentStore struct {
	mu       sync.Mutex
	comments []Comment
	nextID   int64
}

// NewCommentStore は空の CommentStore を作成します。
func NewCommentStore() *CommentStore {
	return &CommentStore{}
}

// Create は新しいコメントを保存し、採番したIDを返します。
func (s *CommentStore) Create(c Comment) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	c.CommentID = s.nextID
	s.comments = append(s.comments, c)
	return c.CommentID
}

// GetByID はコメントを1件取得します。
func (s *CommentStore) GetByID(id int64) (*Comment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.comments {
		if s.comments[i].CommentID == id {
			c := s.comments[i]
			return &c, true
		}
	}
	return nil, false
}

// ListByPost は特定の投稿に付いたコメントを挿入順で返します。
func (s *CommentStore) ListByPost(postID int64) []Comment {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Comment
	for i := range s.comments {
		if s.comments[i].PostID == postID {
			out = append(out, s.comments[i])
		}
	}
	return out
}

// Update はコメント本文を書き換えます。存在しない場合は false を返します。
func (s *CommentStore) Update(id int64, content, updatedAt string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.comments {
		if s.comments[i].CommentID == id {
			s.comments[i].Content = content
			s.comments[i].UpdatedAt = updatedAt
			return true
		}
	}
	return false
}

// Delete はコメントを削除します。存在しない場合は false を返します。
func (s *CommentStore) Delete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.comments {
		if s.comments[i].CommentID == id {
			s.comments = append(s.comments[:i], s.comments[i+1:]...)
			return true
		}
	}
	return false
}

// DeleteByPost は特定の投稿に付いたコメントをすべて削除し、削除件数を返します。
func (s *CommentStore) DeleteByPost(postID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.comments[:0]
	removed := 0
	for _, c := range s.comments {
		if c.PostID == postID {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	s.comments = kept
	return removed
}
