package store

import "sync"

// Post は掲示板の投稿レコードを表します。
// Author には作成時点のニックネームが記録され、所有権チェックの比較対象になります。
type Post struct {
	PostID       int64  `json:"postId"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	Image        string `json:"image,omitempty"`
	Author       string `json:"author"`
	ProfileImage string `json:"profileImage"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
	LikeCount    int    `json:"likeCount"`
	CommentCount int    `json:"commentCount"`
	ViewCount    int    `json:"viewCount"`
}

// PostStore は投稿レコードを保持します。
type PostStore struct {
	mu     sync.Mutex
	posts  []Post
	nextID int64
}

// NewPostStore は空の PostStore を作成します。
func NewPostStore() *PostStore {
	return &PostStore{}
}

// Create は新しい投稿を保存し、採番したIDを返します。
func (s *PostStore) Create(p Post) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	p.PostID = s.nextID
	s.posts = append(s.posts, p)
	return p.PostID
}

// GetByID は投稿を1件取得します。
func (s *PostStore) GetByID(id int64) (*Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.posts {
		if s.posts[i].PostID == id {
			p := s.posts[i]
			return &p, true
		}
	}
	return nil, false
}

// All は全投稿のコピーを挿入順で返します。
func (s *PostStore) All() []Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// Update は投稿のタイトルと本文を置き換えます。存在しない場合は false を返します。
func (s *PostStore) Update(id int64, title, content, updatedAt string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.posts {
		if s.posts[i].PostID == id {
			s.posts[i].Title = title
			s.posts[i].Content = content
			s.posts[i].UpdatedAt = updatedAt
			return true
		}
	}
	return false
}

// Delete は投稿を削除します。存在しない場合は false を返します。
func (s *PostStore) Delete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.posts {
		if s.posts[i].PostID == id {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			return true
		}
	}
	return false
}

// IncrementViewCount は閲覧数を1増やします。
func (s *PostStore) IncrementViewCount(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.posts {
		if s.posts[i].PostID == id {
			s.posts[i].ViewCount++
			return true
		}
	}
	return false
}

// AdjustCommentCount はコメント数を差分更新します。負数にはなりません。
func (s *PostStore) AdjustCommentCount(id int64, delta int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.posts {
		if s.posts[i].PostID == id {
			s.posts[i].CommentCount += delta
			if s.posts[i].CommentCount < 0 {
				s.posts[i].CommentCount = 0
			}
			return true
		}
	}
	return false
}

// AdjustLikeCount はいいね数を差分更新し、更新後の値を返します。負数にはなりません。
func (s *PostStore) AdjustLikeCount(id int64, delta int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.posts {
		if s.posts[i].PostID == id {
			s.posts[i].LikeCount += delta
			if s.posts[i].LikeCount < 0 {
				s.posts[i].LikeCount = 0
			}
			return s.posts[i].LikeCount, true
		}
	}
	return 0, false
}
