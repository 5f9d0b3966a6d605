package store

import "sync"

type likeKey struct {
	postID int64
	userID int64
}

// LikeStore は「どのユーザーがどの投稿にいいねしたか」を保持します。
// 1ユーザー1投稿につき1件までです。
type LikeStore struct {
	mu    sync.Mutex
	likes map[likeKey]struct{}
}

// NewLikeStore は空の LikeStore を作成します。
func NewLikeStore() *LikeStore {
	return &LikeStore{
		likes: make(map[likeKey]struct{}),
	}
}

// Add はいいねを登録します。既に登録済みの場合は false を返します。
func (s *LikeStore) Add(postID, userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := likeKey{postID: postID, userID: userID}
	if _, ok := s.likes[key]; ok {
		return false
	}
	s.likes[key] = struct{}{}
	return true
}

// Remove はいいねを取り消します。登録がない場合は false を返します。
func (s *LikeStore) Remove(postID, userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := likeKey{postID: postID, userID: userID}
	if _, ok := s.likes[key]; !ok {
		return false
	}
	delete(s.likes, key)
	return true
}

// Has は対象ユーザーのいいねが登録済みかどうかを返します。
func (s *LikeStore) Has(postID, userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.likes[likeKey{postID: postID, userID: userID}]
	return ok
}

// CountByPost は特定の投稿に付いたいいね数を返します。
func (s *LikeStore) CountByPost(postID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for key := range s.likes {
		if key.postID == postID {
			count++
		}
	}
	return count
}

// DeleteByPost は特定の投稿に付いたいいねをすべて削除し、削除件数を返します。
func (s *LikeStore) DeleteByPost(postID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.likes {
		if key.postID == postID {
			delete(s.likes, key)
			removed++
		}
	}
	return removed
}
