package entity

import "time"

// Blog is a post authored by a user. Comments are embedded and ordered by
// creation time; Likes holds the ids of users who currently like the post.
type Blog struct {
	ID         string
	Title      string
	Content    string
	AuthorID   string
	AuthorName string
	Comments   []Comment
	Likes      []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LikedBy reports whether userID is in the blog's like set.
func (b *Blog) LikedBy(userID string) bool {
	for _, id := range b.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// Comment lives inside its blog and is addressed by id for deletion.
type Comment struct {
	ID        string
	BlogID    string
	UserID    string
	Username  string
	Body      string
	CreatedAt time.Time
}
