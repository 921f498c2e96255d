package models

import "time"

// Role identifies the capability level the backend granted to an account.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// MaxPostLength is the longest content the backend accepts for posts and comments.
const MaxPostLength = 280

// Post is a single published entry in the public feed. The JSON shape mirrors
// the backend's tweet response payload.
type Post struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	PostedAt  time.Time `json:"postTime"`
	AuthorTag string    `json:"authorScreenName"`
	AuthorID  int64     `json:"authorId"`
}

// Comment is a reply attached to a post. ParentID is populated by the backend
// for nested replies but the create flow only targets posts.
type Comment struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	PostedAt  time.Time `json:"postTime"`
	AuthorTag string    `json:"authorScreenName"`
	PostID    int64     `json:"tweetId"`
	ParentID  *int64    `json:"parentCommentId"`
}

// ViewerProfile is the authenticated user's own account record, including the
// set of user ids they follow. It is the single source of follow truth.
type ViewerProfile struct {
	ID             int64   `json:"userid"`
	Tag            string  `json:"screenName"`
	ProfileImage   string  `json:"profileImage"`
	Bio            string  `json:"bio"`
	Role           Role    `json:"role"`
	FollowingIDs   []int64 `json:"followingIds"`
	FollowingCount int     `json:"followingCount"`
	FollowersCount int     `json:"followersCount"`
}

// IsFollowing reports whether the viewer follows the given user.
func (v ViewerProfile) IsFollowing(userID int64) bool {
	for _, id := range v.FollowingIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// CanEdit reports whether the viewer may edit the post. Only the author may.
// The check is advisory; the backend enforces the same rule authoritatively.
func (v ViewerProfile) CanEdit(p Post) bool {
	return v.ID == p.AuthorID
}

// CanDelete reports whether the viewer may delete the post. Authors may delete
// their own posts and admins may delete any post.
func (v ViewerProfile) CanDelete(p Post) bool {
	return v.ID == p.AuthorID || v.Role == RoleAdmin
}
