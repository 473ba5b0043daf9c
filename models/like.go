package models

// Like is the membership record behind a post's like counter. At most one
// Like exists per (PostID, UserIP) pair at any settled state.
type Like struct {
	ID        string `json:"id" firestore:"-" bson:"_id,omitempty"`
	PostID    string `json:"postId" firestore:"postId" bson:"postId"`
	UserIP    string `json:"userIp" firestore:"userIp" bson:"userIp"`
	CreatedAt int64  `json:"createdAt" firestore:"createdAt" bson:"createdAt"` // epoch millis
}

// LikeStatus reports a principal's like state for a single post
type LikeStatus struct {
	PostID  string `json:"postId"`
	IsLiked bool   `json:"isLiked"`
}
