package models

// Comment represents a comment on a post
type Comment struct {
	ID        string `json:"id" firestore:"-" bson:"_id,omitempty"`
	PostID    string `json:"postId" firestore:"postId" bson:"postId"`
	Content   string `json:"content" firestore:"content" bson:"content"`
	Nickname  string `json:"nickname" firestore:"nickname" bson:"nickname"`
	CreatedAt int64  `json:"createdAt" firestore:"createdAt" bson:"createdAt"` // epoch millis
	AuthorIP  string `json:"authorIp" firestore:"authorIp" bson:"authorIp"`
	AuthorID  string `json:"authorId" firestore:"authorId" bson:"authorId"`
}

// CreateCommentRequest defines the input for adding a comment to a post
type CreateCommentRequest struct {
	Content  string `json:"content" validate:"required,max=500"`
	Nickname string `json:"nickname" validate:"required,max=40"`
}
