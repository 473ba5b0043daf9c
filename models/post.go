package models

import "io"

// LegacyAuthor is the sentinel author value assigned to posts created before
// author attribution existed. Legacy posts are never editable or deletable.
const LegacyAuthor = "legacy-post"

// Post represents a feed post stored in the document store
type Post struct {
	ID        string `json:"id" firestore:"-" bson:"_id,omitempty"`
	Content   string `json:"content" firestore:"content" bson:"content"`
	ImageURL  string `json:"imageUrl,omitempty" firestore:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	CreatedAt int64  `json:"createdAt" firestore:"createdAt" bson:"createdAt"` // epoch millis
	Nickname  string `json:"nickname" firestore:"nickname" bson:"nickname"`
	Likes     int64  `json:"likes" firestore:"likes" bson:"likes"`
	Comments  int64  `json:"comments" firestore:"comments" bson:"comments"`
	AuthorIP  string `json:"authorIp" firestore:"authorIp" bson:"authorIp"`
	AuthorID  string `json:"authorId" firestore:"authorId" bson:"authorId"`
}

// ImageUpload carries a picked image file into a create or edit operation.
type ImageUpload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// ImageChange selects what an edit does with the post's image.
type ImageChange int

const (
	ImageKeep ImageChange = iota
	ImageRemove
	ImageReplace
)

// CreatePostRequest defines the input for creating a new post
type CreatePostRequest struct {
	Content  string `json:"content" validate:"required,max=1000"`
	Nickname string `json:"nickname" validate:"required,max=40"`
	Image    *ImageUpload
}

// EditPostRequest defines the input for editing an existing post.
// An empty Content leaves the stored content unchanged.
type EditPostRequest struct {
	Content     string `json:"content,omitempty" validate:"omitempty,max=1000"`
	ImageChange ImageChange
	Image       *ImageUpload
}
