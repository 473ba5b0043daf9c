package models

// Principal identifies a session's author for attribution and ownership
// checks: an anonymous account id plus a best-effort network address. It is
// advisory only; nothing about it is cryptographically verifiable.
type Principal struct {
	AccountID string `json:"accountId"`
	IPAddress string `json:"ipAddress"`
}

// OwnsPost reports whether the principal authored the post. Legacy posts
// carry the sentinel author and match no principal.
func (p Principal) OwnsPost(post *Post) bool {
	if post.AuthorIP == LegacyAuthor {
		return false
	}
	return post.AuthorIP == p.IPAddress && post.AuthorID == p.AccountID
}

// OwnsComment reports whether the principal authored the comment. Comments
// are matched on the network address alone, a deliberately weak check.
func (p Principal) OwnsComment(comment *Comment) bool {
	return comment.AuthorIP != "" && comment.AuthorIP == p.IPAddress
}
