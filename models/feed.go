package models

// FeedCursor points at the last fetched post so pagination can resume
// strictly after it. CreatedAt breaks the descending-time order, LastID
// breaks equal-millis ties.
type FeedCursor struct {
	CreatedAt int64
	LastID    string
}

// FeedPage is one page of descending-time feed results
type FeedPage struct {
	Posts   []Post
	Cursor  *FeedCursor
	HasMore bool
}
