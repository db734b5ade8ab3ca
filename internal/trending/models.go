package trending

import "time"

// UsageRecord is one (post, hashtag) association. Records are append-only;
// the trending ranking is recomputed from the full set on every call.
type UsageRecord struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Name      string    `bson:"name" json:"name"`
	PostID    string    `bson:"postId" json:"postId"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Tag is one ranked trending entry.
type Tag struct {
	Name       string `bson:"_id" json:"hashtag"`
	PostsCount int64  `bson:"postsCount" json:"postsCount"`
}
