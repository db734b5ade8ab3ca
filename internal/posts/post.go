package posts

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("post not found")

// Post is the persistent post model. MediaKey references an uploaded object
// in the media store when the post carries an image.
type Post struct {
	ID        string    `json:"id" bson:"id"`
	AuthorSub string    `json:"authorSub" bson:"authorSub"`
	Text      string    `json:"text" bson:"text"`
	MediaKey  string    `json:"mediaKey,omitempty" bson:"mediaKey,omitempty"`
	Hashtags  []string  `json:"hashtags,omitempty" bson:"hashtags,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
