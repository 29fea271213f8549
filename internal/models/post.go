package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Like records that a profile has liked a post. At most one like per
// (post, profile) pair exists; the repository guards inserts accordingly.
type Like struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	Profile primitive.ObjectID `bson:"profile" json:"profile"`
}

// Comment is a nested comment document inside a post.
type Comment struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	Profile primitive.ObjectID `bson:"profile" json:"profile"`
	Text    string             `bson:"text" json:"text"`
	Date    time.Time          `bson:"date" json:"date"`
}

// Post is a post owned by a profile. Likes and comments are embedded and
// prepended, so both lists are ordered most-recent-first.
type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProfileID primitive.ObjectID `bson:"profile" json:"profile_id"`
	Text      string             `bson:"text" json:"text"`
	Likes     []Like             `bson:"likes" json:"likes"`
	Comments  []Comment          `bson:"comments" json:"comments"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// FindComment returns the comment with the given id, or nil.
func (p *Post) FindComment(id primitive.ObjectID) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return &p.Comments[i]
		}
	}
	return nil
}

// LikedBy reports whether the given profile has already liked the post.
func (p *Post) LikedBy(profileID primitive.ObjectID) bool {
	for _, l := range p.Likes {
		if l.Profile == profileID {
			return true
		}
	}
	return false
}
