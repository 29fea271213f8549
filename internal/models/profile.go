package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Experience is a single entry in a profile's experience list. Entries are
// prepended, so the list is ordered last-added-first.
type Experience struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Title    string             `bson:"title" json:"title"`
	Location string             `bson:"location,omitempty" json:"location,omitempty"`
}

// SocialLinks holds optional social URLs, stored in canonical https form.
type SocialLinks struct {
	Facebook  string `bson:"facebook,omitempty" json:"facebook,omitempty"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
}

// Profile is the public-facing identity tied one-to-one with a user. The
// profiles collection carries a unique index on the user field, so at most
// one profile can exist per user.
type Profile struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"user" json:"user_id"`
	Username   string             `bson:"username" json:"username"`
	Birthday   string             `bson:"birthday" json:"birthday"`
	Website    string             `bson:"website,omitempty" json:"website,omitempty"`
	Skills     []string           `bson:"skills" json:"skills"`
	Bio        string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Experience []Experience       `bson:"experience" json:"experience"`
	Social     SocialLinks        `bson:"social" json:"social"`
	// User is resolved at read time; the store has no foreign keys.
	User      *PublicUser `bson:"-" json:"user,omitempty"`
	CreatedAt time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time   `bson:"updated_at" json:"updated_at"`
}

// SkillList accepts either a JSON array of strings or a single
// comma-delimited string ("js, node, go") and normalizes to a trimmed slice.
type SkillList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *SkillList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*s = trimSkills(arr)
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = trimSkills(strings.Split(raw, ","))
	return nil
}

func trimSkills(in []string) []string {
	out := make([]string, 0, len(in))
	for _, sk := range in {
		if trimmed := strings.TrimSpace(sk); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
