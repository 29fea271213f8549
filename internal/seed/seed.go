// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"devconnect/internal/database"
	"devconnect/internal/models"
	"devconnect/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// DefaultPassword is the password every seeded user gets.
const DefaultPassword = "password123"

// Seeder builds domain entities and persists them.
type Seeder struct {
	db    *mongo.Database
	users repository.UserRepository
	rng   *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided database.
func NewSeeder(db *mongo.Database) *Seeder {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:    db,
		users: repository.NewUserRepository(db),
		//nolint:gosec // Weak random number generator is fine for seeding
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Seed populates the database with test data
func (s *Seeder) Seed(ctx context.Context, opts Options) error {
	log.Printf("Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	profiles, err := s.createUsersWithProfiles(ctx, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("%d test users created", len(profiles))

	posts, err := s.createPosts(ctx, profiles, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("%d posts created", len(posts))

	if err := s.createEngagement(ctx, profiles, posts); err != nil {
		return fmt.Errorf("failed to create engagement: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// ClearAll drops all seeded collections.
func (s *Seeder) ClearAll(ctx context.Context) error {
	log.Println("Clearing existing data...")
	for _, name := range []string{
		database.PostsCollection,
		database.ProfilesCollection,
		database.UsersCollection,
	} {
		if _, err := s.db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) createUsersWithProfiles(ctx context.Context, n int) ([]*models.Profile, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	profilesColl := s.db.Collection(database.ProfilesCollection)
	profiles := make([]*models.Profile, 0, n)

	for i := 0; i < n; i++ {
		first := gofakeit.FirstName()
		last := gofakeit.LastName()

		user := &models.User{
			Name:     first + " " + last,
			Email:    fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i),
			Password: string(hash),
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		profile := &models.Profile{
			ID:       primitive.NewObjectID(),
			UserID:   user.ID,
			Username: s.username(first, last),
			Birthday: gofakeit.DateRange(
				now.AddDate(-60, 0, 0), now.AddDate(-18, 0, 0)).Format("2006-01-02"),
			Website:    "https://" + gofakeit.DomainName(),
			Skills:     s.skills(),
			Bio:        gofakeit.Sentence(12),
			Experience: s.experience(),
			Social: models.SocialLinks{
				Facebook:  "https://facebook.com/" + strings.ToLower(first+last),
				Instagram: "https://instagram.com/" + strings.ToLower(first+"."+last),
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := profilesColl.InsertOne(ctx, profile); err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

func (s *Seeder) createPosts(ctx context.Context, profiles []*models.Profile, n int) ([]*models.Post, error) {
	if len(profiles) == 0 {
		return nil, nil
	}

	coll := s.db.Collection(database.PostsCollection)
	posts := make([]*models.Post, 0, n)
	docs := make([]interface{}, 0, n)

	for i := 0; i < n; i++ {
		owner := profiles[s.rng.Intn(len(profiles))]
		// realistic created_at spread over the last 90 days
		created := time.Now().UTC().Add(-time.Duration(s.rng.Intn(90*24)) * time.Hour)

		post := &models.Post{
			ID:        primitive.NewObjectID(),
			ProfileID: owner.ID,
			Text:      gofakeit.Sentence(5 + s.rng.Intn(20)),
			Likes:     []models.Like{},
			Comments:  []models.Comment{},
			CreatedAt: created,
			UpdatedAt: created,
		}
		posts = append(posts, post)
		docs = append(docs, post)
	}

	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return nil, err
	}
	return posts, nil
}

// createEngagement sprinkles likes and comments across the seeded posts,
// keeping at most one like per profile per post.
func (s *Seeder) createEngagement(ctx context.Context, profiles []*models.Profile, posts []*models.Post) error {
	if len(profiles) == 0 || len(posts) == 0 {
		return nil
	}

	coll := s.db.Collection(database.PostsCollection)
	for _, post := range posts {
		likes := []models.Like{}
		for _, p := range profiles {
			if s.rng.Intn(4) != 0 {
				continue
			}
			likes = append(likes, models.Like{ID: primitive.NewObjectID(), Profile: p.ID})
		}

		comments := []models.Comment{}
		for c := 0; c < s.rng.Intn(4); c++ {
			commenter := profiles[s.rng.Intn(len(profiles))]
			comments = append(comments, models.Comment{
				ID:      primitive.NewObjectID(),
				Profile: commenter.ID,
				Text:    gofakeit.Sentence(4 + s.rng.Intn(10)),
				Date:    post.CreatedAt.Add(time.Duration(s.rng.Intn(72)) * time.Hour),
			})
		}

		if len(likes) == 0 && len(comments) == 0 {
			continue
		}
		_, err := coll.UpdateOne(ctx, bson.M{"_id": post.ID}, bson.M{
			"$set": bson.M{"likes": likes, "comments": comments},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) username(first, last string) string {
	formats := []string{"%s%s", "%s.%s", "%s_%s"}
	format := formats[s.rng.Intn(len(formats))]
	return fmt.Sprintf(format, strings.ToLower(first), strings.ToLower(last)) +
		fmt.Sprintf("%d", s.rng.Intn(1000))
}

func (s *Seeder) skills() []string {
	pool := []string{
		"Go", "JavaScript", "TypeScript", "Python", "Rust", "SQL",
		"React", "Node.js", "Docker", "Kubernetes", "MongoDB", "Redis",
		"GraphQL", "gRPC", "Terraform", "AWS", "GCP", "CI/CD",
	}
	s.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:2+s.rng.Intn(5)]
}

func (s *Seeder) experience() []models.Experience {
	titles := []string{
		"Software Engineer", "Senior Software Engineer", "Backend Developer",
		"Frontend Developer", "DevOps Engineer", "Engineering Manager",
		"Staff Engineer", "Intern", "Tech Lead",
	}
	out := []models.Experience{}
	for i := 0; i < s.rng.Intn(4); i++ {
		out = append(out, models.Experience{
			ID:       primitive.NewObjectID(),
			Title:    titles[s.rng.Intn(len(titles))],
			Location: gofakeit.City() + ", " + gofakeit.StateAbr(),
		})
	}
	return out
}
