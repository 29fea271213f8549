package repository

import (
	"context"
	"errors"
	"time"

	"devconnect/internal/cache"
	"devconnect/internal/database"
	"devconnect/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProfileRepository defines the interface for profile data operations
type ProfileRepository interface {
	// Upsert creates or replaces the profile keyed by its user id and
	// returns the resulting document.
	Upsert(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Profile, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
	List(ctx context.Context) ([]*models.Profile, error)
	AddExperience(ctx context.Context, userID primitive.ObjectID, exp models.Experience) (*models.Profile, error)
	RemoveExperience(ctx context.Context, userID, expID primitive.ObjectID) (*models.Profile, error)
	DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error
}

// profileRepository implements ProfileRepository
type profileRepository struct {
	coll *mongo.Collection
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *mongo.Database) ProfileRepository {
	return &profileRepository{coll: db.Collection(database.ProfilesCollection)}
}

func (r *profileRepository) Upsert(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	now := time.Now().UTC()

	skills := profile.Skills
	if skills == nil {
		skills = []string{}
	}

	update := bson.M{
		"$set": bson.M{
			"username":   profile.Username,
			"birthday":   profile.Birthday,
			"website":    profile.Website,
			"skills":     skills,
			"bio":        profile.Bio,
			"social":     profile.Social,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"user":       profile.UserID,
			"experience": []models.Experience{},
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var out models.Profile
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"user": profile.UserID}, update, opts).Decode(&out)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}

	cache.InvalidateProfile(ctx, out.ID.Hex())
	return &out, nil
}

func (r *profileRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	var profile models.Profile
	err := cache.Aside(ctx, cache.ProfileKey(id.Hex()), &profile, cache.ProfileTTL, func() error {
		return r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&profile)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	var profile models.Profile
	err := r.coll.FindOne(ctx, bson.M{"user": userID}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	var profile models.Profile
	err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) List(ctx context.Context) ([]*models.Profile, error) {
	cursor, err := r.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}

	profiles := []*models.Profile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *profileRepository) AddExperience(ctx context.Context, userID primitive.ObjectID, exp models.Experience) (*models.Profile, error) {
	update := bson.M{
		// Prepend so the experience list stays last-added-first.
		"$push": bson.M{"experience": bson.M{
			"$each":     []models.Experience{exp},
			"$position": 0,
		}},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var out models.Profile
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"user": userID}, update, opts).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cache.InvalidateProfile(ctx, out.ID.Hex())
	return &out, nil
}

func (r *profileRepository) RemoveExperience(ctx context.Context, userID, expID primitive.ObjectID) (*models.Profile, error) {
	update := bson.M{
		"$pull": bson.M{"experience": bson.M{"_id": expID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var out models.Profile
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"user": userID}, update, opts).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cache.InvalidateProfile(ctx, out.ID.Hex())
	return &out, nil
}

func (r *profileRepository) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error {
	var deleted models.Profile
	err := r.coll.FindOneAndDelete(ctx, bson.M{"user": userID}).Decode(&deleted)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return err
	}

	cache.InvalidateProfile(ctx, deleted.ID.Hex())
	return nil
}
