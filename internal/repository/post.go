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

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	UpdateText(ctx context.Context, id primitive.ObjectID, text string) (*models.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Like(ctx context.Context, postID, profileID primitive.ObjectID) (*models.Post, error)
	Unlike(ctx context.Context, postID, profileID primitive.ObjectID) (*models.Post, error)
	AddComment(ctx context.Context, postID primitive.ObjectID, comment models.Comment) (*models.Post, error)
	RemoveComment(ctx context.Context, postID, commentID primitive.ObjectID) (*models.Post, error)
	DeleteByProfileID(ctx context.Context, profileID primitive.ObjectID) error
}

// postRepository implements PostRepository
type postRepository struct {
	coll *mongo.Collection
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *mongo.Database) PostRepository {
	return &postRepository{coll: db.Collection(database.PostsCollection)}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Likes == nil {
		post.Likes = []models.Like{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}

	res, err := r.coll.InsertOne(ctx, post)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		post.ID = oid
	}

	cache.InvalidatePostsList(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id.Hex()), &post, cache.PostTTL, func() error {
		return r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := cache.Aside(ctx, cache.PostsListKey, &posts, cache.PostListTTL, func() error {
		cursor, err := r.coll.Find(ctx, bson.M{},
			options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
		if err != nil {
			return err
		}
		return cursor.All(ctx, &posts)
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) UpdateText(ctx context.Context, id primitive.ObjectID, text string) (*models.Post, error) {
	update := bson.M{"$set": bson.M{
		"text":       text,
		"updated_at": time.Now().UTC(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var out models.Post
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, id.Hex())
	return &out, nil
}

func (r *postRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	cache.InvalidatePost(ctx, id.Hex())
	return nil
}

// Like prepends a like for profileID. The filter excludes posts already
// liked by the profile, which keeps the (post, profile) uniqueness invariant
// even under concurrent requests.
func (r *postRepository) Like(ctx context.Context, postID, profileID primitive.ObjectID) (*models.Post, error) {
	like := models.Like{ID: primitive.NewObjectID(), Profile: profileID}

	filter := bson.M{
		"_id":           postID,
		"likes.profile": bson.M{"$ne": profileID},
	}
	update := bson.M{
		"$push": bson.M{"likes": bson.M{
			"$each":     []models.Like{like},
			"$position": 0,
		}},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var out models.Post
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Either the post is gone or the like already exists.
		existing, getErr := r.lookup(ctx, postID)
		if getErr != nil {
			return nil, getErr
		}
		if existing == nil {
			return nil, nil
		}
		return nil, ErrAlreadyLiked
	}
	if err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, postID.Hex())
	return &out, nil
}

// Unlike removes the caller's like. The guarded filter makes the removal
// exact: it matches only when a like from this profile is present, and the
// uniqueness invariant guarantees there is exactly one to pull.
func (r *postRepository) Unlike(ctx context.Context, postID, profileID primitive.ObjectID) (*models.Post, error) {
	filter := bson.M{
		"_id":           postID,
		"likes.profile": profileID,
	}
	update := bson.M{
		"$pull": bson.M{"likes": bson.M{"profile": profileID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var out models.Post
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		existing, getErr := r.lookup(ctx, postID)
		if getErr != nil {
			return nil, getErr
		}
		if existing == nil {
			return nil, nil
		}
		return nil, ErrNotLiked
	}
	if err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, postID.Hex())
	return &out, nil
}

func (r *postRepository) AddComment(ctx context.Context, postID primitive.ObjectID, comment models.Comment) (*models.Post, error) {
	update := bson.M{
		"$push": bson.M{"comments": bson.M{
			"$each":     []models.Comment{comment},
			"$position": 0,
		}},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var out models.Post
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": postID}, update, opts).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, postID.Hex())
	return &out, nil
}

func (r *postRepository) RemoveComment(ctx context.Context, postID, commentID primitive.ObjectID) (*models.Post, error) {
	update := bson.M{
		"$pull": bson.M{"comments": bson.M{"_id": commentID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var out models.Post
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": postID}, update, opts).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, postID.Hex())
	return &out, nil
}

func (r *postRepository) DeleteByProfileID(ctx context.Context, profileID primitive.ObjectID) error {
	cursor, err := r.coll.Find(ctx, bson.M{"profile": profileID},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return err
	}

	var ids []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &ids); err != nil {
		return err
	}

	if _, err := r.coll.DeleteMany(ctx, bson.M{"profile": profileID}); err != nil {
		return err
	}

	for _, doc := range ids {
		cache.InvalidatePost(ctx, doc.ID.Hex())
	}
	return nil
}

// lookup fetches a post without touching the cache; used to disambiguate
// guarded-update misses.
func (r *postRepository) lookup(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}
