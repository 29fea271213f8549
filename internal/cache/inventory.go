package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ProfileKeyPrefix = "profile:%s"
	PostKeyPrefix    = "post:%s"
	PostsListKey     = "posts:all"
)

const (
	ProfileTTL  = 5 * time.Minute
	PostTTL     = 30 * time.Minute
	PostListTTL = 1 * time.Minute
)

func ProfileKey(profileID string) string {
	return fmt.Sprintf(ProfileKeyPrefix, profileID)
}

func PostKey(postID string) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateProfile(ctx context.Context, profileID string) {
	Invalidate(ctx, ProfileKey(profileID))
}

func InvalidatePost(ctx context.Context, postID string) {
	Invalidate(ctx, PostKey(postID), PostsListKey)
}

func InvalidatePostsList(ctx context.Context) {
	Invalidate(ctx, PostsListKey)
}
