package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	userKeyPrefix = "user:%s"
	postKeyPrefix = "post:%s"

	// PostsListKey holds the default (unpaginated) feed.
	PostsListKey = "posts:list"
)

const (
	UserTTL      = 5 * time.Minute
	PostTTL      = 5 * time.Minute
	PostsListTTL = 30 * time.Second
)

func UserKey(userID string) string {
	return fmt.Sprintf(userKeyPrefix, userID)
}

func PostKey(postID string) string {
	return fmt.Sprintf(postKeyPrefix, postID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidatePost drops both the post entry and the feed, since the feed
// embeds the post's likes and comments.
func InvalidatePost(ctx context.Context, postID string) {
	Invalidate(ctx, PostKey(postID))
	Invalidate(ctx, PostsListKey)
}

func InvalidateUser(ctx context.Context, userID string) {
	Invalidate(ctx, UserKey(userID))
}
