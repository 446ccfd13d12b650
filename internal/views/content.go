package views

import (
	"cmp"
	"context"
	"time"

	"github.com/vidshare/backend/internal/auth"
	"github.com/vidshare/backend/internal/logging"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/pipeline"
	"github.com/vidshare/backend/internal/toggle"
)

// postRow carries a comment or tweet through a pipeline.
type postRow struct {
	id        string
	ownerID   string
	createdAt time.Time
	comment   models.Comment
	tweet     models.Tweet

	owner      *models.User
	likes      []models.Like
	likesCount int
	isLiked    bool
}

func (c *Composer) postPipeline(kind toggle.Kind, viewer string) pipeline.Pipeline[postRow] {
	return pipeline.New(
		pipeline.Join("owner",
			func(r postRow) []string { return one(r.ownerID) },
			c.users(),
			func(r *postRow, rel map[string][]models.User) {
				if u, ok := pipeline.First(rel[r.ownerID]); ok {
					r.owner = &u
				}
			}),
		pipeline.Match("owner present", func(r postRow) bool { return r.owner != nil }),
		pipeline.Join("likes",
			func(r postRow) []string { return one(r.id) },
			c.likes(kind),
			func(r *postRow, rel map[string][]models.Like) { r.likes = rel[r.id] }),
		pipeline.Derive("like counters", func(r *postRow) {
			r.likesCount = len(r.likes)
			r.isLiked = likedBy(r.likes, viewer)
		}),
		pipeline.Sort("newest first", func(a, b postRow) int {
			if c := b.createdAt.Compare(a.createdAt); c != 0 {
				return c
			}
			return cmp.Compare(a.id, b.id)
		}),
	)
}

// VideoComments lists a video's comments, newest first, paginated.
func (c *Composer) VideoComments(ctx context.Context, caller *auth.Caller, videoID string, page pipeline.Page) (pipeline.Paginated[CommentView], error) {
	ctx, span := logging.StartSpan(ctx, "views.video_comments")
	defer span.End()

	if _, err := c.src.VideoByID(ctx, videoID); err != nil {
		return pipeline.Paginated[CommentView]{}, notFound(err, "video not found")
	}
	comments, err := c.src.CommentsByVideo(ctx, videoID)
	if err != nil {
		return pipeline.Paginated[CommentView]{}, err
	}

	rows := make([]postRow, len(comments))
	for i, cm := range comments {
		rows[i] = postRow{id: cm.ID, ownerID: cm.OwnerID, createdAt: cm.CreatedAt, comment: cm}
	}

	rows, err = c.postPipeline(toggle.CommentLike, viewerID(caller)).Run(ctx, rows)
	if err != nil {
		span.Fail(err)
		return pipeline.Paginated[CommentView]{}, err
	}

	views := pipeline.Project(rows, func(r postRow) CommentView {
		return CommentView{
			ID:         r.comment.ID,
			Content:    r.comment.Content,
			VideoID:    r.comment.VideoID,
			CreatedAt:  r.comment.CreatedAt,
			UpdatedAt:  r.comment.UpdatedAt,
			Owner:      summarize(r.owner),
			LikesCount: r.likesCount,
			IsLiked:    r.isLiked,
		}
	})
	return pipeline.Paginate(views, page), nil
}

// UserTweets lists a user's tweets, newest first.
func (c *Composer) UserTweets(ctx context.Context, caller *auth.Caller, userID string) ([]TweetView, error) {
	ctx, span := logging.StartSpan(ctx, "views.user_tweets")
	defer span.End()

	if _, err := c.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	tweets, err := c.src.TweetsByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows := make([]postRow, len(tweets))
	for i, t := range tweets {
		rows[i] = postRow{id: t.ID, ownerID: t.OwnerID, createdAt: t.CreatedAt, tweet: t}
	}

	rows, err = c.postPipeline(toggle.TweetLike, viewerID(caller)).Run(ctx, rows)
	if err != nil {
		span.Fail(err)
		return nil, err
	}

	return pipeline.Project(rows, func(r postRow) TweetView {
		return TweetView{
			ID:         r.tweet.ID,
			Content:    r.tweet.Content,
			CreatedAt:  r.tweet.CreatedAt,
			UpdatedAt:  r.tweet.UpdatedAt,
			Owner:      summarize(r.owner),
			LikesCount: r.likesCount,
			IsLiked:    r.isLiked,
		}
	}), nil
}
