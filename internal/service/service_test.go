package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidshare/backend/internal/apperr"
	"github.com/vidshare/backend/internal/auth"
	"github.com/vidshare/backend/internal/cleanup"
	"github.com/vidshare/backend/internal/media"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/pipeline"
	"github.com/vidshare/backend/internal/repositories/memstore"
	"github.com/vidshare/backend/internal/storage"
	"github.com/vidshare/backend/internal/toggle"
	"github.com/vidshare/backend/internal/validation"
	"github.com/vidshare/backend/internal/views"
)

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	mp4Header = []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom\x00\x00\x00\x08free")
)

func png() media.File {
	return media.File{Name: "image.png", Size: int64(len(pngHeader)), Body: bytes.NewReader(pngHeader)}
}

func mp4() media.File {
	return media.File{Name: "clip.mp4", Size: int64(len(mp4Header)), Body: bytes.NewReader(mp4Header)}
}

type stubProber struct {
	duration float64
	err      error
}

func (p stubProber) Duration(context.Context, io.ReadSeeker) (float64, error) {
	return p.duration, p.err
}

type recordingQueue struct {
	mu   sync.Mutex
	jobs []cleanup.Job
}

func (q *recordingQueue) Enqueue(_ context.Context, job cleanup.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) recorded() []cleanup.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]cleanup.Job(nil), q.jobs...)
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memstore.Store
	blobs *storage.MemoryStorage
	queue *recordingQueue

	users         *UserService
	videos        *VideoService
	comments      *CommentService
	likes         *LikeService
	subscriptions *SubscriptionService
	tweets        *TweetService
	playlists     *PlaylistService
	dashboard     *DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memstore.New()
	blobs := storage.NewMemoryStorage("https://cdn.example.com")
	queue := &recordingQueue{}
	composer := views.NewComposer(store.Source())
	validate := validation.New()

	tokens, err := auth.NewTokenService("access-secret-0123456789", "refresh-secret-0123456789")
	require.NoError(t, err)
	sessions := auth.NewManager(tokens, time.Minute, time.Hour, store.Users())
	engine := toggle.NewEngine(store.Edges())

	return &fixture{
		t:             t,
		ctx:           context.Background(),
		store:         store,
		blobs:         blobs,
		queue:         queue,
		users:         NewUserService(store.Users(), sessions, auth.NewHasher(4), blobs, composer, validate),
		videos:        NewVideoService(store.Videos(), store.Users(), blobs, stubProber{duration: 12.5}, queue, composer, validate),
		comments:      NewCommentService(store.Comments(), store.Videos(), queue, composer, validate),
		likes:         NewLikeService(store.Videos(), store.Comments(), store.Tweets(), store.Edges(), engine, composer),
		subscriptions: NewSubscriptionService(store.Users(), store.Edges(), engine, composer),
		tweets:        NewTweetService(store.Tweets(), queue, composer, validate),
		playlists:     NewPlaylistService(store.Playlists(), store.Videos(), composer, validate),
		dashboard:     NewDashboardService(composer),
	}
}

func (f *fixture) register(username string) auth.Caller {
	f.t.Helper()
	user, err := f.users.Register(f.ctx, RegisterInput{
		FullName: "User " + username,
		Email:    username + "@example.com",
		Username: username,
		Password: "correct horse battery",
	}, png(), nil)
	require.NoError(f.t, err)
	return auth.Caller{ID: user.ID, Username: user.Username}
}

func (f *fixture) publish(owner auth.Caller, title string) models.Video {
	f.t.Helper()
	video, err := f.videos.Publish(f.ctx, owner, PublishInput{Title: title, Description: title + " description"}, mp4(), png())
	require.NoError(f.t, err)
	return video
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperr.KindOf(err), "error: %v", err)
}

func TestRegisterStoresAvatarAndRejectsDuplicates(t *testing.T) {
	f := newFixture(t)

	user, err := f.users.Register(f.ctx, RegisterInput{
		FullName: "  Alice Doe ",
		Email:    "Alice@Example.com",
		Username: "Alice",
		Password: "correct horse battery",
	}, png(), ptr(png()))
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "Alice Doe", user.FullName)
	assert.NotEmpty(t, user.Avatar.URL)
	assert.NotEmpty(t, user.CoverImage.URL)
	assert.Len(t, f.blobs.Keys(), 2)
	assert.Equal(t, "image/png", f.blobs.ContentType(user.Avatar.Key))

	_, err = f.users.Register(f.ctx, RegisterInput{
		FullName: "Other",
		Email:    "other@example.com",
		Username: "ALICE",
		Password: "correct horse battery",
	}, png(), nil)
	requireKind(t, err, apperr.KindConflict)
	assert.Len(t, f.blobs.Keys(), 2, "a rejected registration must not leave blobs behind")
}

func TestRegisterValidatesBeforeStoring(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.Register(f.ctx, RegisterInput{FullName: "A", Email: "not-an-email", Username: "abc", Password: "correct horse battery"}, png(), nil)
	requireKind(t, err, apperr.KindValidation)

	_, err = f.users.Register(f.ctx, RegisterInput{FullName: "A", Email: "a@example.com", Username: "abc", Password: "correct horse battery"}, mp4(), nil)
	requireKind(t, err, apperr.KindValidation)

	_, err = f.users.Register(f.ctx, RegisterInput{FullName: "A", Email: "a@example.com", Username: "abc", Password: "correct horse battery"}, media.File{}, nil)
	requireKind(t, err, apperr.KindValidation)

	assert.Empty(t, f.blobs.Keys())
}

func TestLoginRefreshAndLogout(t *testing.T) {
	f := newFixture(t)
	caller := f.register("bob")

	_, err := f.users.Login(f.ctx, LoginInput{Username: "bob", Password: "wrong password"})
	requireKind(t, err, apperr.KindUnauthenticated)

	_, err = f.users.Login(f.ctx, LoginInput{Username: "nobody", Password: "whatever"})
	requireKind(t, err, apperr.KindNotFound)

	_, err = f.users.Login(f.ctx, LoginInput{Password: "whatever"})
	requireKind(t, err, apperr.KindValidation)

	session, err := f.users.Login(f.ctx, LoginInput{Email: "BOB@example.com", Password: "correct horse battery"})
	require.NoError(t, err)
	assert.Equal(t, caller.ID, session.User.ID)
	assert.NotEmpty(t, session.Tokens.AccessToken)

	rotated, err := f.users.Refresh(f.ctx, session.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, session.Tokens.RefreshToken, rotated.RefreshToken)

	_, err = f.users.Refresh(f.ctx, session.Tokens.RefreshToken)
	requireKind(t, err, apperr.KindUnauthenticated)

	require.NoError(t, f.users.Logout(f.ctx, caller))
	_, err = f.users.Refresh(f.ctx, rotated.RefreshToken)
	requireKind(t, err, apperr.KindUnauthenticated)
}

func TestChangePasswordRequiresOldPassword(t *testing.T) {
	f := newFixture(t)
	caller := f.register("carol")

	err := f.users.ChangePassword(f.ctx, caller, ChangePasswordInput{OldPassword: "nope nope nope", NewPassword: "a brand new secret"})
	requireKind(t, err, apperr.KindValidation)

	require.NoError(t, f.users.ChangePassword(f.ctx, caller, ChangePasswordInput{
		OldPassword: "correct horse battery",
		NewPassword: "a brand new secret",
	}))
	_, err = f.users.Login(f.ctx, LoginInput{Username: "carol", Password: "a brand new secret"})
	require.NoError(t, err)
}

func TestUpdateAccountAndAvatar(t *testing.T) {
	f := newFixture(t)
	alice := f.register("alice")
	f.register("bob")

	_, err := f.users.UpdateAccount(f.ctx, alice, UpdateAccountInput{FullName: "Alice", Email: "bob@example.com"})
	requireKind(t, err, apperr.KindConflict)

	updated, err := f.users.UpdateAccount(f.ctx, alice, UpdateAccountInput{FullName: "Alice A.", Email: "alice.a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "alice.a@example.com", updated.Email)

	before, err := f.users.CurrentUser(f.ctx, alice)
	require.NoError(t, err)

	after, err := f.users.UpdateAvatar(f.ctx, alice, png())
	require.NoError(t, err)
	assert.NotEqual(t, before.Avatar.Key, after.Avatar.Key)
	assert.NotContains(t, f.blobs.Keys(), before.Avatar.Key)
	assert.Contains(t, f.blobs.Keys(), after.Avatar.Key)

	_, err = f.users.UpdateCoverImage(f.ctx, alice, mp4())
	requireKind(t, err, apperr.KindValidation)
}

func TestPublishUploadFailureLeavesNothingBehind(t *testing.T) {
	f := newFixture(t)
	alice := f.register("alice")
	avatarKeys := f.blobs.Keys()

	f.blobs.FailKeys = []string{"thumbnails/"}
	_, err := f.videos.Publish(f.ctx, alice, PublishInput{Title: "Clip", Description: "A clip"}, mp4(), png())
	require.Error(t, err)

	assert.Equal(t, avatarKeys, f.blobs.Keys())
	videos, err := f.dashboard.Videos(f.ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, videos)
}

func TestPublishRejectsUnreadableVideo(t *testing.T) {
	f := newFixture(t)
	alice := f.register("alice")
	f.videos.prober = stubProber{err: errors.New("moov atom not found")}

	_, err := f.videos.Publish(f.ctx, alice, PublishInput{Title: "Clip", Description: "A clip"}, mp4(), png())
	requireKind(t, err, apperr.KindValidation)

	_, err = f.videos.Publish(f.ctx, alice, PublishInput{Title: " ", Description: "A clip"}, mp4(), png())
	requireKind(t, err, apperr.KindValidation)
}

func TestVideoLikeScenario(t *testing.T) {
	f := newFixture(t)
	alice := f.register("alice")
	bob := f.register("bob")
	video := f.publish(alice, "Cats")
	assert.Equal(t, 12.5, video.Duration)

	state, err := f.likes.ToggleVideoLike(f.ctx, bob, video.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeState{IsLiked: true, LikesCount: 1}, state)

	detail, err := f.videos.Detail(f.ctx, bob, video.ID)
	require.NoError(t, err)
	assert.True(t, detail.IsLiked)
	assert.Equal(t, 1, detail.LikesCount)

	detail, err = f.videos.Detail(f.ctx, alice, video.ID)
	require.NoError(t, err)
	assert.False(t, detail.IsLiked)
	assert.Equal(t, 1, detail.LikesCount)

	state, err = f.likes.ToggleVideoLike(f.ctx, bob, video.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeState{IsLiked: false, LikesCount: 0}, state)

	// Liking your own video is allowed.
	state, err = f.likes.ToggleVideoLike(f.ctx, alice, video.ID)
	require.NoError(t, err)
	assert.True(t, state.IsLiked)

	liked, err := f.likes.LikedVideos(f.ctx, alice)
	require.NoError(t, err)
	require.Len(t, liked, 1)
	assert.Equal(t, video.ID, liked[0].Video.ID)

	_, err = f.likes.ToggleVideoLike(f.ctx, bob, "missing")
	requireKind(t, err, apperr.KindNotFound)
}

func TestCommentAndTweetLikes(t *testing.T) {
	f := newFixture(t)
	alice := f.register("alice")
	bob := f.register("bob")
	video := f.publish(alice, "Cats")

	comment, err := f.comments.Add(f.ctx, bob, video.ID, ContentInput{Content: "nice"})
	require.NoError(t, err)
	tweet, err := f.tweets.Create(f.ctx, alice, ContentInput{Content: "hello"})
	require.NoError(t, err)

	state, err := f.likes.ToggleCommentLike(f.ctx, alice, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeState{IsLiked: true, LikesCount: 1}, state)

	state, err = f.likes.ToggleTweetLike(f.ctx, bob, tweet.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeState{IsLiked: true, LikesCount: 1}, state)

	page, err := f.comments.List(f.ctx, alice, video.ID, pipeline.Page{Number: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Docs, 1)
	assert.True(t, page.Docs[0].IsLiked)

	tweets, err := f.tweets.UserTweets(f.ctx, bob, alice.ID)
	require.NoError(t, err)
	require.Len(t, tweets, 1)
	assert.True(t, tweets[0].IsLiked)

	_, err = f.comments.Add(f.ctx, bob, "missing", ContentInput{Content: "nice"})
	requireKind(t, err, apperr.KindNotFound)
	_, err = f.comments.Add(f.ctx, bob, video.ID, ContentInput{Content: "   "})
	requireKind(t, err, apperr.KindValidation)
}

func TestDetailCountsViewsAndRecordsHistoryOnce(t *testing.T) {
	f := newFixture(t)
	alice := f.register("alice")
	bob := f.register("bob")
	video := f.publish(alice, "Cats")

	first, err := f.videos.Detail(f.ctx, bob, video.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.Views)

	second, err := f.videos.Detail(f.ctx, bob, video.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, second.Views)

	history, err := f.users.WatchHistory(f.ctx, bob)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, video.ID, history[0].ID)
}

func TestUnpublishedVideoIsHiddenFromOthers(t *testing.T) {
	f := newFixture(t)
	alice := f.register("alice")
	bob := f.register("bob")
	video := f.publish(alice, "Draft")

	toggled, err := f.videos.TogglePublish(f.ctx, alice, video.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsPublished)

	_, err = f.videos.Detail(f.ctx, bob, video.ID)
	requireKind(t, err, apperr.KindNotFound)

	detail, err := f.videos.Detail(f.ctx, alice, video.ID)
	require.NoError(t, err)
	assert.False(t, detail.IsPublished)

	_, err = f.likes.ToggleVideoLike(f.ctx, bob, video.ID)
	requireKind(t, err, apperr.KindNotFound)
	_, err = f.comments.Add(f.ctx, bob, video.ID, ContentInput{Content: "sneaky"})
	requireKind(t, err, apperr.KindNotFound)
	_, err = f.comments.List(f.ctx, bob, video.ID, pipeline.Page{Number: 1, Limit: 10})
	requireKind(t, err, apperr.KindNotFound)

	bobList, err := f.playlists.Create(f.ctx, bob, PlaylistInput{Name: "Later", Description: "watch later"})
	require.NoError(t, err)
	_, err = f.playlists.AddVideo(f.ctx, bob, video.ID, bobList.ID)
	requireKind(t, err, apperr.KindNotFound)

	n, err := f.store.Edges().CountEdges(f.ctx, toggle.VideoLike, video.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	state, err := f.likes.ToggleVideoLike(f.ctx, alice, video.ID)
	require.NoError(t, err)
	assert.True(t, state.IsLiked)
	_, err = f.comments.List(f.ctx, alice, video.ID, pipeline.Page{Number: 1, Limit: 10})
	require.NoError(t, err)
}

func TestOwnershipGuardCoversEveryMutation(t *testing.T) {
	f := newFixture(t)
	alice := f.register("alice")
	mallory := f.register("mallory")

	video := f.publish(alice, "Cats")
	comment, err := f.comments.Add(f.ctx, alice, video.ID, ContentInput{Content: "first"})
	require.NoError(t, err)
	tweet, err := f.tweets.Create(f.ctx, alice, ContentInput{Content: "hello"})
	require.NoError(t, err)
	playlist, err := f.playlists.Create(f.ctx, alice, PlaylistInput{Name: "Faves", Description: "best of"})
	require.NoError(t, err)

	title := "stolen"
	mutations := map[string]func() error{
		"update video": func() error {
			_, err := f.videos.Update(f.ctx, mallory, video.ID, UpdateVideoInput{Title: &title}, nil)
			return err
		},
		"delete video": func() error { return f.videos.Delete(f.ctx, mallory, video.ID) },
		"toggle publish": func() error {
			_, err := f.videos.TogglePublish(f.ctx, mallory, video.ID)
			return err
		},
		"update comment": func() error {
			_, err := f.comments.Update(f.ctx, mallory, comment.ID, ContentInput{Content: "mine"})
			return err
		},
		"delete comment": func() error { return f.comments.Delete(f.ctx, mallory, comment.ID) },
		"update tweet": func() error {
			_, err := f.tweets.Update(f.ctx, mallory, tweet.ID, ContentInput{Content: "mine"})
			return err
		},
		"delete tweet": func() error { return f.tweets.Delete(f.ctx, mallory, tweet.ID) },
		"update playlist": func() error {
			_, err := f.playlists.Update(f.ctx, mallory, playlist.ID, PlaylistInput{Name: "x", Description: "y"})
			return err
		},
		"delete playlist": func() error { return f.playlists.Delete(f.ctx, mallory, playlist.ID) },
		"add to playlist": func() error {
			_, err := f.playlists.AddVideo(f.ctx, mallory, video.ID, playlist.ID)
			return err
		},
		"remove from playlist": func() error {
			_, err := f.playlists.RemoveVideo(f.ctx, mallory, video.ID, playlist.ID)
			return err
		},
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			requireKind(t, mutate(), apperr.KindForbidden)
		})
	}

	stored, err := f.store.Videos().FindByID(f.ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cats", stored.Title)
	assert.True(t, stored.IsPublished)
	_, err = f.store.Comments().FindByID(f.ctx, comment.ID)
	require.NoError(t, err)
	_, err = f.store.Tweets().FindByID(f.ctx, tweet.ID)
	require.NoError(t, err)
	assert.Empty(t, f.queue.recorded())

	// A missing resource is reported before ownership.
	err = f.videos.Delete(f.ctx, mallory, "missing")
	requireKind(t, err, apperr.KindNotFound)
}

func TestOwnerMutations(t *testing.T) {
	f := newFixture(t)
	alice := f.register("alice")
	video := f.publish(alice, "Cats")
	oldThumb := video.Thumbnail.Key

	title := "Cats 2"
	unpublish := false
	updated, err := f.videos.Update(f.ctx, alice, video.ID, UpdateVideoInput{Title: &title, IsPublished: &unpublish}, ptr(png()))
	require.NoError(t, err)
	assert.Equal(t, "Cats 2", updated.Title)
	assert.Equal(t, video.Description, updated.Description)
	assert.False(t, updated.IsPublished)
	assert.NotEqual(t, oldThumb, updated.Thumbnail.Key)
	assert.NotContains(t, f.blobs.Keys(), oldThumb)

	comment, err := f.comments.Add(f.ctx, alice, video.ID, ContentInput{Content: "first"})
	require.NoError(t, err)
	edited, err := f.comments.Update(f.ctx, alice, comment.ID, ContentInput{Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Content)
	require.NoError(t, f.comments.Delete(f.ctx, alice, comment.ID))

	tweet, err := f.tweets.Create(f.ctx, alice, ContentInput{Content: "hello"})
	require.NoError(t, err)
	require.NoError(t, f.tweets.Delete(f.ctx, alice, tweet.ID))

	require.NoError(t, f.videos.Delete(f.ctx, alice, video.ID))
	_, err = f.store.Videos().FindByID(f.ctx, video.ID)
	requireKind(t, notFound(err, "video not found"), apperr.KindNotFound)
	assert.NotContains(t, f.blobs.Keys(), updated.VideoFile.Key)
	assert.NotContains(t, f.blobs.Keys(), updated.Thumbnail.Key)

	assert.Equal(t, []cleanup.Job{
		{Kind: cleanup.KindComment, ID: comment.ID},
		{Kind: cleanup.KindTweet, ID: tweet.ID},
		{Kind: cleanup.KindVideo, ID: video.ID},
	}, f.queue.recorded())
}

func TestPlaylistShowsPublishedMembersOnly(t *testing.T) {
	f := newFixture(t)
	alice := f.register("alice")
	published := f.publish(alice, "Public")
	draft := f.publish(alice, "Draft")
	_, err := f.videos.TogglePublish(f.ctx, alice, draft.ID)
	require.NoError(t, err)

	playlist, err := f.playlists.Create(f.ctx, alice, PlaylistInput{Name: "Mix", Description: "everything"})
	require.NoError(t, err)
	assert.Empty(t, playlist.VideoIDs)

	for _, id := range []string{published.ID, draft.ID, published.ID} {
		playlist, err = f.playlists.AddVideo(f.ctx, alice, id, playlist.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{published.ID, draft.ID}, playlist.VideoIDs)

	detail, err := f.playlists.Detail(f.ctx, playlist.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.TotalVideos)
	require.Len(t, detail.Videos, 1)
	assert.Equal(t, published.ID, detail.Videos[0].ID)

	playlist, err = f.playlists.RemoveVideo(f.ctx, alice, published.ID, playlist.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{draft.ID}, playlist.VideoIDs)

	_, err = f.playlists.AddVideo(f.ctx, alice, "missing", playlist.ID)
	requireKind(t, err, apperr.KindNotFound)

	summaries, err := f.playlists.UserPlaylists(f.ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Mix", summaries[0].Name)

	require.NoError(t, f.playlists.Delete(f.ctx, alice, playlist.ID))
	_, err = f.playlists.Detail(f.ctx, playlist.ID)
	requireKind(t, err, apperr.KindNotFound)
}

func TestSubscriptionToggle(t *testing.T) {
	f := newFixture(t)
	alice := f.register("alice")
	bob := f.register("bob")

	_, err := f.subscriptions.Toggle(f.ctx, alice, alice.ID)
	requireKind(t, err, apperr.KindValidation)

	_, err = f.subscriptions.Toggle(f.ctx, alice, "missing")
	requireKind(t, err, apperr.KindNotFound)

	state, err := f.subscriptions.Toggle(f.ctx, bob, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, SubscriptionState{IsSubscribed: true, SubscribersCount: 1}, state)

	profile, err := f.users.ChannelProfile(f.ctx, bob, "alice")
	require.NoError(t, err)
	assert.True(t, profile.IsSubscribed)
	assert.Equal(t, 1, profile.SubscribersCount)

	subscribers, err := f.subscriptions.Subscribers(f.ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, subscribers, 1)
	assert.Equal(t, bob.ID, subscribers[0].ID)

	channels, err := f.subscriptions.SubscribedChannels(f.ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Nil(t, channels[0].LatestVideo)

	state, err = f.subscriptions.Toggle(f.ctx, bob, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, SubscriptionState{IsSubscribed: false, SubscribersCount: 0}, state)
}

func TestConcurrentLikesSettleOnParity(t *testing.T) {
	f := newFixture(t)
	alice := f.register("alice")
	bob := f.register("bob")
	video := f.publish(alice, "Cats")

	const n = 9
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.likes.ToggleVideoLike(f.ctx, bob, video.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	count, err := f.store.Edges().CountEdges(f.ctx, toggle.VideoLike, video.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	alice := f.register("alice")
	bob := f.register("bob")
	video := f.publish(alice, "Cats")
	f.publish(alice, "Dogs")

	_, err := f.likes.ToggleVideoLike(f.ctx, bob, video.ID)
	require.NoError(t, err)
	_, err = f.subscriptions.Toggle(f.ctx, bob, alice.ID)
	require.NoError(t, err)
	_, err = f.videos.Detail(f.ctx, bob, video.ID)
	require.NoError(t, err)

	stats, err := f.dashboard.Stats(f.ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, views.ChannelStats{TotalSubscribers: 1, TotalLikes: 1, TotalViews: 1, TotalVideos: 2}, stats)

	videos, err := f.dashboard.Videos(f.ctx, alice)
	require.NoError(t, err)
	assert.Len(t, videos, 2)
}

func ptr[T any](v T) *T { return &v }
