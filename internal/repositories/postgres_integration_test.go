package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidshare/backend/internal/db"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/toggle"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	// The toggle statement deletes from and inserts into the same table.
	if _, err := pool.Exec(ctx, "SET CLUSTER SETTING sql.multiple_modifications_of_table.enabled = true"); err != nil {
		fmt.Fprintf(os.Stderr, "enable multiple modifications: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	if err := db.Migrate(ctx, pool, "up"); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestPostgresUserRepository_CreateFindAndUpdate(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, repo, "alice")

	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Fatalf("expected store-assigned timestamps, got %+v", user)
	}

	dup := models.User{ID: uuid.NewString(), Username: "other", Email: user.Email, PasswordHash: "hash"}
	if _, err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate email, got %v", err)
	}
	dup = models.User{ID: uuid.NewString(), Username: user.Username, Email: "other@example.com", PasswordHash: "hash"}
	if _, err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate username, got %v", err)
	}

	byName, err := repo.FindByLogin(ctx, "", user.Username)
	if err != nil || byName.ID != user.ID {
		t.Fatalf("find by username: %+v, %v", byName, err)
	}
	byEmail, err := repo.FindByLogin(ctx, user.Email, "")
	if err != nil || byEmail.ID != user.ID {
		t.Fatalf("find by email: %+v, %v", byEmail, err)
	}
	if _, err := repo.FindByLogin(ctx, "", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty login, got %v", err)
	}

	updated, err := repo.UpdateAccount(ctx, user.ID, "Alice A.", "alice.a@example.com")
	if err != nil {
		t.Fatalf("update account: %v", err)
	}
	if updated.FullName != "Alice A." || updated.Email != "alice.a@example.com" {
		t.Fatalf("unexpected account after update: %+v", updated)
	}

	avatar := models.Asset{Key: "avatars/new.png", URL: "https://cdn.example.com/avatars/new.png"}
	updated, err = repo.UpdateAvatar(ctx, user.ID, avatar)
	if err != nil || updated.Avatar != avatar {
		t.Fatalf("update avatar: %+v, %v", updated, err)
	}

	if _, err := repo.UpdateAccount(ctx, uuid.NewString(), "x", "x@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing user, got %v", err)
	}
}

func TestPostgresUserRepository_RefreshToken(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, repo, "owner")

	if token, err := repo.RefreshToken(ctx, user.ID); err != nil || token != "" {
		t.Fatalf("expected no token for new user, got %q, %v", token, err)
	}
	if err := repo.SaveRefreshToken(ctx, user.ID, "token-1"); err != nil {
		t.Fatalf("save refresh token: %v", err)
	}
	if token, err := repo.RefreshToken(ctx, user.ID); err != nil || token != "token-1" {
		t.Fatalf("expected token-1, got %q, %v", token, err)
	}
	if ok, err := repo.RotateRefreshToken(ctx, user.ID, "token-1", "token-2"); err != nil || !ok {
		t.Fatalf("expected rotation from token-1, got %v, %v", ok, err)
	}
	if ok, err := repo.RotateRefreshToken(ctx, user.ID, "token-1", "token-3"); err != nil || ok {
		t.Fatalf("expected stale token-1 to be refused, got %v, %v", ok, err)
	}
	if token, err := repo.RefreshToken(ctx, user.ID); err != nil || token != "token-2" {
		t.Fatalf("expected token-2, got %q, %v", token, err)
	}
	if err := repo.ClearRefreshToken(ctx, user.ID); err != nil {
		t.Fatalf("clear refresh token: %v", err)
	}
	if token, err := repo.RefreshToken(ctx, user.ID); err != nil || token != "" {
		t.Fatalf("expected cleared token, got %q, %v", token, err)
	}
	if _, err := repo.RefreshToken(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestPostgresUserRepository_WatchHistoryIsIdempotent(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	viewer := createTestUser(t, users, "viewer")
	first := createTestVideo(t, viewer.ID, true)
	second := createTestVideo(t, viewer.ID, true)

	for _, id := range []string{first.ID, second.ID, first.ID} {
		if err := users.AddToWatchHistory(ctx, viewer.ID, id); err != nil {
			t.Fatalf("add to history: %v", err)
		}
	}

	history, err := NewPostgresViewRepository(testPool).WatchHistory(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("watch history: %v", err)
	}
	if len(history) != 2 || history[0] != first.ID || history[1] != second.ID {
		t.Fatalf("expected first-watch order [%s %s], got %v", first.ID, second.ID, history)
	}
}

func TestPostgresVideoRepository_CountersAndPublish(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := createTestUser(t, NewPostgresUserRepository(testPool), "owner")
	repo := NewPostgresVideoRepository(testPool)
	video := createTestVideo(t, owner.ID, true)

	for range 3 {
		if err := repo.IncrementViews(ctx, video.ID); err != nil {
			t.Fatalf("increment views: %v", err)
		}
	}
	toggled, err := repo.TogglePublished(ctx, video.ID)
	if err != nil {
		t.Fatalf("toggle published: %v", err)
	}
	if toggled.IsPublished || toggled.Views != 3 {
		t.Fatalf("unexpected video after toggle: %+v", toggled)
	}

	if err := repo.Delete(ctx, video.ID); err != nil {
		t.Fatalf("delete video: %v", err)
	}
	if err := repo.Delete(ctx, video.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
	if err := repo.IncrementViews(ctx, video.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound incrementing a deleted video, got %v", err)
	}
}

func TestPostgresEdgeRepository_ToggleIsAnInvolution(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	viewer := createTestUser(t, users, "viewer")
	channel := createTestUser(t, users, "channel")
	video := createTestVideo(t, channel.ID, true)

	edges := NewPostgresEdgeRepository(testPool)
	keys := []toggle.Key{
		{Kind: toggle.VideoLike, SubjectID: viewer.ID, TargetID: video.ID},
		{Kind: toggle.ChannelSubscription, SubjectID: viewer.ID, TargetID: channel.ID},
	}

	for _, key := range keys {
		for i, want := range []toggle.Outcome{toggle.Inserted, toggle.Removed, toggle.Inserted} {
			got, err := edges.ToggleOnce(ctx, key)
			if err != nil {
				t.Fatalf("%s toggle %d: %v", key.Kind, i, err)
			}
			if got != want {
				t.Fatalf("%s toggle %d: expected %s, got %s", key.Kind, i, want, got)
			}
		}
		count, err := edges.CountEdges(ctx, key.Kind, key.TargetID)
		if err != nil {
			t.Fatalf("count %s: %v", key.Kind, err)
		}
		if count != 1 {
			t.Fatalf("expected one %s edge, got %d", key.Kind, count)
		}
	}

	// A like on the video must not be visible as a like on a comment with the same id.
	count, err := edges.CountEdges(ctx, toggle.CommentLike, video.ID)
	if err != nil || count != 0 {
		t.Fatalf("expected no comment likes, got %d, %v", count, err)
	}
}

func TestPostgresEdgeRepository_ConcurrentTogglesSettleOnParity(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	viewer := createTestUser(t, users, "viewer")
	video := createTestVideo(t, createTestUser(t, users, "channel").ID, true)

	engine := toggle.NewEngine(NewPostgresEdgeRepository(testPool))
	key := toggle.Key{Kind: toggle.VideoLike, SubjectID: viewer.ID, TargetID: video.ID}

	const n = 7
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := engine.Toggle(ctx, key); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent toggle: %v", err)
	}

	count, err := NewPostgresEdgeRepository(testPool).CountEdges(ctx, toggle.VideoLike, video.ID)
	if err != nil {
		t.Fatalf("count likes: %v", err)
	}
	if count != n%2 {
		t.Fatalf("expected %d likes after %d toggles, got %d", n%2, n, count)
	}
}

func TestPostgresPlaylistRepository_SetSemantics(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := createTestUser(t, NewPostgresUserRepository(testPool), "owner")
	first := createTestVideo(t, owner.ID, true)
	second := createTestVideo(t, owner.ID, false)

	repo := NewPostgresPlaylistRepository(testPool)
	playlist, err := repo.Create(ctx, models.Playlist{ID: uuid.NewString(), OwnerID: owner.ID, Name: "Mix", Description: "d"})
	if err != nil {
		t.Fatalf("create playlist: %v", err)
	}
	if len(playlist.VideoIDs) != 0 {
		t.Fatalf("expected empty playlist, got %v", playlist.VideoIDs)
	}

	for _, id := range []string{first.ID, second.ID, first.ID} {
		if playlist, err = repo.AddVideo(ctx, playlist.ID, id); err != nil {
			t.Fatalf("add video: %v", err)
		}
	}
	if len(playlist.VideoIDs) != 2 || playlist.VideoIDs[0] != first.ID || playlist.VideoIDs[1] != second.ID {
		t.Fatalf("expected members [%s %s], got %v", first.ID, second.ID, playlist.VideoIDs)
	}

	if playlist, err = repo.RemoveVideo(ctx, playlist.ID, first.ID); err != nil {
		t.Fatalf("remove video: %v", err)
	}
	if playlist, err = repo.RemoveVideo(ctx, playlist.ID, first.ID); err != nil {
		t.Fatalf("remove absent video: %v", err)
	}
	if len(playlist.VideoIDs) != 1 || playlist.VideoIDs[0] != second.ID {
		t.Fatalf("expected members [%s], got %v", second.ID, playlist.VideoIDs)
	}

	if _, err := repo.AddVideo(ctx, uuid.NewString(), first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound adding to a missing playlist, got %v", err)
	}

	if err := repo.Delete(ctx, playlist.ID); err != nil {
		t.Fatalf("delete playlist: %v", err)
	}
	if _, err := repo.FindByID(ctx, playlist.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPostgresEdgeRepository_PurgeVideo(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	viewer := createTestUser(t, users, "viewer")
	video := createTestVideo(t, viewer.ID, true)

	comment, err := NewPostgresCommentRepository(testPool).Create(ctx,
		models.Comment{ID: uuid.NewString(), VideoID: video.ID, OwnerID: viewer.ID, Content: "hi"})
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	edges := NewPostgresEdgeRepository(testPool)
	for _, key := range []toggle.Key{
		{Kind: toggle.VideoLike, SubjectID: viewer.ID, TargetID: video.ID},
		{Kind: toggle.CommentLike, SubjectID: viewer.ID, TargetID: comment.ID},
	} {
		if _, err := edges.ToggleOnce(ctx, key); err != nil {
			t.Fatalf("toggle %s: %v", key.Kind, err)
		}
	}
	if err := users.AddToWatchHistory(ctx, viewer.ID, video.ID); err != nil {
		t.Fatalf("add to history: %v", err)
	}

	if err := NewPostgresVideoRepository(testPool).Delete(ctx, video.ID); err != nil {
		t.Fatalf("delete video: %v", err)
	}
	if err := edges.PurgeVideo(ctx, video.ID); err != nil {
		t.Fatalf("purge video: %v", err)
	}

	if _, err := NewPostgresCommentRepository(testPool).FindByID(ctx, comment.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected comment purged, got %v", err)
	}
	for _, kind := range []toggle.Kind{toggle.VideoLike, toggle.CommentLike} {
		target := video.ID
		if kind == toggle.CommentLike {
			target = comment.ID
		}
		if count, err := edges.CountEdges(ctx, kind, target); err != nil || count != 0 {
			t.Fatalf("expected %s edges purged, got %d, %v", kind, count, err)
		}
	}
	history, err := NewPostgresViewRepository(testPool).WatchHistory(ctx, viewer.ID)
	if err != nil || len(history) != 0 {
		t.Fatalf("expected empty history, got %v, %v", history, err)
	}
}

func TestPostgresViewRepository_BatchLoaders(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	alice := createTestUser(t, users, "alice")
	bob := createTestUser(t, users, "bob")
	older := createTestVideo(t, alice.ID, true)
	newer := createTestVideo(t, alice.ID, true)
	createTestVideo(t, alice.ID, false)

	edges := NewPostgresEdgeRepository(testPool)
	for _, key := range []toggle.Key{
		{Kind: toggle.VideoLike, SubjectID: bob.ID, TargetID: older.ID},
		{Kind: toggle.VideoLike, SubjectID: alice.ID, TargetID: older.ID},
		{Kind: toggle.ChannelSubscription, SubjectID: bob.ID, TargetID: alice.ID},
	} {
		if _, err := edges.ToggleOnce(ctx, key); err != nil {
			t.Fatalf("toggle %s: %v", key.Kind, err)
		}
	}

	src := NewPostgresViewRepository(testPool)

	found, err := src.UsersByIDs(ctx, []string{alice.ID, bob.ID, uuid.NewString()})
	if err != nil || len(found) != 2 {
		t.Fatalf("expected two users, got %d, %v", len(found), err)
	}

	latest, err := src.LatestPublishedVideos(ctx, []string{alice.ID, bob.ID})
	if err != nil {
		t.Fatalf("latest videos: %v", err)
	}
	if len(latest) != 1 || latest[alice.ID].ID != newer.ID {
		t.Fatalf("expected latest published %s for alice, got %+v", newer.ID, latest)
	}

	likes, err := src.LikesByTargets(ctx, toggle.VideoLike, []string{older.ID, newer.ID})
	if err != nil {
		t.Fatalf("likes by targets: %v", err)
	}
	if len(likes[older.ID]) != 2 || len(likes[newer.ID]) != 0 {
		t.Fatalf("unexpected likes grouping: %+v", likes)
	}

	mine, err := src.LikesBySubject(ctx, toggle.VideoLike, bob.ID)
	if err != nil || len(mine) != 1 || mine[0].VideoID != older.ID {
		t.Fatalf("unexpected likes by subject: %+v, %v", mine, err)
	}

	subs, err := src.SubscriptionsByChannels(ctx, []string{alice.ID})
	if err != nil || len(subs[alice.ID]) != 1 || subs[alice.ID][0].SubscriberID != bob.ID {
		t.Fatalf("unexpected subscriptions: %+v, %v", subs, err)
	}

	byName, err := src.UserByUsername(ctx, "bob")
	if err != nil || byName.ID != bob.ID {
		t.Fatalf("user by username: %+v, %v", byName, err)
	}
	if _, err := src.UserByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `TRUNCATE TABLE watch_history, playlist_videos, playlists, subscriptions,
        likes, tweets, comments, videos, users CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func createTestUser(t *testing.T, repo *PostgresUserRepository, username string) models.User {
	t.Helper()
	user, err := repo.Create(context.Background(), models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		FullName:     username,
		Avatar:       models.Asset{Key: "avatars/" + username, URL: "https://cdn.example.com/avatars/" + username},
		PasswordHash: "password-hash",
	})
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func createTestVideo(t *testing.T, ownerID string, published bool) models.Video {
	t.Helper()
	id := uuid.NewString()
	video, err := NewPostgresVideoRepository(testPool).Create(context.Background(), models.Video{
		ID:          id,
		OwnerID:     ownerID,
		VideoFile:   models.Asset{Key: "videos/" + id, URL: "https://cdn.example.com/videos/" + id},
		Thumbnail:   models.Asset{Key: "thumbnails/" + id, URL: "https://cdn.example.com/thumbnails/" + id},
		Title:       "video " + id[:8],
		Duration:    12.5,
		IsPublished: published,
	})
	if err != nil {
		t.Fatalf("create test video: %v", err)
	}
	return video
}
