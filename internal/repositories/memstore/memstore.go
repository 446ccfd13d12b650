// Package memstore is an in-memory implementation of every repository
// contract and of the view source, used by tests.
package memstore

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/repositories"
	"github.com/vidshare/backend/internal/toggle"
)

type historyEntry struct {
	videoID   string
	watchedAt time.Time
}

// Store holds all entities behind a single mutex. Timestamps come from a
// logical clock that advances one millisecond per write, so ordering by
// creation time is deterministic.
type Store struct {
	mu    sync.Mutex
	clock time.Time

	users     map[string]models.User
	tokens    map[string]string
	videos    map[string]models.Video
	comments  map[string]models.Comment
	tweets    map[string]models.Tweet
	playlists map[string]models.Playlist
	likes     []models.Like
	subs      []models.Subscription
	history   map[string][]historyEntry
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		clock:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:     make(map[string]models.User),
		tokens:    make(map[string]string),
		videos:    make(map[string]models.Video),
		comments:  make(map[string]models.Comment),
		tweets:    make(map[string]models.Tweet),
		playlists: make(map[string]models.Playlist),
		history:   make(map[string][]historyEntry),
	}
}

// tick advances the logical clock. Callers hold s.mu.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

// Users returns the user and session repository view of the store.
func (s *Store) Users() *Users { return &Users{s: s} }

// Videos returns the video repository view of the store.
func (s *Store) Videos() *Videos { return &Videos{s: s} }

// Comments returns the comment repository view of the store.
func (s *Store) Comments() *Comments { return &Comments{s: s} }

// Tweets returns the tweet repository view of the store.
func (s *Store) Tweets() *Tweets { return &Tweets{s: s} }

// Playlists returns the playlist repository view of the store.
func (s *Store) Playlists() *Playlists { return &Playlists{s: s} }

// Edges returns the edge and purge repository view of the store.
func (s *Store) Edges() *Edges { return &Edges{s: s} }

// Source returns the read side used by the view composer.
func (s *Store) Source() *Source { return &Source{s: s} }

// Users implements repositories.UserRepository and repositories.SessionRepository.
type Users struct{ s *Store }

func (u *Users) Create(_ context.Context, user models.User) (models.User, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.ID == user.ID || existing.Email == user.Email || existing.Username == user.Username {
			return models.User{}, repositories.ErrConflict
		}
	}
	now := s.tick()
	user.CreatedAt, user.UpdatedAt = now, now
	user.RefreshToken = ""
	s.users[user.ID] = user
	return user, nil
}

func (u *Users) FindByID(_ context.Context, id string) (models.User, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (u *Users) FindByLogin(_ context.Context, email, username string) (models.User, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if (email != "" && user.Email == email) || (username != "" && user.Username == username) {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (u *Users) UpdateAccount(_ context.Context, id, fullName, email string) (models.User, error) {
	return u.update(id, func(s *Store, user *models.User) error {
		for _, other := range s.users {
			if other.ID != id && other.Email == email {
				return repositories.ErrConflict
			}
		}
		user.FullName, user.Email = fullName, email
		return nil
	})
}

func (u *Users) UpdatePassword(_ context.Context, id, passwordHash string) error {
	_, err := u.update(id, func(_ *Store, user *models.User) error {
		user.PasswordHash = passwordHash
		return nil
	})
	return err
}

func (u *Users) UpdateAvatar(_ context.Context, id string, avatar models.Asset) (models.User, error) {
	return u.update(id, func(_ *Store, user *models.User) error {
		user.Avatar = avatar
		return nil
	})
}

func (u *Users) UpdateCoverImage(_ context.Context, id string, cover models.Asset) (models.User, error) {
	return u.update(id, func(_ *Store, user *models.User) error {
		user.CoverImage = cover
		return nil
	})
}

func (u *Users) AddToWatchHistory(_ context.Context, userID, videoID string) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return repositories.ErrNotFound
	}
	for _, e := range s.history[userID] {
		if e.videoID == videoID {
			return nil
		}
	}
	s.history[userID] = append(s.history[userID], historyEntry{videoID: videoID, watchedAt: s.tick()})
	return nil
}

func (u *Users) SaveRefreshToken(_ context.Context, userID, token string) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return repositories.ErrNotFound
	}
	s.tokens[userID] = token
	return nil
}

func (u *Users) RefreshToken(_ context.Context, userID string) (string, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return "", repositories.ErrNotFound
	}
	return s.tokens[userID], nil
}

func (u *Users) RotateRefreshToken(_ context.Context, userID, current, next string) (bool, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.tokens[userID]; !ok || stored == "" || stored != current {
		return false, nil
	}
	s.tokens[userID] = next
	return true, nil
}

func (u *Users) ClearRefreshToken(_ context.Context, userID string) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.tokens, userID)
	return nil
}

func (u *Users) update(id string, fn func(*Store, *models.User) error) (models.User, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	if err := fn(s, &user); err != nil {
		return models.User{}, err
	}
	user.UpdatedAt = s.tick()
	s.users[id] = user
	return user, nil
}

// Videos implements repositories.VideoRepository.
type Videos struct{ s *Store }

func (v *Videos) Create(_ context.Context, video models.Video) (models.Video, error) {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[video.ID]; ok {
		return models.Video{}, repositories.ErrConflict
	}
	if _, ok := s.users[video.OwnerID]; !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	now := s.tick()
	video.CreatedAt, video.UpdatedAt = now, now
	video.Views = 0
	s.videos[video.ID] = video
	return video, nil
}

func (v *Videos) FindByID(_ context.Context, id string) (models.Video, error) {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (v *Videos) Update(_ context.Context, video models.Video) (models.Video, error) {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.videos[video.ID]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	current.Title = video.Title
	current.Description = video.Description
	current.Thumbnail = video.Thumbnail
	current.IsPublished = video.IsPublished
	current.UpdatedAt = s.tick()
	s.videos[video.ID] = current
	return current, nil
}

func (v *Videos) Delete(_ context.Context, id string) error {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

func (v *Videos) IncrementViews(_ context.Context, id string) error {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Views++
	s.videos[id] = video
	return nil
}

func (v *Videos) TogglePublished(_ context.Context, id string) (models.Video, error) {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	video.IsPublished = !video.IsPublished
	video.UpdatedAt = s.tick()
	s.videos[id] = video
	return video, nil
}

// Comments implements repositories.CommentRepository.
type Comments struct{ s *Store }

func (c *Comments) Create(_ context.Context, comment models.Comment) (models.Comment, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[comment.ID]; ok {
		return models.Comment{}, repositories.ErrConflict
	}
	now := s.tick()
	comment.CreatedAt, comment.UpdatedAt = now, now
	s.comments[comment.ID] = comment
	return comment, nil
}

func (c *Comments) FindByID(_ context.Context, id string) (models.Comment, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

func (c *Comments) UpdateContent(_ context.Context, id, content string) (models.Comment, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	comment.Content = content
	comment.UpdatedAt = s.tick()
	s.comments[id] = comment
	return comment, nil
}

func (c *Comments) Delete(_ context.Context, id string) error {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

// Tweets implements repositories.TweetRepository.
type Tweets struct{ s *Store }

func (t *Tweets) Create(_ context.Context, tweet models.Tweet) (models.Tweet, error) {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tweets[tweet.ID]; ok {
		return models.Tweet{}, repositories.ErrConflict
	}
	now := s.tick()
	tweet.CreatedAt, tweet.UpdatedAt = now, now
	s.tweets[tweet.ID] = tweet
	return tweet, nil
}

func (t *Tweets) FindByID(_ context.Context, id string) (models.Tweet, error) {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	return tweet, nil
}

func (t *Tweets) UpdateContent(_ context.Context, id, content string) (models.Tweet, error) {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	tweet.Content = content
	tweet.UpdatedAt = s.tick()
	s.tweets[id] = tweet
	return tweet, nil
}

func (t *Tweets) Delete(_ context.Context, id string) error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tweets[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.tweets, id)
	return nil
}

// Playlists implements repositories.PlaylistRepository.
type Playlists struct{ s *Store }

func clonePlaylist(p models.Playlist) models.Playlist {
	p.VideoIDs = slices.Clone(p.VideoIDs)
	if p.VideoIDs == nil {
		p.VideoIDs = []string{}
	}
	return p
}

func (p *Playlists) Create(_ context.Context, playlist models.Playlist) (models.Playlist, error) {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.playlists[playlist.ID]; ok {
		return models.Playlist{}, repositories.ErrConflict
	}
	now := s.tick()
	playlist.CreatedAt, playlist.UpdatedAt = now, now
	playlist.VideoIDs = []string{}
	s.playlists[playlist.ID] = playlist
	return clonePlaylist(playlist), nil
}

func (p *Playlists) FindByID(_ context.Context, id string) (models.Playlist, error) {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	return clonePlaylist(playlist), nil
}

func (p *Playlists) Update(_ context.Context, id, name, description string) (models.Playlist, error) {
	return p.mutate(id, func(pl *models.Playlist) bool {
		pl.Name, pl.Description = name, description
		return true
	})
}

func (p *Playlists) Delete(_ context.Context, id string) error {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.playlists[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.playlists, id)
	return nil
}

func (p *Playlists) AddVideo(_ context.Context, playlistID, videoID string) (models.Playlist, error) {
	return p.mutate(playlistID, func(pl *models.Playlist) bool {
		if slices.Contains(pl.VideoIDs, videoID) {
			return false
		}
		pl.VideoIDs = append(pl.VideoIDs, videoID)
		return true
	})
}

func (p *Playlists) RemoveVideo(_ context.Context, playlistID, videoID string) (models.Playlist, error) {
	return p.mutate(playlistID, func(pl *models.Playlist) bool {
		i := slices.Index(pl.VideoIDs, videoID)
		if i < 0 {
			return false
		}
		pl.VideoIDs = slices.Delete(pl.VideoIDs, i, i+1)
		return true
	})
}

func (p *Playlists) mutate(id string, fn func(*models.Playlist) bool) (models.Playlist, error) {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	playlist = clonePlaylist(playlist)
	if fn(&playlist) {
		playlist.UpdatedAt = s.tick()
	}
	s.playlists[id] = playlist
	return clonePlaylist(playlist), nil
}

// Edges implements repositories.EdgeRepository and repositories.PurgeRepository.
type Edges struct{ s *Store }

func likeMatches(kind toggle.Kind, l models.Like, targetID string) bool {
	switch kind {
	case toggle.VideoLike:
		return l.VideoID == targetID
	case toggle.CommentLike:
		return l.CommentID == targetID
	case toggle.TweetLike:
		return l.TweetID == targetID
	default:
		return false
	}
}

// ToggleOnce removes or inserts the edge atomically under the store mutex.
func (e *Edges) ToggleOnce(_ context.Context, key toggle.Key) (toggle.Outcome, error) {
	s := e.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if key.Kind == toggle.ChannelSubscription {
		for i, sub := range s.subs {
			if sub.SubscriberID == key.SubjectID && sub.ChannelID == key.TargetID {
				s.subs = slices.Delete(s.subs, i, i+1)
				return toggle.Removed, nil
			}
		}
		s.subs = append(s.subs, models.Subscription{
			ID:           uuid.NewString(),
			SubscriberID: key.SubjectID,
			ChannelID:    key.TargetID,
			CreatedAt:    s.tick(),
		})
		return toggle.Inserted, nil
	}

	for i, l := range s.likes {
		if l.LikedBy == key.SubjectID && likeMatches(key.Kind, l, key.TargetID) {
			s.likes = slices.Delete(s.likes, i, i+1)
			return toggle.Removed, nil
		}
	}
	like := models.Like{ID: uuid.NewString(), LikedBy: key.SubjectID, CreatedAt: s.tick()}
	switch key.Kind {
	case toggle.VideoLike:
		like.VideoID = key.TargetID
	case toggle.CommentLike:
		like.CommentID = key.TargetID
	case toggle.TweetLike:
		like.TweetID = key.TargetID
	}
	s.likes = append(s.likes, like)
	return toggle.Inserted, nil
}

func (e *Edges) CountEdges(_ context.Context, kind toggle.Kind, targetID string) (int64, error) {
	s := e.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	if kind == toggle.ChannelSubscription {
		for _, sub := range s.subs {
			if sub.ChannelID == targetID {
				n++
			}
		}
		return n, nil
	}
	for _, l := range s.likes {
		if likeMatches(kind, l, targetID) {
			n++
		}
	}
	return n, nil
}

func (e *Edges) PurgeVideo(_ context.Context, videoID string) error {
	s := e.s
	s.mu.Lock()
	defer s.mu.Unlock()

	orphaned := make(map[string]bool)
	for id, c := range s.comments {
		if c.VideoID == videoID {
			orphaned[id] = true
			delete(s.comments, id)
		}
	}
	s.likes = slices.DeleteFunc(s.likes, func(l models.Like) bool {
		return l.VideoID == videoID || (l.CommentID != "" && orphaned[l.CommentID])
	})
	for id, p := range s.playlists {
		if i := slices.Index(p.VideoIDs, videoID); i >= 0 {
			p = clonePlaylist(p)
			p.VideoIDs = slices.Delete(p.VideoIDs, i, i+1)
			s.playlists[id] = p
		}
	}
	for userID, entries := range s.history {
		s.history[userID] = slices.DeleteFunc(entries, func(h historyEntry) bool { return h.videoID == videoID })
	}
	return nil
}

func (e *Edges) PurgeComment(_ context.Context, commentID string) error {
	s := e.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.likes = slices.DeleteFunc(s.likes, func(l models.Like) bool { return l.CommentID == commentID })
	return nil
}

func (e *Edges) PurgeTweet(_ context.Context, tweetID string) error {
	s := e.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.likes = slices.DeleteFunc(s.likes, func(l models.Like) bool { return l.TweetID == tweetID })
	return nil
}

// Source implements views.Source.
type Source struct{ s *Store }

func (src *Source) UsersByIDs(_ context.Context, ids []string) (map[string]models.User, error) {
	s := src.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.User)
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (src *Source) UserByUsername(_ context.Context, username string) (models.User, error) {
	s := src.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (src *Source) VideoByID(ctx context.Context, id string) (models.Video, error) {
	return (&Videos{s: src.s}).FindByID(ctx, id)
}

func (src *Source) VideosByIDs(_ context.Context, ids []string) (map[string]models.Video, error) {
	s := src.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.Video)
	for _, id := range ids {
		if v, ok := s.videos[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (src *Source) VideosByOwner(_ context.Context, ownerID string) ([]models.Video, error) {
	s := src.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Video
	for _, v := range s.videos {
		if v.OwnerID == ownerID {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b models.Video) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (src *Source) LatestPublishedVideos(_ context.Context, ownerIDs []string) (map[string]models.Video, error) {
	s := src.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.Video)
	for _, v := range s.videos {
		if !v.IsPublished || !slices.Contains(ownerIDs, v.OwnerID) {
			continue
		}
		if cur, ok := out[v.OwnerID]; !ok || v.CreatedAt.After(cur.CreatedAt) {
			out[v.OwnerID] = v
		}
	}
	return out, nil
}

func (src *Source) CommentsByVideo(_ context.Context, videoID string) ([]models.Comment, error) {
	s := src.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Comment
	for _, c := range s.comments {
		if c.VideoID == videoID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (src *Source) TweetsByOwner(_ context.Context, ownerID string) ([]models.Tweet, error) {
	s := src.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Tweet
	for _, t := range s.tweets {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (src *Source) PlaylistByID(ctx context.Context, id string) (models.Playlist, error) {
	return (&Playlists{s: src.s}).FindByID(ctx, id)
}

func (src *Source) PlaylistsByOwner(_ context.Context, ownerID string) ([]models.Playlist, error) {
	s := src.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Playlist
	for _, p := range s.playlists {
		if p.OwnerID == ownerID {
			out = append(out, clonePlaylist(p))
		}
	}
	slices.SortFunc(out, func(a, b models.Playlist) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (src *Source) LikesByTargets(_ context.Context, kind toggle.Kind, targetIDs []string) (map[string][]models.Like, error) {
	s := src.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]models.Like)
	for _, id := range targetIDs {
		for _, l := range s.likes {
			if likeMatches(kind, l, id) {
				out[id] = append(out[id], l)
			}
		}
	}
	return out, nil
}

func (src *Source) LikesBySubject(_ context.Context, kind toggle.Kind, userID string) ([]models.Like, error) {
	s := src.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Like
	for _, l := range s.likes {
		if l.LikedBy != userID {
			continue
		}
		if (kind == toggle.VideoLike && l.VideoID != "") ||
			(kind == toggle.CommentLike && l.CommentID != "") ||
			(kind == toggle.TweetLike && l.TweetID != "") {
			out = append(out, l)
		}
	}
	return out, nil
}

func (src *Source) SubscriptionsByChannels(_ context.Context, channelIDs []string) (map[string][]models.Subscription, error) {
	s := src.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]models.Subscription)
	for _, sub := range s.subs {
		if slices.Contains(channelIDs, sub.ChannelID) {
			out[sub.ChannelID] = append(out[sub.ChannelID], sub)
		}
	}
	return out, nil
}

func (src *Source) SubscriptionsBySubscribers(_ context.Context, subscriberIDs []string) (map[string][]models.Subscription, error) {
	s := src.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]models.Subscription)
	for _, sub := range s.subs {
		if slices.Contains(subscriberIDs, sub.SubscriberID) {
			out[sub.SubscriberID] = append(out[sub.SubscriberID], sub)
		}
	}
	return out, nil
}

func (src *Source) WatchHistory(_ context.Context, userID string) ([]string, error) {
	s := src.s
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.history[userID]
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.videoID
	}
	return out, nil
}
