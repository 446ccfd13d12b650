package views

import (
	"cmp"
	"context"

	"github.com/vidshare/backend/internal/logging"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/pipeline"
)

type playlistRow struct {
	playlist models.Playlist
	owner    *models.User
	videos   []models.Video

	totalVideos int
	totalViews  int64
}

// joinMembers attaches the member videos that still exist, in playlist order.
func (c *Composer) joinMembers() pipeline.Stage[playlistRow] {
	return pipeline.Join("videos",
		func(r playlistRow) []string { return r.playlist.VideoIDs },
		c.videos(),
		func(r *playlistRow, rel map[string][]models.Video) {
			r.videos = r.videos[:0]
			for _, id := range r.playlist.VideoIDs {
				if v, ok := pipeline.First(rel[id]); ok {
					r.videos = append(r.videos, v)
				}
			}
		})
}

func sumTotals(r *playlistRow) {
	r.totalVideos = len(r.videos)
	r.totalViews = 0
	for _, v := range r.videos {
		r.totalViews += v.Views
	}
}

// UserPlaylists lists a user's playlists with member totals, most recently
// updated first.
func (c *Composer) UserPlaylists(ctx context.Context, userID string) ([]PlaylistSummary, error) {
	ctx, span := logging.StartSpan(ctx, "views.user_playlists")
	defer span.End()

	if _, err := c.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	playlists, err := c.src.PlaylistsByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows := make([]playlistRow, len(playlists))
	for i, p := range playlists {
		rows[i] = playlistRow{playlist: p}
	}

	rows, err = pipeline.New(
		c.joinMembers(),
		pipeline.Derive("totals", sumTotals),
		pipeline.Sort("recently updated", func(a, b playlistRow) int {
			if c := b.playlist.UpdatedAt.Compare(a.playlist.UpdatedAt); c != 0 {
				return c
			}
			return cmp.Compare(a.playlist.ID, b.playlist.ID)
		}),
	).Run(ctx, rows)
	if err != nil {
		span.Fail(err)
		return nil, err
	}

	return pipeline.Project(rows, func(r playlistRow) PlaylistSummary {
		return PlaylistSummary{
			ID:          r.playlist.ID,
			Name:        r.playlist.Name,
			Description: r.playlist.Description,
			TotalVideos: r.totalVideos,
			TotalViews:  r.totalViews,
			UpdatedAt:   r.playlist.UpdatedAt,
		}
	}), nil
}

// PlaylistDetail composes a playlist with its published members and owner.
// Totals are computed over the published members only.
func (c *Composer) PlaylistDetail(ctx context.Context, playlistID string) (PlaylistDetail, error) {
	ctx, span := logging.StartSpan(ctx, "views.playlist_detail")
	defer span.End()

	playlist, err := c.src.PlaylistByID(ctx, playlistID)
	if err != nil {
		return PlaylistDetail{}, notFound(err, "playlist not found")
	}

	rows, err := pipeline.New(
		c.joinMembers(),
		pipeline.Derive("published members", func(r *playlistRow) {
			published := r.videos[:0]
			for _, v := range r.videos {
				if v.IsPublished {
					published = append(published, v)
				}
			}
			r.videos = published
		}),
		pipeline.Derive("totals", sumTotals),
		pipeline.Join("owner",
			func(r playlistRow) []string { return one(r.playlist.OwnerID) },
			c.users(),
			func(r *playlistRow, rel map[string][]models.User) {
				if u, ok := pipeline.First(rel[r.playlist.OwnerID]); ok {
					r.owner = &u
				}
			}),
	).Run(ctx, []playlistRow{{playlist: playlist}})
	if err != nil {
		span.Fail(err)
		return PlaylistDetail{}, err
	}

	r := rows[0]
	members := pipeline.Project(r.videos, func(v models.Video) PlaylistVideo {
		return PlaylistVideo{
			ID:           v.ID,
			Title:        v.Title,
			Description:  v.Description,
			VideoURL:     v.VideoFile.URL,
			ThumbnailURL: v.Thumbnail.URL,
			Duration:     v.Duration,
			Views:        v.Views,
			CreatedAt:    v.CreatedAt,
		}
	})
	return PlaylistDetail{
		ID:          r.playlist.ID,
		Name:        r.playlist.Name,
		Description: r.playlist.Description,
		CreatedAt:   r.playlist.CreatedAt,
		UpdatedAt:   r.playlist.UpdatedAt,
		TotalVideos: r.totalVideos,
		TotalViews:  r.totalViews,
		Owner:       summarize(r.owner),
		Videos:      members,
	}, nil
}
