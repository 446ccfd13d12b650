package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vidshare/backend/internal/apperr"
	"github.com/vidshare/backend/internal/middleware"
	"github.com/vidshare/backend/internal/response"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserService
	Videos        VideoService
	Comments      CommentService
	Likes         LikeService
	Subscriptions SubscriptionService
	Tweets        TweetService
	Playlists     PlaylistService
	Dashboard     DashboardService

	Authenticator middleware.Authenticator
	Database      HealthChecker

	CORSOrigin     string
	SecureCookies  bool
	MaxUploadBytes int64
}

// NewRouter wires HTTP handlers and middleware into a chi router.
func NewRouter(deps Dependencies, logger *slog.Logger) http.Handler {
	health := HealthHandler{Database: deps.Database}
	users := UserHandler{Users: deps.Users, SecureCookies: deps.SecureCookies, MaxUploadBytes: deps.MaxUploadBytes}
	videos := VideoHandler{Videos: deps.Videos, MaxUploadBytes: deps.MaxUploadBytes}
	comments := CommentHandler{Comments: deps.Comments}
	likes := LikeHandler{Likes: deps.Likes}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions}
	tweets := TweetHandler{Tweets: deps.Tweets}
	playlists := PlaylistHandler{Playlists: deps.Playlists}
	dashboard := DashboardHandler{Dashboard: deps.Dashboard}

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(deps.CORSOrigin))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(r.Context(), w, apperr.NotFound("route not found"))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthcheck", health.Handle)

		r.Post("/users/register", users.Register)
		r.Post("/users/login", users.Login)
		r.Post("/users/refresh-token", users.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(deps.Authenticator))

			r.Route("/users", func(r chi.Router) {
				r.Post("/logout", users.Logout)
				r.Post("/change-password", users.ChangePassword)
				r.Get("/current-user", users.CurrentUser)
				r.Patch("/update-account", users.UpdateAccount)
				r.Patch("/update-avatar", users.UpdateAvatar)
				r.Patch("/update-coverImage", users.UpdateCoverImage)
				r.Get("/c/{username}", users.ChannelProfile)
				r.Get("/history", users.WatchHistory)
			})

			r.Route("/video", func(r chi.Router) {
				r.Get("/", videos.Feed)
				r.Post("/create", videos.Publish)
				r.Get("/{videoId}", videos.Detail)
				r.Patch("/{videoId}", videos.Update)
				r.Delete("/{videoId}", videos.Delete)
				r.Patch("/toggle/publish/{videoId}", videos.TogglePublish)
			})

			r.Route("/comment", func(r chi.Router) {
				r.Get("/{videoId}", comments.List)
				r.Post("/{videoId}", comments.Add)
				r.Patch("/c/{commentId}", comments.Update)
				r.Delete("/c/{commentId}", comments.Delete)
			})

			r.Route("/like", func(r chi.Router) {
				r.Post("/toggle/v/{videoId}", likes.ToggleVideo)
				r.Post("/toggle/c/{commentId}", likes.ToggleComment)
				r.Post("/toggle/t/{tweetId}", likes.ToggleTweet)
				r.Get("/videos", likes.LikedVideos)
			})

			r.Route("/subscription", func(r chi.Router) {
				r.Post("/c/{channelId}", subscriptions.Toggle)
				r.Get("/c/{channelId}", subscriptions.Subscribers)
				r.Get("/u/{subscriberId}", subscriptions.SubscribedChannels)
			})

			r.Route("/tweet", func(r chi.Router) {
				r.Post("/create", tweets.Create)
				r.Get("/user/{userId}", tweets.UserTweets)
				r.Patch("/{tweetId}", tweets.Update)
				r.Delete("/{tweetId}", tweets.Delete)
			})

			r.Route("/playlist", func(r chi.Router) {
				r.Post("/create", playlists.Create)
				r.Get("/user/{userId}", playlists.UserPlaylists)
				r.Get("/{playlistId}", playlists.Detail)
				r.Patch("/{playlistId}", playlists.Update)
				r.Delete("/{playlistId}", playlists.Delete)
				r.Patch("/add/{videoId}/{playlistId}", playlists.AddVideo)
				r.Patch("/remove/{videoId}/{playlistId}", playlists.RemoveVideo)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/stats", dashboard.Stats)
				r.Get("/videos", dashboard.Videos)
			})
		})
	})

	return r
}
