package apiapp

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ThisIsMahim/Upp-campus/internal/config"
	authsvc "github.com/ThisIsMahim/Upp-campus/internal/services/auth"
	campusessvc "github.com/ThisIsMahim/Upp-campus/internal/services/campuses"
	friendssvc "github.com/ThisIsMahim/Upp-campus/internal/services/friends"
	mediasvc "github.com/ThisIsMahim/Upp-campus/internal/services/media"
	notifsvc "github.com/ThisIsMahim/Upp-campus/internal/services/notifications"
	postssvc "github.com/ThisIsMahim/Upp-campus/internal/services/posts"
	profilessvc "github.com/ThisIsMahim/Upp-campus/internal/services/profiles"
	"github.com/ThisIsMahim/Upp-campus/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService         *authsvc.Service
	ProfileService      *profilessvc.Service
	CampusService       *campusessvc.Service
	PostService         *postssvc.Service
	FriendService       *friendssvc.Service
	NotificationService *notifsvc.Service
	MediaService        *mediasvc.Service
	Logger              *zap.Logger
	Config              config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	healthHandler := handlers.NewHealthHandler()
	profileHandler := handlers.NewProfileHandler(deps.ProfileService)
	campusesHandler := handlers.NewCampusesHandler(deps.CampusService)
	postsHandler := handlers.NewPostsHandler(deps.PostService)
	friendsHandler := handlers.NewFriendsHandler(deps.FriendService)
	notificationsHandler := handlers.NewNotificationsHandler(deps.NotificationService)
	mediaHandler := handlers.NewMediaHandler(deps.MediaService)
	authMW := AuthMiddleware(deps.AuthService, deps.Logger)

	r.Get("/healthz", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.SignUp)
		r.Post("/signin", authHandler.SignIn)
		r.Post("/refresh", authHandler.Refresh)
		r.Get("/session", authHandler.Session)
		r.With(authMW).Post("/signout", authHandler.SignOut)
		r.With(authMW).Post("/signout_all", authHandler.SignOutAll)
	})

	r.Route("/me", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/profile", profileHandler.Me)
		r.Put("/profile", profileHandler.EnsureMe)
		r.Patch("/profile", profileHandler.UpdateMe)
	})

	r.Get("/campuses", campusesHandler.List)
	r.With(authMW).Post("/campuses", campusesHandler.Create)
	r.Get("/campuses/{campusID}", campusesHandler.Get)
	r.Get("/profiles/{username}", profileHandler.ByUsername)

	r.Route("/posts", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", postsHandler.Feed)
		r.Post("/", postsHandler.Create)
		r.Delete("/{postID}", postsHandler.Delete)
		r.Post("/{postID}/like", postsHandler.Like)
		r.Delete("/{postID}/like", postsHandler.Unlike)
		r.Get("/{postID}/comments", postsHandler.ListComments)
		r.Post("/{postID}/comments", postsHandler.AddComment)
	})
	r.With(authMW).Delete("/comments/{commentID}", postsHandler.DeleteComment)

	r.Route("/friends", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", friendsHandler.List)
		r.Delete("/{userID}", friendsHandler.Unfriend)
		r.Get("/requests", friendsHandler.ListPending)
		r.Post("/requests", friendsHandler.SendRequest)
		r.Post("/requests/{requestID}/accept", friendsHandler.Accept)
		r.Post("/requests/{requestID}/decline", friendsHandler.Decline)
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", notificationsHandler.List)
		r.Get("/unread_count", notificationsHandler.UnreadCount)
		r.Post("/read", notificationsHandler.MarkRead)
	})

	r.With(authMW).Post("/media/avatar", mediaHandler.UploadAvatar)
}
