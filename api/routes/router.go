package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heartlink/heartlink-backend/api/controllers"
	"github.com/heartlink/heartlink-backend/api/middleware"
	"github.com/heartlink/heartlink-backend/internal/auth"
	"github.com/heartlink/heartlink-backend/internal/circles"
	"github.com/heartlink/heartlink-backend/internal/engagement"
	"github.com/heartlink/heartlink-backend/internal/invitations"
	"github.com/heartlink/heartlink-backend/internal/memberships"
	"github.com/heartlink/heartlink-backend/internal/notifications"
	"github.com/heartlink/heartlink-backend/pkg/auth/session"
	"github.com/heartlink/heartlink-backend/pkg/config"
	"github.com/heartlink/heartlink-backend/pkg/db"
	"github.com/heartlink/heartlink-backend/pkg/enums"
	"github.com/heartlink/heartlink-backend/pkg/logger"
	"github.com/heartlink/heartlink-backend/pkg/redis"
)

// Services bundles the domain services the router exposes.
type Services struct {
	Auth          auth.Service
	Register      auth.RegisterService
	Circles       circles.Service
	Invitations   invitations.Service
	Memberships   memberships.Service
	Engagement    engagement.Service
	Notifications notifications.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(svcs.Register, svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(svcs.Auth, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Route("/circles", func(r chi.Router) {
			r.Post("/", controllers.CreateCircle(svcs.Circles, logg))
			r.Get("/", controllers.ListOwnedCircles(svcs.Circles, logg))

			r.Route("/{circleId}", func(r chi.Router) {
				r.Get("/", controllers.GetCircle(svcs.Circles, logg))
				r.Patch("/", controllers.UpdateCircle(svcs.Circles, logg))
				r.Delete("/", controllers.DeleteCircle(svcs.Circles, logg))

				r.Post("/invitations", controllers.CreateInvitation(svcs.Invitations, logg))

				r.Get("/members", controllers.ListCircleMembers(svcs.Memberships, logg))
				r.Delete("/members/{userId}", controllers.RemoveCircleMember(svcs.Memberships, logg))
				r.Patch("/name-preference", controllers.SetNamePreference(svcs.Memberships, logg))
				r.With(middleware.RequireRole(string(enums.SystemRoleAdmin), logg)).
					Post("/reconcile", controllers.ReconcileMemberCount(svcs.Memberships, logg))

				r.Post("/messages", controllers.PostCircleMessage(svcs.Engagement, logg))
				r.Get("/messages", controllers.ListCircleMessages(svcs.Engagement, logg))
				r.Post("/events", controllers.CreateCircleEvent(svcs.Engagement, logg))
				r.Get("/events", controllers.ListCircleEvents(svcs.Engagement, logg))
				r.Post("/events/{eventId}/rsvp", controllers.RSVPCircleEvent(svcs.Engagement, logg))
				r.Get("/activity", controllers.ListCircleActivity(svcs.Engagement, logg))
			})
		})

		r.Get("/my-circles", controllers.ListMyCircles(svcs.Circles, logg))

		r.Route("/circle-invitations", func(r chi.Router) {
			r.Get("/", controllers.ListMyInvitations(svcs.Invitations, logg))
			r.Patch("/{invitationId}/respond", controllers.RespondInvitation(svcs.Invitations, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
		})
	})

	return r
}
