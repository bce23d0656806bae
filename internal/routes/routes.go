package routes

import (
	"github.com/sinatle/donation/internal/handler"
	"github.com/sinatle/donation/internal/middleware"
	"github.com/sinatle/donation/internal/router"
	"github.com/sinatle/donation/internal/service"
)

// Deps contains the handlers and services the API routes wire together.
type Deps struct {
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Subscriptions *handler.SubscriptionHandler
	Payments      *handler.PaymentHandler
	Webhooks      *handler.WebhookHandler
	Health        *handler.HealthHandler

	// AuthService backs the bearer-token middleware on protected routes.
	AuthService service.AuthService
}

// Register registers all API routes.
//
// The webhook route carries no authentication middleware: the handler
// authenticates each callback by its payload signature.
func Register(r *router.Router, deps Deps) {
	r.Get("/healthz", deps.Health.Healthz)

	r.Post("/webhook/flitt/callback", deps.Webhooks.HandleFlittCallback)

	r.Post("/auth/otp", deps.Auth.SendOtp)
	r.Post("/auth/login", deps.Auth.Login)

	r.Post("/subscriptions", deps.Subscriptions.Subscribe)
	r.Post("/payments", deps.Payments.Create)

	protected := r.Group(middleware.RequireAuth(deps.AuthService))
	protected.Get("/users/me", deps.Users.Me)
	protected.Put("/users/me", deps.Users.UpdateMe)
	protected.Put("/subscriptions/{id}", deps.Subscriptions.Edit)
	protected.Delete("/subscriptions/{id}", deps.Subscriptions.Unsubscribe)
}
