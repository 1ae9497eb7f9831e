package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing

    "github.com/sendtags/checkout/internal/handler"    // import the handlers that implement business logic
    "github.com/sendtags/checkout/internal/middleware" // import middleware for JWT auth, rate limiting and caching
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    // Map the GET request at path "/healthz" to the Health handler.  Load
    // balancers and monitoring systems use it to verify the service is up.
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    // Operations that do not require an existing session: register, login and
    // the two refresh flavours.  Each handler generates or exchanges tokens.
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    // Refresh rotates the refresh token; refresh-access issues a new access
    // token without rotating it.
    g.POST("/refresh", a.Refresh)
    g.POST("/refresh-access", a.RefreshAccess)
    // Logout accepts a JSON body containing a `refresh_token` and invalidates
    // it.  It does not require JWT authentication.
    g.POST("/logout", a.Logout)

    // Routes that require a valid access token.  The JWTAuth middleware runs
    // before every handler registered on this group.
    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(jwtSecret))
    auth.GET("/me", a.Me)
}

// RegisterTags registers the tag registration and checkout routes.  All of
// them except the availability check require a valid access token; the
// referral capture middleware runs on the protected group so a referral code
// arriving via header or cookie is visible to the confirm handler.
func RegisterTags(e *echo.Echo, t *handler.TagHandler, jwtSecret string, limiter, cache echo.MiddlewareFunc) {
    // Public availability check for guests browsing names before signing up.
    // It sits behind the response cache because the answer changes rarely and
    // the endpoint is the hottest unauthenticated read.
    e.GET("/v1/tags/:name/availability", t.Availability, cache)

    auth := e.Group("/v1/tags")
    auth.Use(middleware.JWTAuth(jwtSecret))
    auth.Use(middleware.ReferralCapture())
    auth.Use(limiter)
    auth.POST("", t.Create)
    auth.GET("", t.List)
    auth.GET("/quote", t.Quote)
    // Confirm blocks for up to the receipt retry budget while the indexer
    // catches up, so it is the main reason the rate limiter exists.
    auth.POST("/confirm", t.Confirm)
}
