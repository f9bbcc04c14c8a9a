// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"homecall/internal/http/handlers"
	"homecall/internal/http/middleware"
	"homecall/internal/infra"
	"homecall/internal/modules/address"
	"homecall/internal/modules/capability"
	"homecall/internal/modules/dispatch"
	"homecall/internal/modules/geo"
	"homecall/internal/modules/history"
	"homecall/internal/modules/order"
	"homecall/internal/modules/provider"
	"homecall/internal/modules/support"
	"homecall/internal/modules/token"
)

type RouterDeps struct {
	Dispatch      *dispatch.Service
	History       *history.Service
	Orders        *order.Store
	Addresses     *address.Store
	Geo           *geo.Store
	Capabilities  *capability.Store
	Profiles      *provider.Store
	Tokens        *token.Store
	Support       *support.Assistant
	Verifier      infra.TokenVerifier
	InternalToken string
}

func NewRouter(deps RouterDeps) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	orderHandler := handlers.NewOrderHandler(deps.Dispatch, deps.Orders)
	historyHandler := handlers.NewHistoryHandler(deps.History)
	providerHandler := handlers.NewProviderHandler(deps.Geo, deps.Capabilities, deps.Profiles)
	addressHandler := handlers.NewAddressHandler(deps.Addresses)
	tokenHandler := handlers.NewTokenHandler(deps.Tokens)
	supportHandler := handlers.NewSupportHandler(deps.Support)

	api := r.Group("/api/v1", middleware.Auth(deps.Verifier))

	api.POST("/order/create-order", orderHandler.Create)
	api.GET("/order/:userId", orderHandler.ListByUser)

	api.POST("/order-history/accept-order", historyHandler.Accept)
	api.POST("/order-history/verify-start-order", historyHandler.VerifyStart)
	api.POST("/order-history/order-completed-generateotp", historyHandler.GenerateCompletionOTP)
	api.POST("/order-history/order-completed-verify", historyHandler.VerifyComplete)
	api.POST("/order-history/cancel-order", historyHandler.Cancel)
	api.POST("/order-history/work-image", historyHandler.AttachWorkImage)
	api.GET("/order-history/:providerId", historyHandler.ListByProvider)
	api.GET("/order-history/user/:userId", historyHandler.ListByUser)

	api.PUT("/providers/:id/location", providerHandler.UpdateLocation)
	api.DELETE("/providers/:id/location", providerHandler.RemoveLocation)
	api.PUT("/providers/:id/capabilities", providerHandler.ReplaceCapabilities)
	api.PUT("/providers/:id/profile", providerHandler.UpsertProfile)
	api.GET("/providers/:id/profile", providerHandler.GetProfile)

	api.POST("/addresses", addressHandler.Create)
	api.GET("/addresses/:id", addressHandler.Get)

	api.POST("/tokens", tokenHandler.Register)
	api.DELETE("/tokens/:ownerId", tokenHandler.Delete)

	api.POST("/support/chat", supportHandler.Chat)

	// Trusted callers only: the payment webhook and admin purge.
	internal := r.Group("/internal", middleware.InternalToken(deps.InternalToken))
	internal.POST("/order-history/pay-order", historyHandler.Pay)
	internal.DELETE("/orders/:id", orderHandler.Delete)
	internal.DELETE("/orders", orderHandler.DeleteAll)

	return r
}
