package routes

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"lokroom_back_end/internal/handlers/admin"
	"lokroom_back_end/internal/handlers/booking"
	"lokroom_back_end/internal/handlers/listing"
	"lokroom_back_end/internal/handlers/message"
	"lokroom_back_end/internal/handlers/notification"
	"lokroom_back_end/internal/handlers/payement"
	"lokroom_back_end/internal/handlers/review"
	"lokroom_back_end/internal/handlers/user"
	"lokroom_back_end/internal/handlers/wallet"
	"lokroom_back_end/internal/middleware"
	"lokroom_back_end/internal/utils"
)

func RegisterRoutes(r *gin.Engine) {
	frontURL := os.Getenv("FRONTEND_URL")
	if frontURL == "" {
		frontURL = "http://localhost:3000"
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{frontURL, "https://lokroom.com", "https://www.lokroom.com"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")

	// ================== AUTH ==================
	auth := api.Group("/auth")
	{
		auth.POST("/register", middleware.RegisterRateLimit(), user.Register)
		auth.POST("/login", middleware.LoginRateLimit(), user.Login)
		auth.POST("/logout", middleware.AuthRequired(), user.Logout)
		auth.GET("/me", middleware.AuthRequired(), user.Me)
		auth.POST("/become-host", middleware.AuthRequired(), user.BecomeHost)

		// Mot de passe et compte
		auth.POST("/change-password", middleware.AuthRequired(), user.ChangePassword)
		auth.POST("/forgot-password", middleware.LoginRateLimit(), user.ForgotPassword)
		auth.POST("/reset-password", middleware.LoginRateLimit(), user.ResetPassword)
		auth.DELETE("/account", middleware.AuthRequired(), user.DeleteAccount)

		// OAuth web (goth)
		auth.GET("/oauth/:provider", user.BeginAuth)
		auth.GET("/oauth/:provider/callback", user.CallbackAuth)

		// OAuth mobile
		auth.POST("/google/mobile", user.GoogleMobileLogin)
		auth.POST("/google/exchange", user.GoogleMobileExchange)
		auth.POST("/facebook/mobile", user.FacebookMobileLogin)
	}

	// ================== ANNONCES ==================
	// /search et /my/... sont hors du groupe /listings : gin n'accepte pas un
	// segment statique à côté du paramètre :id
	api.GET("/search/listings", middleware.SearchRateLimit(), listing.SearchListings)

	listings := api.Group("/listings")
	{
		listings.GET("/:id", listing.GetListing)
		listings.GET("/:id/reviews", review.ListListingReviews)
		listings.GET("/:id/photos/signed", listing.GetListingPhotoURL)

		authed := listings.Group("", middleware.AuthRequired())
		{
			authed.POST("", middleware.RequireHost, listing.CreateListing)
			authed.PATCH("/:id", middleware.RequireHost, middleware.AuditPriceChanges(), listing.UpdateListing)
			authed.POST("/:id/photos", middleware.RequireHost, listing.UploadListingPhotos)
			authed.POST("/:id/publish", middleware.RequireHost, listing.PublishListing)
			authed.POST("/:id/unpublish", middleware.RequireHost, listing.UnpublishListing)
			authed.DELETE("/:id", listing.DeleteListing)
		}
	}
	api.GET("/my/listings", middleware.AuthRequired(), middleware.RequireHost, listing.ListMyListings)

	// ================== FAVORIS ==================
	favorites := api.Group("/favorites", middleware.AuthRequired())
	{
		favorites.GET("", user.GetFavorites)
		favorites.POST("", user.AddToFavorites)
		favorites.DELETE("/:listingId", user.RemoveFromFavorites)
	}

	// ================== NOTIFICATIONS ==================
	// PATCH sur la collection = tout marquer lu (gin refuse un segment
	// statique à côté de :id)
	notifications := api.Group("/notifications", middleware.AuthRequired())
	{
		notifications.GET("", notification.ListNotifications)
		notifications.PATCH("", notification.MarkAllNotificationsRead)
		notifications.POST("/:id/read", notification.MarkNotificationRead)
	}

	// ================== RÉSERVATIONS ==================
	api.POST("/pricing/preview", middleware.AuthRequired(), middleware.PreviewRateLimit(), booking.PreviewBooking)

	bookings := api.Group("/bookings", middleware.AuthRequired(), middleware.APIRateLimit())
	{
		bookings.POST("", booking.CreateBooking)
		bookings.GET("", booking.ListMyBookings)
		bookings.GET("/:id", booking.GetBooking)
		bookings.GET("/:id/cancellation-preview", booking.CancellationPreview)
		bookings.PATCH("/:id/cancel", booking.CancelPendingBooking)
		bookings.POST("/:id/refund",
			middleware.AuditCriticalActions(utils.ACTION_BOOKING_REFUND, utils.RESOURCE_BOOKING),
			booking.RefundBooking)

		// Paiement
		bookings.POST("/:id/pay", payement.PayBooking)

		// Caution (posée sur la réservation, gérée ensuite par deposit_id)
		bookings.POST("/:id/deposit/hold",
			middleware.AuditCriticalActions(utils.ACTION_DEPOSIT_HOLD, utils.RESOURCE_DEPOSIT),
			payement.HoldDeposit)

		// Avis et messagerie
		bookings.POST("/:id/review", review.CreateReview)
		bookings.POST("/:id/conversation", message.StartConversation)
	}

	// ================== CAUTIONS ==================
	deposits := api.Group("/deposits", middleware.AuthRequired(), middleware.RequireHost)
	{
		deposits.POST("/:id/capture",
			middleware.AuditCriticalActions(utils.ACTION_DEPOSIT_CAPTURE, utils.RESOURCE_DEPOSIT),
			payement.CaptureDeposit)
		deposits.POST("/:id/release",
			middleware.AuditCriticalActions(utils.ACTION_DEPOSIT_RELEASE, utils.RESOURCE_DEPOSIT),
			payement.ReleaseDeposit)
		deposits.POST("/:id/photos", payement.UploadDamagePhotos)
	}

	// Webhook Stripe : pas d'auth, signature vérifiée dans le handler
	api.POST("/stripe/webhook", payement.StripeWebhook)

	// ================== ESPACE HÔTE ==================
	host := api.Group("/host", middleware.AuthRequired(), middleware.RequireHost)
	{
		host.GET("/bookings", booking.ListHostBookings)
		host.GET("/wallet", wallet.GetWallet)
		host.GET("/wallet/ledger", wallet.ListWalletEntries)
		host.POST("/stripe/payout-link", wallet.GetPayoutLink)
	}

	// ================== MESSAGERIE ==================
	conversations := api.Group("/conversations", middleware.AuthRequired())
	{
		conversations.GET("", message.ListConversations)
		conversations.GET("/:id/messages", message.ListMessages)
		conversations.POST("/:id/messages", message.SendMessage)
		conversations.GET("/:id/ws", message.ConversationWebSocket)
	}
	api.GET("/messages/inbox/ws", middleware.AuthRequired(), message.InboxWebSocket)

	// ================== ADMIN ==================
	adminGroup := api.Group("/admin", middleware.AuthRequired(), middleware.RequireAdmin)
	{
		adminGroup.GET("/stats", admin.GetPlatformStats)
		adminGroup.POST("/deposits/expire", payement.ExpireDeposits)
		adminGroup.GET("/audit", admin.GetAuditLogs)
		adminGroup.GET("/audit/:resource/:resource_id", admin.GetAuditLogsByResource)
		adminGroup.GET("/listings/:id/bookings", admin.ListListingBookings)
		adminGroup.POST("/bookings/:id/force-cancel",
			middleware.AuditCriticalActions(utils.ACTION_BOOKING_CANCEL, utils.RESOURCE_BOOKING),
			admin.ForceCancelBooking)
		adminGroup.POST("/users/:user_id/ban", admin.BanUser)
		adminGroup.POST("/users/:user_id/unban", admin.UnbanUser)
		adminGroup.PATCH("/users/:user_id/role",
			middleware.AuditCriticalActions(utils.ACTION_USER_UPDATE, utils.RESOURCE_USER),
			admin.SetUserRole)
	}

	// Santé
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
