package http

import (
	"github.com/gin-gonic/gin"

	"github.com/layer-3/walletgate/ports"
	"github.com/layer-3/walletgate/service"
)

// SetupRouter wires the gin router.
func SetupRouter(auth *service.AuthService, users *service.UserService, tokenizer ports.Tokenizer) *gin.Engine {
	router := gin.Default()

	handlers := NewHandlers(auth, users)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/challenge", handlers.RequestChallenge)
		authGroup.POST("/verify", handlers.VerifySignature)
		authGroup.GET("/profile", AuthMiddleware(tokenizer, users), handlers.Profile)
	}

	userGroup := router.Group("/users")
	userGroup.Use(AuthMiddleware(tokenizer, users))
	{
		userGroup.PATCH("/profile", handlers.UpdateProfile)
	}

	return router
}
