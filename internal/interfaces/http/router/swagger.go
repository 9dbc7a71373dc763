package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterSwagger serves the registered API documentation and its UI
// under /swagger. guard runs first and may abort the request.
func RegisterSwagger(engine *gin.Engine, guard gin.HandlerFunc) {
	engine.GET("/swagger/*any", guard, ginSwagger.WrapHandler(swaggerFiles.Handler))
}
