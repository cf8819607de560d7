package web

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type SwaggerServer struct {
	enabled bool
}

func NewSwaggerServer(enabled bool) *SwaggerServer {
	return &SwaggerServer{enabled: enabled}
}

// RegisterRoutes mounts the Swagger UI for the document registered by the
// docs package.
func (s *SwaggerServer) RegisterRoutes(router gin.IRouter) {
	if !s.enabled {
		return
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.DocExpansion("list"),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))
}
