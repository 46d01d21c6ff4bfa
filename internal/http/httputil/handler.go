package httputil

import "github.com/gin-gonic/gin"

// IHttpHandler is implemented by every endpoint group; the HTTP service
// mounts each handler under its Root() path.
type IHttpHandler interface {
	Root() string
	SetRoutes(pub *gin.RouterGroup, priv *gin.RouterGroup, admin *gin.RouterGroup)
}
