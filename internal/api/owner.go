package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OwnerCookie identifies a browser across requests; bookmarks are scoped to it.
const OwnerCookie = "contentdesk_client"

const (
	ownerKey      = "owner"
	ownerKnownKey = "owner_known"
)

// ownerMiddleware reads the client cookie or issues a new one.
func ownerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, err := c.Cookie(OwnerCookie)
		known := err == nil && uuid.Validate(owner) == nil
		if !known {
			owner = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(OwnerCookie, owner, 365*24*60*60, "/", "", false, true)
		}
		c.Set(ownerKey, owner)
		c.Set(ownerKnownKey, known)
		c.Next()
	}
}

func ownerOf(c *gin.Context) string {
	return c.GetString(ownerKey)
}

// ownerKnown reports whether the request carried a valid client cookie. A
// freshly issued owner has no bookmarks yet.
func ownerKnown(c *gin.Context) bool {
	return c.GetBool(ownerKnownKey)
}
