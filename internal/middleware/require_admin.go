package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin refuse tout appelant sans rôle "admin" dans le contexte.
// À monter derrière AuthRequired, qui pose le rôle depuis le token : le
// back-office n'a qu'un seul compte, mais la garde reste explicite.
func RequireAdmin(c *gin.Context) {
	if role, ok := c.Get("role"); !ok || role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès réservé aux administrateurs"})
		c.Abort()
		return
	}
	c.Next()
}
