package Controllers

import (
	"net/http"

	"DentalOffice/Sessions"

	"github.com/gin-gonic/gin"
)

// ClearSession is the administrative escape hatch for verification state:
// challenge tokens never expire on their own, so revoking one (or
// dropping a stuck verification session) happens here.
func ClearSession(c *gin.Context) {
	var input struct {
		SessionID      string `json:"session_id"`
		ChallengeToken string `json:"challenge_token"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.SessionID == "" && input.ChallengeToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id or challenge_token required"})
		return
	}

	if input.SessionID != "" {
		Sessions.Store.ClearSession(input.SessionID)
	}
	if input.ChallengeToken != "" {
		Sessions.Store.RevokeToken(input.ChallengeToken)
	}

	c.JSON(http.StatusOK, gin.H{"message": "cleared"})
}
