package Voice

import (
	"net/http"

	"DentalOffice/Models"
	"DentalOffice/Sessions"

	"github.com/gin-gonic/gin"
)

// Every voice endpoint answers 200 with a natural-language summary the
// agent can read out plus a structured payload. Recoverable problems
// (missing token, fuzzy lookups, validation) are summaries too, never
// error statuses; the agent has to be able to relay them.
func respond(c *gin.Context, summary string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	c.JSON(http.StatusOK, gin.H{"response": summary, "data": data})
}

const reverifyPrompt = "Please verify your identity first by providing the 6-digit code sent to your phone."

// authorize resolves a challenge token to the verified patient snapshot.
// A missing or unknown token short-circuits with a re-verification
// prompt.
func authorize(c *gin.Context, challengeToken string) (Models.Patient, bool) {
	patient, err := Sessions.Store.Authorize(challengeToken)
	if err != nil {
		respond(c, reverifyPrompt, nil)
		return Models.Patient{}, false
	}
	return patient, true
}
