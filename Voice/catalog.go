package Voice

import (
	"fmt"
	"net/http"

	"DentalOffice/Models"

	"github.com/gin-gonic/gin"
)

// GetServicesAndDentists lists the service catalog and the providers so
// the agent can offer concrete choices. Catalog data only, so no
// challenge token is required.
func GetServicesAndDentists(c *gin.Context) {
	var services []Models.DentalService
	if err := Models.DB.Order("id").Find(&services).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var dentists []Models.Dentist
	if err := Models.DB.Order("id").Find(&dentists).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	summary := fmt.Sprintf("We offer %d service(s) with %d dentist(s).", len(services), len(dentists))
	summary += "\nServices:"
	for _, service := range services {
		summary += fmt.Sprintf("\n- %s ($%.2f)", service.Name, service.Price)
	}
	summary += "\nDentists:"
	for _, dentist := range dentists {
		line := fmt.Sprintf("\n- %s", dentist.FullName())
		if dentist.Specialization != "" {
			line += fmt.Sprintf(", %s", dentist.Specialization)
		}
		summary += line
	}

	respond(c, summary, gin.H{
		"services": services,
		"dentists": dentists,
	})
}
