package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"legispuls/services"
)

// ListActsHandler godoc
// @Summary      List legislative acts
// @Description  List acts of a publisher and year from the Sejm ELI API
// @Tags         acts
// @Param        publisher  query  string  false  "Publisher code (default DU)"
// @Param        year       query  int     false  "Year (default current)"
// @Param        page       query  int     false  "Page number (1-based)"
// @Param        page_size  query  int     false  "Page size (<=100)"
// @Produce      json
// @Success      200  {object}  services.ActListing
// @Router       /acts [get]
func ListActsHandler(svc *services.ActService) gin.HandlerFunc {
	return func(c *gin.Context) {
		publisher := c.DefaultQuery("publisher", "DU")
		year, _ := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(time.Now().Year())))
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

		listing, err := svc.List(c.Request.Context(), publisher, year, page, pageSize)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, listing)
	}
}

// GetActHandler godoc
// @Summary      Get one legislative act
// @Description  Act details with extracted plain text when available
// @Tags         acts
// @Param        publisher  path  string  true  "Publisher code"
// @Param        year       path  int     true  "Year"
// @Param        pos        path  int     true  "Position"
// @Produce      json
// @Success      200  {object}  services.ActDetailsDTO
// @Failure      404  {object}  map[string]string
// @Router       /acts/{publisher}/{year}/{pos} [get]
func GetActHandler(svc *services.ActService) gin.HandlerFunc {
	return func(c *gin.Context) {
		year, err := strconv.Atoi(c.Param("year"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year must be a number", "kind": services.KindValidation})
			return
		}
		pos, err := strconv.Atoi(c.Param("pos"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "pos must be a number", "kind": services.KindValidation})
			return
		}

		details, err := svc.Get(c.Request.Context(), c.Param("publisher"), year, pos)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, details)
	}
}
