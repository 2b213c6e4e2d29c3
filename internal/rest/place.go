package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Guyuepp/placevote/domain"
	"github.com/Guyuepp/placevote/internal/rest/request"
	"github.com/Guyuepp/placevote/internal/rest/response"
)

// PlaceHandler represent the httphandler for place identity and ingestion
type PlaceHandler struct {
	Service domain.IdentityUsecase
}

func NewPlaceHandler(svc domain.IdentityUsecase) *PlaceHandler {
	return &PlaceHandler{
		Service: svc,
	}
}

// Resolve answers with the existing place a candidate most likely is, or null
func (h *PlaceHandler) Resolve(c *gin.Context) {
	var req request.Candidate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		return
	}

	match, err := h.Service.Resolve(c.Request.Context(), req.ToDomain())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, match)
}

// Ingest reuses a matching place or creates a new one
func (h *PlaceHandler) Ingest(c *gin.Context) {
	var req request.Place
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		return
	}

	res, err := h.Service.Ingest(c.Request.Context(), req.ToDomain(), req.Category)
	if err != nil {
		abortWithError(c, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	c.JSON(status, response.NewIngestFromDomain(res))
}
