package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Guyuepp/placevote/domain"
	"github.com/Guyuepp/placevote/internal/rest/request"
	"github.com/Guyuepp/placevote/internal/rest/response"
)

// CollectionHandler represent the httphandler for curated collections
type CollectionHandler struct {
	Service domain.CatalogueUsecase
}

func NewCollectionHandler(svc domain.CatalogueUsecase) *CollectionHandler {
	return &CollectionHandler{
		Service: svc,
	}
}

// Store will store the collection by given request body
func (h *CollectionHandler) Store(c *gin.Context) {
	var req request.Collection
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		return
	}

	col, err := h.Service.CreateCollection(c.Request.Context(), req.ToDomain())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.NewCollectionFromDomain(&col))
}
