package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Guyuepp/placevote/domain"
	"github.com/Guyuepp/placevote/internal/rest/request"
	"github.com/Guyuepp/placevote/internal/rest/response"
)

// VoteHandler represent the httphandler for the vote ledger
type VoteHandler struct {
	Service domain.VoteUsecase
}

func NewVoteHandler(svc domain.VoteUsecase) *VoteHandler {
	return &VoteHandler{
		Service: svc,
	}
}

// targetFromPath reads the :kind and :id path params.
func targetFromPath(c *gin.Context) (domain.TargetRef, error) {
	kind, err := domain.ParseTargetKind(c.Param("kind"))
	if err != nil {
		return domain.TargetRef{}, err
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return domain.TargetRef{}, domain.ErrTargetNotFound
	}
	return domain.TargetRef{Kind: kind, ID: id}, nil
}

// Cast creates, flips or toggles off the caller's vote
func (h *VoteHandler) Cast(c *gin.Context) {
	uid, err := userID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	var req request.Vote
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		return
	}
	ref, d, err := req.ToDomain()
	if err != nil {
		abortWithError(c, err)
		return
	}

	res, err := h.Service.Cast(c.Request.Context(), uid, ref, d)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewVoteFromDomain(res))
}

// Remove deletes the caller's vote if there is one
func (h *VoteHandler) Remove(c *gin.Context) {
	uid, err := userID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	ref, err := targetFromPath(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	res, err := h.Service.Remove(c.Request.Context(), uid, ref)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewVoteFromDomain(res))
}

// State returns the target's tally together with the caller's vote
func (h *VoteHandler) State(c *gin.Context) {
	uid, err := userID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	ref, err := targetFromPath(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	res, err := h.Service.State(c.Request.Context(), uid, ref)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewVoteFromDomain(res))
}
