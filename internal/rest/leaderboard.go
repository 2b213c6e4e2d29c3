package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Guyuepp/placevote/domain"
)

// LeaderboardHandler represent the httphandler for leaderboards
type LeaderboardHandler struct {
	Service domain.RankUsecase
}

func NewLeaderboardHandler(svc domain.RankUsecase) *LeaderboardHandler {
	return &LeaderboardHandler{
		Service: svc,
	}
}

// Fetch returns the ranked targets of one kind after filtering
func (h *LeaderboardHandler) Fetch(c *gin.Context) {
	kind, err := domain.ParseTargetKind(c.Query("target_kind"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	// the service applies the default and the upper bound
	var limit int
	if s := c.Query("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil {
			logrus.Error("Invalid param 'limit'")
		}
	}

	entries, err := h.Service.Leaderboard(c.Request.Context(), domain.LeaderboardQuery{
		Kind: kind,
		Filter: domain.Filter{
			Location: c.Query("location"),
			Category: c.Query("category"),
		},
		Limit: limit,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
