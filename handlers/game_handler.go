package handlers

import (
	"errors"
	"net/http"

	"imposter/models"
	"imposter/services"

	"github.com/gin-gonic/gin"
)

type GameHandler struct {
	game *services.GameService
}

func NewGameHandler(game *services.GameService) *GameHandler {
	return &GameHandler{game: game}
}

// GetRoom serves the public room summary a join screen needs: no
// roles, no secret word, no votes.
func (h *GameHandler) GetRoom(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room code required"})
		return
	}

	summary, err := h.game.Summary(code)
	if err != nil {
		if errors.Is(err, models.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}
