package session

import (
	"errors"
	"net/http"
	"strconv"

	"yolo-lab-api/constants"
	"yolo-lab-api/entities"

	"github.com/gin-gonic/gin"
)

func (app *SessionAPI) FetchClasses(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	resp := entities.NewResponse()
	classes := s.Classes()
	resp.Data = classes
	resp.Count = len(classes)
	c.JSON(http.StatusOK, resp)
}

type classRequest struct {
	Name  string `json:"name" binding:"required"`
	Style string `json:"style"`
}

func (app *SessionAPI) CreateClass(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	var req classRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		app.badRequest(c, err)
		return
	}
	class, err := s.AddClass(req.Name, req.Style)
	app.reply(c, class, err)
}

func classID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param(constants.ParamID))
	if err != nil {
		return 0, errors.New("class id must be an integer")
	}
	return id, nil
}

func (app *SessionAPI) RenameClass(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	id, err := classID(c)
	if err != nil {
		app.badRequest(c, err)
		return
	}
	var req classRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		app.badRequest(c, err)
		return
	}
	class, err := s.RenameClass(id, req.Name)
	app.reply(c, class, err)
}

func (app *SessionAPI) DeleteClass(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	id, err := classID(c)
	if err != nil {
		app.badRequest(c, err)
		return
	}
	app.reply(c, nil, s.DeleteClass(id))
}

func (app *SessionAPI) SelectClass(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	id, err := classID(c)
	if err != nil {
		app.badRequest(c, err)
		return
	}
	class, err := s.SelectClass(id)
	app.reply(c, class, err)
}
