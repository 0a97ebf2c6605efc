package session

import (
	"net/http"

	"yolo-lab-api/annotation"
	"yolo-lab-api/constants"
	"yolo-lab-api/coord"
	"yolo-lab-api/entities"
	"yolo-lab-api/utils"

	"github.com/gin-gonic/gin"
)

func (app *SessionAPI) FetchAnnotations(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	antns, err := s.Annotations()
	if err != nil {
		app.reply(c, nil, err)
		return
	}
	resp := entities.NewResponse()
	resp.Data = antns
	resp.Count = len(antns)
	c.JSON(http.StatusOK, resp)
}

// FetchDisplayAnnotations projects into display_w x display_h, or into the
// current viewport when those are absent.
func (app *SessionAPI) FetchDisplayAnnotations(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	display := coord.Size{
		W: float64(utils.QueryInt(c, constants.ParamDisplayW, 0)),
		H: float64(utils.QueryInt(c, constants.ParamDisplayH, 0)),
	}
	antns, err := s.DisplayAnnotations(display)
	if err != nil {
		app.reply(c, nil, err)
		return
	}
	resp := entities.NewResponse()
	resp.Data = antns
	resp.Count = len(antns)
	c.JSON(http.StatusOK, resp)
}

func (app *SessionAPI) ReplaceAnnotations(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	antns := make([]annotation.Annotation, 0)
	if err := c.ShouldBindJSON(&antns); err != nil {
		app.badRequest(c, err)
		return
	}
	if err := s.ReplaceAnnotations(antns); err != nil {
		app.reply(c, nil, err)
		return
	}
	app.reply(c, s.State(), nil)
}

func (app *SessionAPI) DeleteAnnotation(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	if err := s.DeleteAnnotation(c.Param(constants.ParamID)); err != nil {
		app.reply(c, nil, err)
		return
	}
	app.reply(c, s.State(), nil)
}
