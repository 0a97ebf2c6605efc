package session

import (
	"fmt"

	"yolo-lab-api/constants"
	"yolo-lab-api/coord"
	"yolo-lab-api/editor"

	"github.com/gin-gonic/gin"
)

type pointerRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button string  `json:"button"`
}

func (req *pointerRequest) Point() coord.Point {
	return coord.Point{X: req.X, Y: req.Y}
}

func (req *pointerRequest) EditorButton() (editor.Button, error) {
	switch req.Button {
	case "", constants.ButtonPrimary:
		return editor.ButtonPrimary, nil
	case constants.ButtonSecondary:
		return editor.ButtonSecondary, nil
	}
	return 0, fmt.Errorf("unknown button %q", req.Button)
}

func (app *SessionAPI) bindPointer(c *gin.Context) (*Session, pointerRequest, bool) {
	s, ok := app.session(c)
	if !ok {
		return nil, pointerRequest{}, false
	}
	var req pointerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		app.badRequest(c, err)
		return nil, pointerRequest{}, false
	}
	return s, req, true
}

// PointerDown answers a rejected keypoint with 409 and the unchanged state.
func (app *SessionAPI) PointerDown(c *gin.Context) {
	s, req, ok := app.bindPointer(c)
	if !ok {
		return
	}
	button, err := req.EditorButton()
	if err != nil {
		app.badRequest(c, err)
		return
	}
	res, err := s.PointerDown(req.Point(), button)
	app.reply(c, res, err)
}

func (app *SessionAPI) PointerMove(c *gin.Context) {
	s, req, ok := app.bindPointer(c)
	if !ok {
		return
	}
	res, err := s.PointerMove(req.Point())
	app.reply(c, res, err)
}

func (app *SessionAPI) PointerUp(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	res, err := s.PointerUp()
	app.reply(c, res, err)
}

func (app *SessionAPI) PointerLeave(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	res, err := s.PointerLeave()
	app.reply(c, res, err)
}

func (app *SessionAPI) Skip(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	var mods editor.Modifiers
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&mods); err != nil {
			app.badRequest(c, err)
			return
		}
	}
	res, err := s.Skip(mods)
	app.reply(c, res, err)
}
