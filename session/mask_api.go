package session

import (
	"bytes"
	"io/ioutil"
	"net/http"

	"yolo-lab-api/constants"
	"yolo-lab-api/coord"
	"yolo-lab-api/mask"

	"github.com/gin-gonic/gin"
)

type strokeRequest struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Erase bool    `json:"erase"`
}

func (app *SessionAPI) bindStroke(c *gin.Context) (*Session, strokeRequest, bool) {
	s, ok := app.session(c)
	if !ok {
		return nil, strokeRequest{}, false
	}
	var req strokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		app.badRequest(c, err)
		return nil, strokeRequest{}, false
	}
	return s, req, true
}

func (app *SessionAPI) StrokeStart(c *gin.Context) {
	s, req, ok := app.bindStroke(c)
	if !ok {
		return
	}
	mode := mask.ModePaint
	if req.Erase {
		mode = mask.ModeErase
	}
	status, err := s.StrokeStart(coord.Point{X: req.X, Y: req.Y}, mode)
	app.reply(c, status, err)
}

func (app *SessionAPI) StrokeMove(c *gin.Context) {
	s, req, ok := app.bindStroke(c)
	if !ok {
		return
	}
	status, err := s.StrokeMove(coord.Point{X: req.X, Y: req.Y})
	app.reply(c, status, err)
}

func (app *SessionAPI) StrokeEnd(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	status, err := s.StrokeEnd()
	app.reply(c, status, err)
}

func (app *SessionAPI) StrokeLeave(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	status, err := s.StrokeLeave()
	app.reply(c, status, err)
}

type brushResult struct {
	Visible bool       `json:"visible"`
	Brush   mask.Brush `json:"brush"`
}

func (app *SessionAPI) BrushPreview(c *gin.Context) {
	s, req, ok := app.bindStroke(c)
	if !ok {
		return
	}
	brush, visible, err := s.BrushPreview(coord.Point{X: req.X, Y: req.Y})
	app.reply(c, brushResult{Visible: visible, Brush: brush}, err)
}

type radiusRequest struct {
	Radius float64 `json:"radius" binding:"required,gt=0"`
}

func (app *SessionAPI) SetBrushRadius(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	var req radiusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		app.badRequest(c, err)
		return
	}
	app.reply(c, s.SetBrushRadius(req.Radius), nil)
}

func (app *SessionAPI) ClearMask(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	app.reply(c, nil, s.ClearMask())
}

func (app *SessionAPI) SaveBaseMask(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	app.reply(c, nil, s.SaveBaseMask())
}

func (app *SessionAPI) ClearBaseMask(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	app.reply(c, nil, s.ClearBaseMask())
}

func (app *SessionAPI) RestoreBaseMask(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	app.reply(c, nil, s.RestoreBaseMask())
}

func (app *SessionAPI) DownloadMask(c *gin.Context) {
	app.downloadMask(c, false)
}

func (app *SessionAPI) DownloadBaseMask(c *gin.Context) {
	app.downloadMask(c, true)
}

// downloadMask writes the mask as PNG, or lossless WebP with format=webp.
func (app *SessionAPI) downloadMask(c *gin.Context, base bool) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	format := c.DefaultQuery(constants.ParamFormat, constants.FormatPNG)
	var buf bytes.Buffer
	if err := s.EncodeMask(&buf, format, base); err != nil {
		app.reply(c, nil, err)
		return
	}
	c.Data(http.StatusOK, mask.ContentType(format), buf.Bytes())
}

func (app *SessionAPI) MaskPreview(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := s.EncodeMaskPreview(&buf); err != nil {
		app.reply(c, nil, err)
		return
	}
	c.Data(http.StatusOK, mask.ContentType(constants.FormatPNG), buf.Bytes())
}

// UploadMask reads multipart "file" and makes it the active image's mask.
func (app *SessionAPI) UploadMask(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		app.badRequest(c, err)
		return
	}
	f, err := file.Open()
	if err != nil {
		app.badRequest(c, err)
		return
	}
	defer f.Close()
	data, err := ioutil.ReadAll(f)
	if err != nil {
		app.badRequest(c, err)
		return
	}
	status, err := s.UploadMask(data)
	app.reply(c, status, err)
}
