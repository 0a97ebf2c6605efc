package session

import (
	"io/ioutil"
	"mime"
	"net/http"
	"path/filepath"

	"yolo-lab-api/constants"
	"yolo-lab-api/entities"
	"yolo-lab-api/object"
	"yolo-lab-api/utils"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (app *SessionAPI) FetchImages(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	resp := entities.NewResponse()
	page, limit := utils.ConvertGinRequestToPage(c, s.cfg.ItemsPerPage)
	result := s.Images(page, limit)
	resp.Data = result
	resp.Count = result.Total
	c.JSON(http.StatusOK, resp)
}

type uploadResult struct {
	Objects []object.Object `json:"objects"`
	Skipped []string        `json:"skipped"`
}

// UploadImages accepts multipart "files". Non-image files are skipped.
func (app *SessionAPI) UploadImages(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		utils.LogError(err)
		app.badRequest(c, err)
		return
	}

	result := uploadResult{Objects: make([]object.Object, 0), Skipped: make([]string, 0)}
	var total int64
	for _, file := range form.File["files"] {
		if !utils.IsImageFile(file.Filename) {
			result.Skipped = append(result.Skipped, file.Filename)
			continue
		}
		f, err := file.Open()
		if err != nil {
			utils.LogError(err)
			result.Skipped = append(result.Skipped, file.Filename)
			continue
		}
		b, err := ioutil.ReadAll(f)
		f.Close()
		if err != nil {
			utils.LogError(err)
			result.Skipped = append(result.Skipped, file.Filename)
			continue
		}
		obj, err := s.AddImage(filepath.Base(file.Filename), b)
		if err != nil {
			app.logger.Info("image skipped", zap.String("file", file.Filename), zap.Error(err))
			result.Skipped = append(result.Skipped, file.Filename)
			continue
		}
		total += obj.Size
		result.Objects = append(result.Objects, obj)
	}
	app.logger.Info("images uploaded",
		zap.String("session_id", s.ID),
		zap.Int("files", len(result.Objects)),
		zap.Int("skipped", len(result.Skipped)),
		zap.String("size", humanize.Bytes(uint64(total))))

	resp := entities.NewResponse()
	resp.Data = result
	resp.Count = len(result.Objects)
	c.JSON(http.StatusOK, resp)
}

func (app *SessionAPI) DownloadImage(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	obj, data, err := s.ImageData(c.Param(constants.ParamName))
	if err != nil {
		app.reply(c, nil, err)
		return
	}
	contentType := mime.TypeByExtension(filepath.Ext(obj.Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(http.StatusOK, contentType, data)
}

func (app *SessionAPI) DeleteImage(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	if err := s.DeleteImage(c.Param(constants.ParamName)); err != nil {
		app.reply(c, nil, err)
		return
	}
	app.reply(c, s.State(), nil)
}

func (app *SessionAPI) SelectImage(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	if err := s.SelectImage(c.Param(constants.ParamName)); err != nil {
		app.reply(c, nil, err)
		return
	}
	app.reply(c, s.State(), nil)
}

type indexRequest struct {
	Index *int `json:"index" binding:"required"`
}

func (app *SessionAPI) SelectIndex(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	var req indexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		app.badRequest(c, err)
		return
	}
	if err := s.SelectIndex(*req.Index); err != nil {
		app.reply(c, nil, err)
		return
	}
	app.reply(c, s.State(), nil)
}

type stepResult struct {
	Moved bool  `json:"moved"`
	State State `json:"state"`
}

func (app *SessionAPI) NextImage(c *gin.Context) {
	app.step(c, (*Session).Next)
}

func (app *SessionAPI) PrevImage(c *gin.Context) {
	app.step(c, (*Session).Prev)
}

func (app *SessionAPI) step(c *gin.Context, move func(*Session) (bool, error)) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	moved, err := move(s)
	app.reply(c, stepResult{Moved: moved, State: s.State()}, err)
}
