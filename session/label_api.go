package session

import (
	"io/ioutil"
	"net/http"

	"yolo-lab-api/entities"
	"yolo-lab-api/utils"
	"yolo-lab-api/yolo"

	"github.com/gin-gonic/gin"
)

// ExportLabels downloads the active image's label file as <base>.txt.
func (app *SessionAPI) ExportLabels(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	fileName, content, err := s.ExportLabels()
	if err != nil {
		app.reply(c, nil, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(content))
}

// ImportLabels reads multipart "files" and reports what was applied.
func (app *SessionAPI) ImportLabels(c *gin.Context) {
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

	files := make([]yolo.LabelFile, 0, len(form.File["files"]))
	for _, file := range form.File["files"] {
		labelFile := yolo.LabelFile{Name: file.Filename}
		f, err := file.Open()
		if err == nil {
			labelFile.Content, err = ioutil.ReadAll(f)
			f.Close()
		}
		labelFile.ReadErr = err
		files = append(files, labelFile)
	}

	summary := s.ImportLabels(c.Request.Context(), files)
	utils.LogDebug("session %s: imported %d annotations from %d/%d files", s.ID, summary.Imported, summary.AppliedFiles, summary.Files)
	resp := entities.NewResponse()
	resp.Data = summary
	resp.Count = summary.Imported
	c.JSON(http.StatusOK, resp)
}
