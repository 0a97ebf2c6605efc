package stats

import (
	"errors"
	"net/http"

	"yolo-lab-api/constants"
	"yolo-lab-api/entities"
	"yolo-lab-api/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LabelSource renders the label files of one workspace, keyed by file name.
type LabelSource interface {
	LabelFiles(sessionID string) (map[string][]byte, error)
}

type StatsAPI struct {
	labelExportStore *LabelExportStore
	labelSource      LabelSource
	logger           *zap.Logger
}

func NewLabelExportAPI(labelExportStore *LabelExportStore, labelSource LabelSource, logger *zap.Logger) (app *StatsAPI) {
	if logger == nil {
		logger = zap.NewNop()
	}
	app = &StatsAPI{
		labelExportStore: labelExportStore,
		labelSource:      labelSource,
		logger:           logger,
	}
	return app
}

func (app *StatsAPI) InitRoute(engine *gin.Engine, path string) {
	group := engine.Group(path)
	group.GET("", app.FetchLabelExports)
	group.POST("", app.CreateExportLabel)
	group.GET("/:id", app.GetLabelExport)
	group.GET("/:id/download", app.DownloadLabelExport)
}

type exportRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Tag       string `json:"tag"`
}

func (app *StatsAPI) CreateExportLabel(c *gin.Context) {
	resp := entities.NewResponse()

	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err)
		c.JSON(http.StatusBadRequest, resp.Fail(constants.ServerInvalidData, err))
		return
	}

	files, err := app.labelSource.LabelFiles(req.SessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, resp.Fail(constants.ServerNotFound, err))
		return
	}

	labelExport, err := app.labelExportStore.Create(c.Request.Context(), req.SessionID, req.Tag, files)
	if errors.Is(err, ErrTagExists) {
		app.logger.Info("Export tag is already existed", zap.String("tag", req.Tag))
		c.JSON(http.StatusBadRequest, resp.Fail(constants.ServerInvalidData, err))
		return
	}
	if err != nil {
		app.logger.Error("label export failed", zap.String("session_id", req.SessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, resp.Fail(constants.ServerError, err))
		return
	}

	resp.Data = labelExport
	c.JSON(http.StatusOK, resp)
}

func (app *StatsAPI) FetchLabelExports(c *gin.Context) {
	resp := entities.NewResponse()
	exports := app.labelExportStore.List(c.Query(constants.ParamSessionID))
	resp.Data = exports
	resp.Count = len(exports)
	c.JSON(http.StatusOK, resp)
}

func (app *StatsAPI) GetLabelExport(c *gin.Context) {
	resp := entities.NewResponse()
	labelExport, err := app.labelExportStore.Get(c.Param(constants.ParamID))
	if err != nil {
		c.JSON(http.StatusNotFound, resp.Fail(constants.ServerNotFound, err))
		return
	}
	resp.Data = labelExport
	c.JSON(http.StatusOK, resp)
}

func (app *StatsAPI) DownloadLabelExport(c *gin.Context) {
	resp := entities.NewResponse()

	labelExport, bundle, err := app.labelExportStore.Bundle(c.Request.Context(), c.Param(constants.ParamID))
	if errors.Is(err, ErrExportNotFound) {
		c.JSON(http.StatusNotFound, resp.Fail(constants.ServerNotFound, err))
		return
	}
	if err != nil {
		app.logger.Error("label export download failed", zap.String("export_id", labelExport.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, resp.Fail(constants.ServerError, err))
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", "attachment; filename="+constants.LabelBundleName)
	c.Data(http.StatusOK, "application/zip", bundle)
}
