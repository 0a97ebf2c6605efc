package session

import (
	"errors"
	"net/http"

	"yolo-lab-api/constants"
	"yolo-lab-api/coord"
	"yolo-lab-api/editor"
	"yolo-lab-api/entities"
	"yolo-lab-api/mask"
	"yolo-lab-api/mw"
	"yolo-lab-api/object"
	"yolo-lab-api/yolo"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SessionAPI struct {
	store  *SessionStore
	logger *zap.Logger
}

func NewSessionAPI(store *SessionStore, logger *zap.Logger) (app *SessionAPI) {
	if logger == nil {
		logger = zap.NewNop()
	}
	app = &SessionAPI{
		store:  store,
		logger: logger,
	}
	return app
}

func (app *SessionAPI) InitRoute(engine *gin.Engine, path string) {
	engine.POST(path, app.CreateSession)
	engine.GET(path, app.FetchSessions)

	g := engine.Group(path+"/:"+constants.ParamSessionID, mw.WrapSessionID(app.logger))
	g.GET("", app.GetSession)
	g.DELETE("", app.DeleteSession)
	g.PUT("/mode", app.SetMode)
	g.PUT("/viewport", app.SetViewport)

	g.GET("/images", app.FetchImages)
	g.POST("/images", app.UploadImages)
	g.GET("/images/:name", app.DownloadImage)
	g.DELETE("/images/:name", app.DeleteImage)
	g.PUT("/images/:name/select", app.SelectImage)
	g.PUT("/active", app.SelectIndex)
	g.POST("/next", app.NextImage)
	g.POST("/prev", app.PrevImage)

	g.GET("/classes", app.FetchClasses)
	g.POST("/classes", app.CreateClass)
	g.PUT("/classes/:id", app.RenameClass)
	g.DELETE("/classes/:id", app.DeleteClass)
	g.PUT("/classes/:id/select", app.SelectClass)

	g.POST("/editor/pointer_down", app.PointerDown)
	g.POST("/editor/pointer_move", app.PointerMove)
	g.POST("/editor/pointer_up", app.PointerUp)
	g.POST("/editor/pointer_leave", app.PointerLeave)
	g.POST("/editor/skip", app.Skip)

	g.GET("/annotations", app.FetchAnnotations)
	g.GET("/annotations/display", app.FetchDisplayAnnotations)
	g.PUT("/annotations", app.ReplaceAnnotations)
	g.DELETE("/annotations/:id", app.DeleteAnnotation)

	g.POST("/mask/stroke_start", app.StrokeStart)
	g.POST("/mask/stroke_move", app.StrokeMove)
	g.POST("/mask/stroke_end", app.StrokeEnd)
	g.POST("/mask/stroke_leave", app.StrokeLeave)
	g.POST("/mask/brush", app.BrushPreview)
	g.PUT("/mask/radius", app.SetBrushRadius)
	g.GET("/mask", app.DownloadMask)
	g.POST("/mask", app.UploadMask)
	g.DELETE("/mask", app.ClearMask)
	g.GET("/mask/preview", app.MaskPreview)
	g.GET("/mask/base", app.DownloadBaseMask)
	g.POST("/mask/base", app.SaveBaseMask)
	g.DELETE("/mask/base", app.ClearBaseMask)
	g.POST("/mask/base/restore", app.RestoreBaseMask)

	g.GET("/labels", app.ExportLabels)
	g.POST("/labels", app.ImportLabels)
}

// session resolves the workspace of the request or answers 404.
func (app *SessionAPI) session(c *gin.Context) (*Session, bool) {
	s, err := app.store.Get(mw.GetSessionIDFromGin(c))
	if err != nil {
		resp := entities.NewResponse()
		c.JSON(http.StatusNotFound, resp.Fail(constants.ServerNotFound, err))
		return nil, false
	}
	return s, true
}

func statusOf(err error) (int, int) {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, object.ErrNotFound),
		errors.Is(err, ErrAnnotationNotFound),
		errors.Is(err, ErrClassNotFound),
		errors.Is(err, mask.ErrNoBaseMask):
		return http.StatusNotFound, constants.ServerNotFound
	case errors.Is(err, editor.ErrKeypointOutsideBox),
		errors.Is(err, ErrNavigationLocked),
		errors.Is(err, ErrWrongMode):
		return http.StatusConflict, constants.ServerRejected
	case errors.Is(err, ErrNoActiveImage),
		errors.Is(err, ErrInvalidMode),
		errors.Is(err, ErrInvalidAnnotation),
		errors.Is(err, ErrInvalidClass),
		errors.Is(err, editor.ErrNotReady),
		errors.Is(err, editor.ErrNoClass),
		errors.Is(err, mask.ErrNotReady),
		errors.Is(err, mask.ErrEmptyMask),
		errors.Is(err, mask.ErrUnknownFormat),
		errors.Is(err, object.ErrNotImage),
		errors.Is(err, yolo.ErrNotReady):
		return http.StatusBadRequest, constants.ServerInvalidData
	}
	return http.StatusInternalServerError, constants.ServerError
}

// reply answers with data, or with the error's status while still carrying data.
func (app *SessionAPI) reply(c *gin.Context, data interface{}, err error) {
	resp := entities.NewResponse()
	resp.Data = data
	if err != nil {
		status, code := statusOf(err)
		if status == http.StatusInternalServerError {
			app.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		}
		c.JSON(status, resp.Fail(code, err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (app *SessionAPI) badRequest(c *gin.Context, err error) {
	resp := entities.NewResponse()
	c.JSON(http.StatusBadRequest, resp.Fail(constants.ServerInvalidData, err))
}

func (app *SessionAPI) CreateSession(c *gin.Context) {
	resp := entities.NewResponse()
	s := app.store.Create()
	resp.Data = s.State()
	c.JSON(http.StatusOK, resp)
}

func (app *SessionAPI) FetchSessions(c *gin.Context) {
	resp := entities.NewResponse()
	ids := app.store.IDs()
	resp.Data = ids
	resp.Count = len(ids)
	c.JSON(http.StatusOK, resp)
}

func (app *SessionAPI) GetSession(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	app.reply(c, s.State(), nil)
}

func (app *SessionAPI) DeleteSession(c *gin.Context) {
	app.reply(c, nil, app.store.Delete(mw.GetSessionIDFromGin(c)))
}

type modeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

func (app *SessionAPI) SetMode(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		app.badRequest(c, err)
		return
	}
	if err := s.SetMode(req.Mode); err != nil {
		app.reply(c, nil, err)
		return
	}
	app.reply(c, s.State(), nil)
}

func (app *SessionAPI) SetViewport(c *gin.Context) {
	s, ok := app.session(c)
	if !ok {
		return
	}
	var viewport coord.Rect
	if err := c.ShouldBindJSON(&viewport); err != nil {
		app.badRequest(c, err)
		return
	}
	s.SetViewport(viewport)
	app.reply(c, s.State(), nil)
}
