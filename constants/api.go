package constants

const (
	ENV = "API_ENV"

	ParamID        = "id"
	ParamSessionID = "session_id"
	ParamName      = "name"
	ParamIndex     = "index"
	ParamFormat    = "format"
	ParamDisplayW  = "display_w"
	ParamDisplayH  = "display_h"
	ParamPage      = "_page"
	ParamLimit     = "_limit"

	HeaderSessionID = "X-Session-ID"

	ServerOK          = 0
	ServerInvalidData = 1
	ServerNotFound    = 2
	ServerError       = 3
	ServerRejected    = 4

	ModeDetection    = "detection"
	ModeSegmentation = "segmentation"

	SubModeDrawBox      = "draw_box"
	SubModeAddKeypoints = "add_keypoints"

	ButtonPrimary   = "primary"
	ButtonSecondary = "secondary"

	FormatPNG  = "png"
	FormatWebP = "webp"

	LabelFileExt     = ".txt"
	LabelFileDefault = "labels"
	LabelBundleName  = "labels.zip"

	DefaultKeypointCount = 1
	DefaultMinBoxSize    = 5
	DefaultBrushRadius   = 10
	DefaultItemsPerPage  = 50
	DefaultImportWorkers = 4

	ExportStatusPending = "PENDING"
	ExportStatusDone    = "DONE"
)
