package stats

import (
	"encoding/json"
	"time"

	"yolo-lab-api/constants"

	"github.com/google/uuid"
)

// LabelExport describes one bundle of label files.
type LabelExport struct {
	ID        string   `json:"id"`
	Created   int64    `json:"created"`
	FilePath  string   `json:"file_path"`
	SessionID string   `json:"session_id"`
	Tag       string   `json:"tag"`
	Files     []string `json:"files"`
	Size      int64    `json:"size"`
	HumanSize string   `json:"human_size"`
	Stored    bool     `json:"stored"`
	Status    string   `json:"status"`
}

func (labelExport *LabelExport) String() string {
	b, _ := json.Marshal(labelExport)
	return string(b)
}

func (labelExport *LabelExport) New() {
	labelExport.ID = uuid.New().String()
	labelExport.Created = time.Now().UnixNano() / int64(time.Millisecond)
	labelExport.FilePath = labelExport.ID + "/" + constants.LabelBundleName
	labelExport.Status = constants.ExportStatusPending
	if labelExport.Tag == "" {
		labelExport.Tag = labelExport.ID
	}
}

// ObjectName is where a file of this export lives in object storage.
func (labelExport *LabelExport) ObjectName(fileName string) string {
	return labelExport.ID + "/" + fileName
}
