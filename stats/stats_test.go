package stats

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"yolo-lab-api/constants"

	"github.com/gin-gonic/gin"
	"gopkg.in/go-playground/assert.v1"
)

var labelExport = LabelExport{
	Created:   0,
	FilePath:  "path",
	ID:        "id",
	SessionID: "session",
	Tag:       "tag",
}

func TestToString(t *testing.T) {
	{
		assert.NotEqual(t, "{}", labelExport.String())
	}
	{
		labelExport := LabelExport{}
		assert.Equal(t, "{\"id\":\"\",\"created\":0,\"file_path\":\"\",\"session_id\":\"\",\"tag\":\"\",\"files\":null,\"size\":0,\"human_size\":\"\",\"stored\":false,\"status\":\"\"}", labelExport.String())
	}
}

func TestNewLabelExport(t *testing.T) {
	labelExport := LabelExport{}
	labelExport.New()
	assert.NotEqual(t, "", labelExport.ID)
	assert.Equal(t, labelExport.ID, labelExport.Tag)
	assert.Equal(t, labelExport.ID+"/labels.zip", labelExport.FilePath)
	assert.Equal(t, constants.ExportStatusPending, labelExport.Status)
	assert.Equal(t, labelExport.ID+"/a.txt", labelExport.ObjectName("a.txt"))
}

func readZip(t *testing.T, data []byte) map[string]string {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		b, _ := ioutil.ReadAll(rc)
		rc.Close()
		out[f.Name] = string(b)
	}
	return out
}

func TestBuildBundle(t *testing.T) {
	data, names, err := BuildBundle(map[string][]byte{
		"b.txt": []byte("1 0.5 0.5 0.1 0.1"),
		"a.txt": []byte(""),
	}, time.Now())
	assert.Equal(t, nil, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, names)

	files := readZip(t, data)
	assert.Equal(t, 2, len(files))
	assert.Equal(t, "1 0.5 0.5 0.1 0.1", files["b.txt"])
	assert.Equal(t, "", files["a.txt"])
}

type memStorage struct {
	objects map[string][]byte
	fail    bool
}

func (storage *memStorage) StoreFile(ctx context.Context, objectName string, fileData []byte, contentType string) error {
	if storage.fail {
		return errors.New("storage unavailable")
	}
	storage.objects[objectName] = fileData
	return nil
}

func (storage *memStorage) DownloadFile(ctx context.Context, objectName string) ([]byte, error) {
	data, found := storage.objects[objectName]
	if !found {
		return nil, errors.New("no such object")
	}
	return data, nil
}

var files = map[string][]byte{
	"street.txt": []byte("0 0.195313 0.250000 0.078125 0.083333"),
	"road.txt":   []byte(""),
}

func TestLabelExportStoreInMemory(t *testing.T) {
	store := NewLabelExportStore(nil, nil)
	labelExport, err := store.Create(context.Background(), "s1", "", files)
	assert.Equal(t, nil, err)
	assert.Equal(t, constants.ExportStatusDone, labelExport.Status)
	assert.Equal(t, false, labelExport.Stored)
	assert.Equal(t, []string{"road.txt", "street.txt"}, labelExport.Files)

	_, bundle, err := store.Bundle(context.Background(), labelExport.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, string(files["street.txt"]), readZip(t, bundle)["street.txt"])

	_, err = store.Get("missing")
	assert.Equal(t, true, errors.Is(err, ErrExportNotFound))
	assert.Equal(t, 1, len(store.List("s1")))
	assert.Equal(t, 0, len(store.List("s2")))
}

func TestLabelExportStoreWithStorage(t *testing.T) {
	storage := &memStorage{objects: make(map[string][]byte)}
	store := NewLabelExportStore(storage, nil)
	labelExport, err := store.Create(context.Background(), "s1", "v1", files)
	assert.Equal(t, nil, err)
	assert.Equal(t, true, labelExport.Stored)
	assert.Equal(t, 3, len(storage.objects))
	assert.Equal(t, string(files["street.txt"]), string(storage.objects[labelExport.ID+"/street.txt"]))

	_, bundle, err := store.Bundle(context.Background(), labelExport.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(readZip(t, bundle)))

	_, err = store.Create(context.Background(), "s1", "v1", files)
	assert.Equal(t, true, errors.Is(err, ErrTagExists))
}

func TestLabelExportStoreFailureReleasesTag(t *testing.T) {
	storage := &memStorage{objects: make(map[string][]byte), fail: true}
	store := NewLabelExportStore(storage, nil)
	_, err := store.Create(context.Background(), "s1", "v1", files)
	assert.NotEqual(t, nil, err)
	assert.Equal(t, 0, len(store.List("")))

	storage.fail = false
	_, err = store.Create(context.Background(), "s1", "v1", files)
	assert.Equal(t, nil, err)
}

type fakeSource map[string]map[string][]byte

func (source fakeSource) LabelFiles(sessionID string) (map[string][]byte, error) {
	files, found := source[sessionID]
	if !found {
		return nil, errors.New("session not found")
	}
	return files, nil
}

func TestStatsAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewLabelExportAPI(NewLabelExportStore(nil, nil), fakeSource{"s1": files}, nil).InitRoute(engine, "/exports")

	var created struct {
		ErrorCode int         `json:"error_code"`
		Data      LabelExport `json:"data"`
	}
	{
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/exports", strings.NewReader(`{"session_id":"s1"}`))
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, nil, json.Unmarshal(w.Body.Bytes(), &created))
		assert.Equal(t, constants.ServerOK, created.ErrorCode)
	}
	{
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/exports", strings.NewReader(`{"session_id":"nope"}`))
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
	{
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/exports", strings.NewReader(`{}`))
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	{
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/exports/"+created.Data.ID+"/download", nil)
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
		assert.Equal(t, 2, len(readZip(t, w.Body.Bytes())))
	}
	{
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/exports/missing", nil)
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
}
