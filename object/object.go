package object

import (
	"encoding/json"

	"yolo-lab-api/coord"

	"github.com/dustin/go-humanize"
)

// Object is one uploaded image. Natural size comes from decoding the stored
// bytes, never from how the image is displayed.
type Object struct {
	Name      string `json:"name"`
	Created   int64  `json:"created"`
	Format    string `json:"format"`
	Size      int64  `json:"size"`
	HumanSize string `json:"human_size"`
	NaturalW  int    `json:"natural_w"`
	NaturalH  int    `json:"natural_h"`
}

func newObject(name, format string, size int64, created int64, natural coord.ImageSize) Object {
	return Object{
		Name:      name,
		Created:   created,
		Format:    format,
		Size:      size,
		HumanSize: humanize.Bytes(uint64(size)),
		NaturalW:  natural.NaturalW,
		NaturalH:  natural.NaturalH,
	}
}

func (object *Object) ImageSize() coord.ImageSize {
	return coord.ImageSize{NaturalW: object.NaturalW, NaturalH: object.NaturalH}
}

func (object *Object) IsValidObject() bool {
	return object.Name != "" && object.ImageSize().Ready()
}

func (object *Object) String() string {
	b, _ := json.Marshal(object)
	return string(b)
}

// ObjectPage is one page of the ordered image list.
type ObjectPage struct {
	Page       int      `json:"page"`
	PerPage    int      `json:"per_page"`
	TotalPages int      `json:"total_pages"`
	Total      int      `json:"total"`
	Objects    []Object `json:"objects"`
}
