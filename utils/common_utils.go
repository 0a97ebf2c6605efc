package utils

import (
	"strconv"

	"yolo-lab-api/constants"

	"github.com/gin-gonic/gin"
)

// ConvertGinRequestToPage reads the 1-based page and page size from the query.
func ConvertGinRequestToPage(c *gin.Context, defaultLimit int) (int, int) {
	page, err := strconv.Atoi(c.Query(constants.ParamPage))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query(constants.ParamLimit))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}

// QueryInt returns the integer query value of key, or def when absent or malformed.
func QueryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

// FindInSlice takes a slice and looks for an element in it. If found it will
// return it's key, otherwise it will return -1 and a bool of false.
func FindInSlice(slice []string, val string) (int, bool) {
	for i, item := range slice {
		if item == val {
			return i, true
		}
	}
	return -1, false
}
