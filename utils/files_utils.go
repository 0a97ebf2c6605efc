package utils

import (
	"path/filepath"
	"strings"

	"yolo-lab-api/constants"
)

var imageExts = []string{"jpg", "jpeg", "png", "gif", "bmp", "tif", "tiff", "webp"}

// BaseName strips the directory and the final extension: "a/b.c.jpg" -> "b.c".
func BaseName(name string) string {
	name = filepath.Base(filepath.ToSlash(name))
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[:idx]
	}
	return name
}

// FileExtension returns the lower-case extension without the dot.
func FileExtension(name string) string {
	ext := filepath.Ext(name)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

func IsImageFile(name string) bool {
	_, found := FindInSlice(imageExts, FileExtension(name))
	return found
}

func IsLabelFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), constants.LabelFileExt)
}

// LabelFileName is the label file an image exports to.
func LabelFileName(imageName string) string {
	base := BaseName(imageName)
	if base == "" {
		base = constants.LabelFileDefault
	}
	return base + constants.LabelFileExt
}

// SplitLines splits text on \n, trimming a trailing \r from every line.
func SplitLines(content string) []string {
	lines := strings.Split(content, "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}
	return lines
}
