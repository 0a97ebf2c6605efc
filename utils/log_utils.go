package utils

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

var debug bool

var sugar = zap.NewNop().Sugar()

func init() {
	debug = os.Getenv("DEBUG") != ""
}

// SetLogger routes the Log* helpers through logger.
func SetLogger(logger *zap.Logger) {
	if logger == nil {
		sugar = zap.NewNop().Sugar()
		return
	}
	sugar = logger.WithOptions(zap.AddCallerSkip(1)).Sugar()
}

func caller() string {
	_, file, line, _ := runtime.Caller(2)
	fileAsPaths := strings.Split(file, "/")
	return fmt.Sprintf("%s:%d", fileAsPaths[len(fileAsPaths)-1], line)
}

// LogInfo example:
//
// LogInfo("imported %d files", n)
//
func LogInfo(msg string, vars ...interface{}) {
	sugar.Infow(fmt.Sprintf(msg, vars...), "at", caller())
}

// LogDebug only logs when the DEBUG environment variable is set.
func LogDebug(msg string, vars ...interface{}) {
	if debug {
		sugar.Debugw(fmt.Sprintf(msg, vars...), "at", caller())
	}
}

// LogError example:
//
// LogError(errors.New("mask is empty"))
//
func LogError(err error) {
	if err == nil {
		return
	}
	sugar.Errorw(err.Error(), "at", caller())
}
