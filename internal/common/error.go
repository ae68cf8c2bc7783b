package common

import "fmt"

var (
	ErrStateNotFound   = fmt.Errorf("version state not found")
	ErrNoVersionMarker = fmt.Errorf("version marker not found")
	ErrBuildInProgress = fmt.Errorf("build process has already started")
	ErrInvalidLogLevel = fmt.Errorf("unknown log level")
	ErrInvalidEncoding = fmt.Errorf("content is not valid utf-8")
)
