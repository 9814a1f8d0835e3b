package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrAnalysisInProgress  = errors.New("analysis already in progress for this document")
	ErrSystemInactive      = errors.New("system is inactive")
	ErrNoControls          = errors.New("no controls found for system")
)
