package entity

import "errors"

var (
	ErrNoImages           = errors.New("no image files found")
	ErrNotDirectory       = errors.New("path is not a directory")
	ErrDirectoryNotFound  = errors.New("directory not found")
	ErrFirstPhotoMissing  = errors.New("first photo is not found")
	ErrModelNotConfigured = errors.New("vision model is not configured")
	ErrEmptyImage         = errors.New("empty image")
	ErrImageRejected      = errors.New("image rejected")
	ErrHistoryDisabled    = errors.New("history is disabled")
)
