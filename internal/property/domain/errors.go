package domain

import "errors"

var (
	ErrPropertyNotFound    = errors.New("property not found")
	ErrPropertyAlreadySold = errors.New("property is already marked as sold")
	ErrNoImageFile         = errors.New("no image file provided")
)
