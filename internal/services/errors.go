package services

import "errors"

// Dashboard service errors
var (
	// ErrUnknownDataset means a pivot request named a dataset that is
	// neither "news" nor "stocks".
	ErrUnknownDataset = errors.New("unknown dataset")

	// ErrDatasetEmpty means the selected dataset loaded with zero rows,
	// so there is nothing to pivot.
	ErrDatasetEmpty = errors.New("selected dataset is empty")
)
