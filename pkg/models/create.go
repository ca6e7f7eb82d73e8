package models

import "io"

// ImageFile is one uploaded image of a creation request.
type ImageFile struct {
	Filename string    `validate:"required"`
	Content  io.Reader `validate:"required"`
}

// CreateRequest carries everything needed to submit a new analysis. It only
// exists long enough to build the multipart upload.
type CreateRequest struct {
	Name        string     `validate:"required,max=255"`
	ImageBefore *ImageFile `validate:"required"`
	ImageAfter  *ImageFile `validate:"required"`

	SubsetSize     *int     `validate:"omitempty,gt=0"`
	Step           *int     `validate:"omitempty,gt=0"`
	MaxIter        *int     `validate:"omitempty,gt=0"`
	MinCorrelation *float64 `validate:"omitempty,gte=0,lte=1"`

	SampleName  string
	Material    string
	Manufacture string
	TestDate    string
}
