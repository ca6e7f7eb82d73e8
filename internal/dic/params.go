package dic

import (
	"net/url"
	"strconv"
)

// ListParams selects a page of analyses. Zero values mean "not set" and are
// left out of the query string; HasResults is a pointer so false can be sent.
type ListParams struct {
	Page       int
	PageSize   int
	Status     string
	Search     string
	Ordering   string
	DateFrom   string
	DateTo     string
	HasResults *bool
}

// Query encodes the set fields as backend query parameters.
func (p ListParams) Query() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(p.PageSize))
	}
	if p.Status != "" {
		v.Set("status", p.Status)
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Ordering != "" {
		v.Set("ordering", p.Ordering)
	}
	if p.DateFrom != "" {
		v.Set("date_from", p.DateFrom)
	}
	if p.DateTo != "" {
		v.Set("date_to", p.DateTo)
	}
	if p.HasResults != nil {
		v.Set("has_results", strconv.FormatBool(*p.HasResults))
	}
	return v
}

// ImageVariant picks which image GET /analyses/{id}/image/ returns.
type ImageVariant string

const (
	ImageDisplacement ImageVariant = "displacement"
	ImageBefore       ImageVariant = "before"
	ImageAfter        ImageVariant = "after"
)

func (v ImageVariant) Valid() bool {
	switch v {
	case ImageDisplacement, ImageBefore, ImageAfter:
		return true
	}
	return false
}
