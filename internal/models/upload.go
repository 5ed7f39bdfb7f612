package models

import "mime/multipart"

// UploadRequest is the validated-on-use input of one analysis.
type UploadRequest struct {
	Username string
	Files    []*multipart.FileHeader
}

func (r *UploadRequest) TotalBytes() int64 {
	var total int64
	for _, f := range r.Files {
		total += f.Size
	}
	return total
}
