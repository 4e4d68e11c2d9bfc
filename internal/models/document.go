package models

import "time"

// Document is file metadata attached to a request, owned by its uploader.
// Documents are addressed and authorized independently of their request.
type Document struct {
	ID           string    `db:"id" json:"id"`
	RequestID    string    `db:"request_id" json:"requestId"`
	FileName     string    `db:"file_name" json:"fileName"`
	OriginalName string    `db:"original_name" json:"originalName"`
	FilePath     string    `db:"file_path" json:"filePath"`
	FileType     string    `db:"file_type" json:"fileType"`
	FileSize     int64     `db:"file_size" json:"fileSize"`
	UploadedBy   string    `db:"uploaded_by" json:"uploadedBy"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}
