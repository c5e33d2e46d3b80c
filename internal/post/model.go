package post

import (
	"strings"
	"time"
)

type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypeVideo FileType = "video"
)

// ClassifyFileType maps a declared MIME type to a file type: video/* is a video, anything else an image.
func ClassifyFileType(contentType string) FileType {
	if strings.HasPrefix(contentType, "video/") {
		return FileTypeVideo
	}
	return FileTypeImage
}

const MaxCaptionLength = 255

type Post struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	UserID    string    `gorm:"type:uuid;not null;index"`
	Caption   string    `gorm:"size:255;not null"`
	URL       string    `gorm:"column:url;not null"`
	FileType  FileType  `gorm:"size:16;not null"`
	FileName  string    `gorm:"size:255;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// PostView is what the upload endpoint returns.
type PostView struct {
	ID        string    `json:"id"`
	Caption   string    `json:"caption"`
	URL       string    `json:"url"`
	FileType  FileType  `json:"file_type"`
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
}

// PostFeedItem is a post annotated for one viewer. Email is nil when the author is unknown.
type PostFeedItem struct {
	PostView
	UserID  string  `json:"user_id"`
	IsOwner bool    `json:"is_owner"`
	Email   *string `json:"email"`
}

func (p *Post) View() PostView {
	return PostView{
		ID:        p.ID,
		Caption:   p.Caption,
		URL:       p.URL,
		FileType:  p.FileType,
		FileName:  p.FileName,
		CreatedAt: p.CreatedAt,
	}
}
