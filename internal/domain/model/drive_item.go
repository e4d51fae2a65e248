package model

import (
	"fmt"
	"time"
)

const FolderMimeType = "application/vnd.google-apps.folder"

// DriveItem is a file stored in Google Drive.
type DriveItem struct {
	ID          string
	Name        string
	Size        int64
	MimeType    string
	CreatedTime time.Time
}

func (d DriveItem) IsFolder() bool { return d.MimeType == FolderMimeType }

// HumanSize formats the size in B/KB/MB/GB with two decimals.
func (d DriveItem) HumanSize() string { return HumanSize(d.Size) }

func HumanSize(n int64) string {
	const unit = 1024
	switch {
	case n <= 0:
		return "Unknown size"
	case n < unit:
		return fmt.Sprintf("%d B", n)
	case n < unit*unit:
		return fmt.Sprintf("%.2f KB", float64(n)/unit)
	case n < unit*unit*unit:
		return fmt.Sprintf("%.2f MB", float64(n)/(unit*unit))
	default:
		return fmt.Sprintf("%.2f GB", float64(n)/(unit*unit*unit))
	}
}
