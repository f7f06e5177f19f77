package entity

import "time"

// BlobInfo describes one stored contract document.
type BlobInfo struct {
	Key     string
	ModTime time.Time
}
