package model

// IndexedFile is a document seen in a tracked chat.
type IndexedFile struct {
	ID        int64
	FileID    string
	FileName  string
	FileSize  string
	FileType  string
	ChatID    int64
	MessageID int
}
