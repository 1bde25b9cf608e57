package domain

import "time"

// User is an account record held in the remote database. Users are
// created and deleted through the API; there is no update operation.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	SteamID   *string   `json:"steam_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// App is a catalog record written by the external ingest pipeline.
// Read-only from this service's perspective.
type App struct {
	AppID     string    `json:"app_id"`
	Name      *string   `json:"name,omitempty"`
	Type      *string   `json:"type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileType identifies which physical category table a stored file
// lives in. The category is determined by the source table, not by a
// column.
type FileType string

const (
	FileTypeJSON     FileType = "json"
	FileTypeLua      FileType = "lua"
	FileTypeManifest FileType = "manifest"
	FileTypeVDF      FileType = "vdf"
)

// FileTypes returns the known categories in their canonical order.
func FileTypes() []FileType {
	return []FileType{FileTypeJSON, FileTypeLua, FileTypeManifest, FileTypeVDF}
}

// ParseFileType maps a raw string to a known category.
func ParseFileType(s string) (FileType, bool) {
	switch FileType(s) {
	case FileTypeJSON, FileTypeLua, FileTypeManifest, FileTypeVDF:
		return FileType(s), true
	}
	return "", false
}

// Valid reports whether t is one of the four known categories.
func (t FileType) Valid() bool {
	_, ok := ParseFileType(string(t))
	return ok
}

// Extension returns the canonical filename extension for the category.
// Unknown categories default to ".txt".
func (t FileType) Extension() string {
	switch t {
	case FileTypeJSON:
		return ".json"
	case FileTypeLua:
		return ".lua"
	case FileTypeManifest:
		return ".manifest"
	case FileTypeVDF:
		return ".vdf"
	default:
		return ".txt"
	}
}

// ContentType returns the MIME type served for single-file downloads.
func (t FileType) ContentType() string {
	if t == FileTypeJSON {
		return "application/json; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// StoredFile is one row from a category table. Content is nil in
// metadata listings and populated only for downloads.
type StoredFile struct {
	ID         string    `json:"id"`
	AppID      string    `json:"app_id"`
	Filename   string    `json:"filename"`
	FileType   FileType  `json:"file_type"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
	Content    []byte    `json:"-"`
}
