// Package limits holds request body size limits shared by the handlers.
// These keep a single request from exhausting memory.
package limits

const (
	// MaxJSONBody caps JSON request bodies.
	MaxJSONBody = 1 << 20

	// MaxMultipartMemory is what ParseMultipartForm keeps in memory before
	// spilling uploads to disk.
	MaxMultipartMemory = 8 << 20

	// MaxImageUpload caps a single photo, letter or image-edit source.
	MaxImageUpload = 10 << 20

	// MaxCSVUpload caps the member import file.
	MaxCSVUpload = 2 << 20
)
