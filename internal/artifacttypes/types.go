package artifacttypes

import "strings"

// FileType is the recognized type of an artifact file.
type FileType string

const (
	// FileTypeNuke is a Nuke compositing script (.nk).
	FileTypeNuke FileType = "nuke"
	// FileTypeAfterEffects is an After Effects project (.aep).
	FileTypeAfterEffects FileType = "aftereffects"
	// FileTypeOther is any other scanned file.
	FileTypeOther FileType = "other"
)

// editorExtensions maps the two recognized editor formats to their types.
// Extension comparison is case-insensitive; keys are lowercase with the
// leading dot.
var editorExtensions = map[string]FileType{
	".nk":  FileTypeNuke,
	".aep": FileTypeAfterEffects,
}

// TypeForExtension returns the FileType for a file extension.
// The extension may be any case and should include the leading dot.
// Unrecognized extensions map to FileTypeOther.
func TypeForExtension(ext string) FileType {
	if t, ok := editorExtensions[strings.ToLower(ext)]; ok {
		return t
	}
	return FileTypeOther
}

// IsEditorFile reports whether the extension is one of the two recognized
// editor formats.
func IsEditorFile(ext string) bool {
	return TypeForExtension(ext) != FileTypeOther
}
