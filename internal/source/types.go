package source

type (
	// FileID identifies a source file within a FileSet. 0 is the first file.
	FileID uint32
	// FileFlags records how a file entered the set.
	FileFlags uint8
)

const (
	// FileVirtual marks files that were not read from disk (AST-only input, tests).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
	// FileNoSource marks a path the AST referenced but whose text could not be read;
	// spans into it still resolve, snippets are skipped.
	FileNoSource
)

// File is one circuit source referenced by the analyzed program.
// Content may be empty when the program arrived as a bare AST.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// HasSource reports whether snippet rendering can use the file text.
func (f *File) HasSource() bool {
	return f != nil && f.Flags&FileNoSource == 0 && len(f.Content) > 0
}

// LineCol is a 1-based position.
type LineCol struct {
	Line uint32
	Col  uint32
}
