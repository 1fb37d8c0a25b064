package analyzer

// Category classifies a scanned file by its role in the repository.
type Category string

const (
	CategoryDocumentation Category = "documentation"
	CategoryConfiguration Category = "configuration"
	CategorySource        Category = "source"
	CategoryTest          Category = "test"
	CategoryAsset         Category = "asset"
	CategoryDependency    Category = "dependency"
	CategoryOther         Category = "other"
)

// FileRecord is one scanned file. Content is populated only for key files,
// capped at maxKeyFileSize, and never for anything else.
type FileRecord struct {
	Path     string
	RelPath  string
	Size     int64
	Ext      string
	Category Category
	Content  string
}

// TechStack holds what the analyzer could infer about the repository's stack.
type TechStack struct {
	Languages      []string
	Frameworks     []string
	BuildTools     []string
	PackageManager string
	HasDocker      bool
	HasCI          bool
}

// Result is the aggregate output of a repository scan.
//
// TotalFiles counts every scanned file after exclusions, not just key files.
// Dependency lists come strictly from manifest parsing and are empty when no
// manifest exists or it fails to parse.
type Result struct {
	Root            string
	TotalFiles      int
	TotalBytes      int64
	Tree            string
	Stack           TechStack
	KeyFiles        []FileRecord
	EntryPoints     []string
	Dependencies    []string
	DevDependencies []string
	DependencyCount int
}

// KeyFile returns the key file at the given repo-relative path, or nil.
func (r *Result) KeyFile(relPath string) *FileRecord {
	for i := range r.KeyFiles {
		if r.KeyFiles[i].RelPath == relPath {
			return &r.KeyFiles[i]
		}
	}
	return nil
}
