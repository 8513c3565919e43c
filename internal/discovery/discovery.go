package discovery

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DataPattern matches every file the catalog and inventory loaders can decode.
const DataPattern = "**/*.{json,yaml,yml}"

// IndexFileName is the per-class build index written next to build files.
const IndexFileName = "index.json"

// TypePattern maps a glob pattern to a FileType for type detection.
// Patterns are matched in order; first match wins.
type TypePattern struct {
	Pattern  string
	FileType FileType
}

// typePatterns defines the canonical patterns for detecting data file types.
// Order matters: index files live inside build directories.
var typePatterns = []TypePattern{
	{"**/" + IndexFileName, FileTypeIndex},

	{"builds/**/*.{json,yaml,yml}", FileTypeBuild},
	{"**/builds/**/*.{json,yaml,yml}", FileTypeBuild},

	{"items/**/*.{json,yaml,yml}", FileTypeItem},
	{"**/items/**/*.{json,yaml,yml}", FileTypeItem},
	{"inventory/**/*.{json,yaml,yml}", FileTypeItem},
	{"**/inventory/**/*.{json,yaml,yml}", FileTypeItem},
}

// DetectFileType determines the data file type from a path using glob pattern matching.
//
// rootPath is used to compute the relative path that patterns are matched against.
// When no pattern matches, the basename decides; otherwise an actionable error is returned.
func DetectFileType(absPath, rootPath string) (FileType, error) {
	relPath, err := filepath.Rel(rootPath, absPath)
	if err != nil {
		return FileTypeUnknown, fmt.Errorf("cannot compute relative path from %s to %s: %w", rootPath, absPath, err)
	}
	relPath = filepath.ToSlash(relPath)
	// Outside the root only the directory names along the full path can tell.
	matchPath := relPath
	if strings.HasPrefix(relPath, "..") {
		matchPath = strings.TrimPrefix(filepath.ToSlash(strings.TrimPrefix(absPath, filepath.VolumeName(absPath))), "/")
	}

	for _, tp := range typePatterns {
		if matched, err := doublestar.Match(tp.Pattern, matchPath); err == nil && matched {
			return tp.FileType, nil
		}
	}

	basename := strings.ToLower(filepath.Base(absPath))
	switch {
	case basename == IndexFileName:
		return FileTypeIndex, nil
	case strings.Contains(basename, "inventory") || strings.Contains(basename, "item"):
		if isDataFile(basename) {
			return FileTypeItem, nil
		}
	}

	if !isDataFile(basename) {
		ext := filepath.Ext(basename)
		if ext == "" {
			return FileTypeUnknown, fmt.Errorf("unsupported file: %s has no extension. gearfit reads .json, .yaml and .yml files only", filepath.Base(absPath))
		}
		return FileTypeUnknown, fmt.Errorf("unsupported file type: %s. gearfit reads .json, .yaml and .yml files only", ext)
	}

	return FileTypeUnknown, fmt.Errorf(
		"cannot determine type: %s is not under builds/, items/ or inventory/. Use --type to specify (build, item)", relPath)
}

func isDataFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// ValidateFilePath checks that path names a readable, non-empty text file and
// returns its absolute form. Symlinks are resolved.
func ValidateFilePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}

	info, err := os.Lstat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", absPath)
		}
		if os.IsPermission(err) {
			return "", fmt.Errorf("permission denied: %s", absPath)
		}
		return "", fmt.Errorf("cannot access file: %s: %w", absPath, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		realPath, evalErr := filepath.EvalSymlinks(absPath)
		if evalErr != nil {
			return "", fmt.Errorf("cannot resolve symlink %s: %w", absPath, evalErr)
		}
		absPath = realPath
		if info, err = os.Stat(absPath); err != nil {
			return "", fmt.Errorf("symlink target inaccessible: %s: %w", absPath, err)
		}
	}

	if info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", absPath)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("file is empty: %s", absPath)
	}

	if err := sniffText(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

// sniffText rejects files with a NUL byte in their first 512 bytes.
func sniffText(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot read file: %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("cannot read file: %s: %w", path, err)
	}
	if bytes.IndexByte(head[:n], 0) >= 0 {
		return fmt.Errorf("file appears to be binary, not text: %s", path)
	}
	return nil
}

// File represents a discovered file with its metadata
type File struct {
	Path     string
	RelPath  string
	Size     int64
	Type     FileType
	Contents []byte
}

// FileType categorizes discovered files
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeBuild
	FileTypeIndex
	FileTypeItem
)

// String returns the human-readable name of the file type.
func (ft FileType) String() string {
	switch ft {
	case FileTypeBuild:
		return "build"
	case FileTypeIndex:
		return "index"
	case FileTypeItem:
		return "item"
	default:
		return "unknown"
	}
}

// ParseFileType converts a string to a FileType.
func ParseFileType(s string) (FileType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "build", "builds":
		return FileTypeBuild, nil
	case "index":
		return FileTypeIndex, nil
	case "item", "items", "inventory":
		return FileTypeItem, nil
	default:
		return FileTypeUnknown, fmt.Errorf("invalid type %q: valid types are build, index, item", s)
	}
}

// FileDiscovery manages file discovery operations
type FileDiscovery struct {
	rootPath       string
	followSymlinks bool
}

// NewFileDiscovery creates a new FileDiscovery instance
func NewFileDiscovery(rootPath string, followSymlinks bool) *FileDiscovery {
	return &FileDiscovery{
		rootPath:       rootPath,
		followSymlinks: followSymlinks,
	}
}

// DiscoverBuildFiles finds build and index files under the root. Files whose
// relative path does not match filter are skipped; an empty filter keeps all.
// Results are sorted by relative path.
func (fd *FileDiscovery) DiscoverBuildFiles(filter string) ([]File, error) {
	if filter != "" && !doublestar.ValidatePattern(filter) {
		return nil, fmt.Errorf("invalid build pattern %q", filter)
	}

	files, err := fd.glob(DataPattern)
	if err != nil {
		return nil, fmt.Errorf("error discovering build files: %w", err)
	}

	var kept []File
	for _, f := range files {
		if strings.EqualFold(filepath.Base(f.RelPath), IndexFileName) {
			f.Type = FileTypeIndex
			kept = append(kept, f)
			continue
		}
		if filter != "" {
			ok, err := doublestar.Match(filter, f.RelPath)
			if err != nil || !ok {
				continue
			}
		}
		f.Type = FileTypeBuild
		kept = append(kept, f)
	}

	return kept, nil
}

// glob returns the files under the root matching pattern, sorted by relative path.
func (fd *FileDiscovery) glob(pattern string) ([]File, error) {
	matches, err := doublestar.Glob(os.DirFS(fd.rootPath), pattern)
	if err != nil {
		return nil, fmt.Errorf("error evaluating pattern %s: %w", pattern, err)
	}

	files := make([]File, 0, len(matches))
	for _, m := range matches {
		if f, ok := fd.processMatch(m); ok {
			files = append(files, f)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// processMatch converts a glob match into a File, returning false if the match should be skipped.
func (fd *FileDiscovery) processMatch(match string) (File, bool) {
	fullPath := filepath.Join(fd.rootPath, match)

	info, err := os.Lstat(fullPath)
	if err != nil {
		return File{}, false
	}

	if info.Mode()&os.ModeSymlink != 0 {
		resolved, resolvedInfo, ok := fd.resolveSymlink(fullPath)
		if !ok {
			return File{}, false
		}
		fullPath = resolved
		info = resolvedInfo
	}
	if info.IsDir() {
		return File{}, false
	}

	contents, err := os.ReadFile(fullPath)
	if err != nil {
		return File{}, false
	}

	return File{
		Path:     fullPath,
		RelPath:  filepath.ToSlash(match),
		Size:     info.Size(),
		Contents: contents,
	}, true
}

// resolveSymlink follows a symlink if configured, returning the resolved path and info.
// Targets outside the root are skipped.
func (fd *FileDiscovery) resolveSymlink(fullPath string) (string, os.FileInfo, bool) {
	if !fd.followSymlinks {
		return "", nil, false
	}

	realPath, err := filepath.EvalSymlinks(fullPath)
	if err != nil {
		return "", nil, false
	}

	root, err := filepath.EvalSymlinks(fd.rootPath)
	if err != nil {
		root = fd.rootPath
	}
	if !strings.HasPrefix(realPath, root) {
		return "", nil, false
	}

	info, err := os.Stat(realPath)
	if err != nil {
		return "", nil, false
	}

	return realPath, info, true
}
