package project

import (
	"os"
	"path/filepath"
)

// ConfigFiles are the config file names that mark a project root, in lookup order.
var ConfigFiles = []string{".gearfitrc.json", ".gearfitrc.yaml", ".gearfitrc.yml"}

// BuildsDir is the conventional catalog directory name.
const BuildsDir = "builds"

// Info contains information about the detected project.
type Info struct {
	Root       string
	ConfigFile string // absolute path, empty when there is none
	CatalogDir string // absolute path of builds/, empty when there is none
}

// FindProjectRoot searches for a project root starting from the given path
// and climbing up the directory tree. A root holds a .gearfitrc file or a
// builds/ directory. Without one, the start path is returned.
func FindProjectRoot(startPath string) (string, error) {
	if startPath == "" {
		startPath = "."
	}
	absPath, err := filepath.Abs(startPath)
	if err != nil {
		return "", err
	}

	currentDir := absPath
	for {
		if isProjectRoot(currentDir) {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)
		if parent == currentDir {
			break
		}
		currentDir = parent
	}

	return absPath, nil
}

// FindCatalogRoot returns the directory builds should be loaded from: the
// project's builds/ directory when there is one, else the project root.
func FindCatalogRoot(startPath string) (string, error) {
	root, err := FindProjectRoot(startPath)
	if err != nil {
		return "", err
	}
	if dir := filepath.Join(root, BuildsDir); isDir(dir) {
		return dir, nil
	}
	return root, nil
}

func isProjectRoot(path string) bool {
	if configFile(path) != "" {
		return true
	}
	return isDir(filepath.Join(path, BuildsDir))
}

func configFile(dir string) string {
	for _, name := range ConfigFiles {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Detect detects project information at the given path.
func Detect(rootPath string) (*Info, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, err
	}

	info := &Info{Root: absPath, ConfigFile: configFile(absPath)}
	if dir := filepath.Join(absPath, BuildsDir); isDir(dir) {
		info.CatalogDir = dir
	}
	return info, nil
}
