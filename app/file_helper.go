package app

import (
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/ludo-technologies/forbidscan/internal/parser"
)

// FileHelper collects source files of every supported language
type FileHelper struct {
	respectGitignore bool
}

// NewFileHelper creates a new FileHelper
func NewFileHelper() *FileHelper {
	return &FileHelper{}
}

// WithGitignore makes directory walks skip paths ignored by the root's .gitignore
func (h *FileHelper) WithGitignore(respect bool) *FileHelper {
	h.respectGitignore = respect
	return h
}

// CollectSourceFiles collects supported source files from paths.
// Files named directly are kept whenever their language is supported and
// their name is not excluded; include patterns only filter directory contents.
func (h *FileHelper) CollectSourceFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if h.IsValidSourceFile(path) && !h.isExcluded(filepath.Base(path), excludePatterns) {
				add(path)
			}
			continue
		}

		ignored := h.loadGitignore(path)

		if !recursive {
			entries, err := os.ReadDir(path)
			if err != nil {
				return nil, err
			}
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				if h.accept(entry.Name(), includePatterns, excludePatterns, ignored) {
					add(filepath.Join(path, entry.Name()))
				}
			}
			continue
		}

		root := path
		err = filepath.Walk(root, func(filePath string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			rel, relErr := filepath.Rel(root, filePath)
			if relErr != nil || rel == "." {
				return nil
			}
			rel = filepath.ToSlash(rel)

			// Skip excluded directories early
			if info.IsDir() {
				if h.isExcluded(rel, excludePatterns) || (ignored != nil && ignored.MatchesPath(rel+"/")) {
					return filepath.SkipDir
				}
				return nil
			}

			if h.accept(rel, includePatterns, excludePatterns, ignored) {
				add(filePath)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// IsValidSourceFile checks if a file has the extension of a supported language
func (h *FileHelper) IsValidSourceFile(path string) bool {
	_, ok := parser.LanguageForFile(path)
	return ok
}

// FileExists checks if a file exists
func (h *FileHelper) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// ReadFile reads file content
func (h *FileHelper) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// accept decides whether a file found under a directory is collected.
// rel is slash-separated and relative to the directory being collected.
func (h *FileHelper) accept(rel string, includePatterns, excludePatterns []string, ignored *ignore.GitIgnore) bool {
	if !h.IsValidSourceFile(rel) {
		return false
	}
	if h.isExcluded(rel, excludePatterns) {
		return false
	}
	if ignored != nil && ignored.MatchesPath(rel) {
		return false
	}
	return h.isIncluded(rel, includePatterns)
}

// loadGitignore compiles dir/.gitignore when gitignore support is on and the file exists
func (h *FileHelper) loadGitignore(dir string) *ignore.GitIgnore {
	if !h.respectGitignore {
		return nil
	}
	matcher, err := ignore.CompileIgnoreFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		return nil
	}
	return matcher
}

// isIncluded reports whether rel matches an include pattern; no patterns include everything
func (h *FileHelper) isIncluded(rel string, includePatterns []string) bool {
	if len(includePatterns) == 0 {
		return true
	}
	for _, pattern := range includePatterns {
		if matchGlob(pattern, rel) {
			return true
		}
	}
	return false
}

// isExcluded reports whether any segment of rel, or rel itself, matches an exclude pattern
func (h *FileHelper) isExcluded(rel string, excludePatterns []string) bool {
	for _, pattern := range excludePatterns {
		if matchGlob(pattern, rel) {
			return true
		}
		trimmed := strings.TrimSuffix(strings.TrimPrefix(pattern, "**/"), "/**")
		for _, segment := range strings.Split(rel, "/") {
			if matched, _ := filepath.Match(trimmed, segment); matched {
				return true
			}
		}
	}
	return false
}

// matchGlob matches a slash-separated path against a glob where a leading
// "**/" matches any number of directories
func matchGlob(pattern, rel string) bool {
	if matched, _ := filepath.Match(pattern, rel); matched {
		return true
	}
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		if matched, _ := filepath.Match(rest, rel); matched {
			return true
		}
		for i := 0; i < len(rel); i++ {
			if rel[i] == '/' {
				if matched, _ := filepath.Match(rest, rel[i+1:]); matched {
					return true
				}
			}
		}
	}
	return false
}

// ResolveFilePaths resolves the files to analyze. Named files go through the
// same language and exclude filters as directory contents.
func ResolveFilePaths(
	fileHelper *FileHelper,
	paths []string,
	recursive bool,
	includePatterns []string,
	excludePatterns []string,
) ([]string, error) {
	return fileHelper.CollectSourceFiles(paths, recursive, includePatterns, excludePatterns)
}
