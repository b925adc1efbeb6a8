package lsp

import (
	"os"
	"path/filepath"
	"strings"

	"moltree/internal/project"
)

type analysisMode uint8

const (
	modeProjectRoot analysisMode = iota
	modeWorkspace
	modeOpenFiles
)

func (m analysisMode) String() string {
	switch m {
	case modeProjectRoot:
		return "project"
	case modeWorkspace:
		return "workspace"
	default:
		return "open-files"
	}
}

// detectAnalysisScope picks the directory the index scans: the project
// holding moltree.toml when there is one, else the workspace root, else
// the directory of the first open file.
func detectAnalysisScope(workspaceRoot, firstFile string) (string, analysisMode) {
	if root := resolveStartDir(workspaceRoot); root != "" {
		if found, ok, err := project.FindProjectRoot(root); err == nil && ok {
			return found, modeProjectRoot
		}
	}
	if root := resolveStartDir(firstFile); root != "" {
		if found, ok, err := project.FindProjectRoot(root); err == nil && ok {
			return found, modeProjectRoot
		}
		if workspaceRoot == "" {
			return root, modeOpenFiles
		}
	}
	if workspaceRoot != "" {
		return canonicalPath(workspaceRoot), modeWorkspace
	}
	return "", modeOpenFiles
}

func resolveStartDir(path string) string {
	if path == "" {
		return ""
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return path
	}
	return filepath.Dir(path)
}

func canonicalPath(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return filepath.Clean(path)
}

func pathWithinRoot(path, root string) bool {
	if root == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
