// Package source loads heterogeneous deal documents from a data directory
// and flattens each one into plain text keyed by a stable source name. The
// extractor feeds these texts to the model verbatim, so every parser aims
// for a faithful, lossy-but-readable rendering rather than full fidelity.
package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrNoSources means the data directory yielded no parseable documents.
// A run cannot proceed without at least one source.
var ErrNoSources = errors.New("source: no parseable documents found")

const (
	// KeyDealModel is the source key for the Excel deal model.
	KeyDealModel = "deal_model"
	// KeyFirmPolicy is the source key for the firm policy markdown.
	KeyFirmPolicy = "firm_policy"

	dealModelFile  = "Model.xlsx"
	firmPolicyFile = "firm_policy.md"
	termsheetsDir  = "Termsheets"
)

// Load reads every supported document under dataDir and returns a map of
// source key to extracted text. Keys are "deal_model" for Model.xlsx,
// "firm_policy" for firm_policy.md, and "<archive>/<file>" for entries of
// ZIP archives and of a pre-extracted Termsheets directory. Files that fail
// to parse are skipped with a warning; Load fails only when nothing at all
// could be loaded.
func Load(dataDir string) (map[string]string, error) {
	if _, err := os.Stat(dataDir); err != nil {
		return nil, eris.Wrapf(err, "source: data directory %s", dataDir)
	}

	sources := make(map[string]string)

	excelPath := filepath.Join(dataDir, dealModelFile)
	if _, err := os.Stat(excelPath); err == nil {
		text, err := ParseExcel(excelPath)
		if err != nil {
			zap.L().Warn("failed to parse deal model", zap.String("path", excelPath), zap.Error(err))
		} else {
			sources[KeyDealModel] = text
		}
	} else {
		zap.L().Warn("deal model not found", zap.String("path", excelPath))
	}

	policyPath := filepath.Join(dataDir, firmPolicyFile)
	if content, err := os.ReadFile(policyPath); err == nil {
		sources[KeyFirmPolicy] = string(content)
	} else {
		zap.L().Warn("firm policy not found", zap.String("path", policyPath))
	}

	archives, err := filepath.Glob(filepath.Join(dataDir, "*.zip"))
	if err != nil {
		return nil, eris.Wrap(err, "source: glob archives")
	}
	for _, archive := range archives {
		if err := loadArchive(archive, sources); err != nil {
			zap.L().Warn("failed to load archive", zap.String("path", archive), zap.Error(err))
		}
	}

	extractedDir := filepath.Join(dataDir, termsheetsDir)
	if info, err := os.Stat(extractedDir); err == nil && info.IsDir() {
		loadDirectory(extractedDir, termsheetsDir, sources)
	}

	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	keys := make([]string, 0, len(sources))
	for k := range sources {
		keys = append(keys, k)
	}
	zap.L().Info("loaded source documents", zap.Int("count", len(sources)), zap.Strings("keys", keys))

	return sources, nil
}

// loadArchive extracts a ZIP to a temp dir and parses each entry, keying the
// results "<archive stem>/<file name>".
func loadArchive(zipPath string, sources map[string]string) error {
	tempDir, err := os.MkdirTemp("", "termsheet-sources-*")
	if err != nil {
		return eris.Wrap(err, "source: create temp dir")
	}
	defer os.RemoveAll(tempDir) //nolint:errcheck

	extracted, err := ExtractZip(zipPath, tempDir)
	if err != nil {
		return err
	}

	stem := strings.TrimSuffix(filepath.Base(zipPath), filepath.Ext(zipPath))
	for _, path := range extracted {
		rel, err := filepath.Rel(tempDir, path)
		if err != nil {
			continue
		}
		if skipPath(rel) {
			continue
		}
		name := filepath.Base(path)
		text, err := ParseFile(path)
		if err != nil {
			zap.L().Warn("failed to parse archive entry",
				zap.String("archive", zipPath), zap.String("entry", name), zap.Error(err))
			continue
		}
		if text != "" {
			sources[stem+"/"+name] = text
		}
	}

	return nil
}

// loadDirectory parses every regular file in dir, keying results
// "<prefix>/<file name>". Parse failures are logged and skipped.
func loadDirectory(dir, prefix string, sources map[string]string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		zap.L().Warn("failed to read directory", zap.String("dir", dir), zap.Error(err))
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || skipFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		text, err := ParseFile(path)
		if err != nil {
			zap.L().Warn("failed to parse file", zap.String("path", path), zap.Error(err))
			continue
		}
		if text != "" {
			sources[prefix+"/"+entry.Name()] = text
		}
	}
}

// skipFile reports whether a file name is hidden or an OS artifact.
func skipFile(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "__")
}

// skipPath applies skipFile to every component of a relative path, so that
// archive junk like __MACOSX/foo.txt is excluded wholesale.
func skipPath(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if skipFile(part) {
			return true
		}
	}
	return false
}

// ParseFile dispatches to the parser for the file's extension. It returns an
// error for unsupported extensions.
func ParseFile(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return ParseExcel(path)
	case ".md":
		content, err := os.ReadFile(path)
		if err != nil {
			return "", eris.Wrap(err, "source: read markdown")
		}
		return string(content), nil
	case ".txt":
		return readTextFile(path)
	case ".docx":
		return ParseDocx(path)
	case ".pdf", ".doc":
		// No structured parser for these formats; recover printable runs.
		return ScanPrintable(path)
	default:
		return "", eris.Errorf("source: unsupported file type %q", filepath.Ext(path))
	}
}

// readTextFile reads a plain text file, decoding as Latin-1 when the bytes
// are not valid UTF-8.
func readTextFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrap(err, "source: read text file")
	}
	if utf8.Valid(content) {
		return string(content), nil
	}
	runes := make([]rune, len(content))
	for i, b := range content {
		runes[i] = rune(b)
	}
	return string(runes), nil
}
