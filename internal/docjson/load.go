package docjson

import (
	"encoding/json"
	"os"

	"git.home.luguber.info/inful/typdocs/internal/errors"
)

// LoadExport reads a documentation export file: an ordered array of top-level
// page trees.
func LoadExport(path string) ([]Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read export").WithContext("path", path)
	}
	return ParseExport(data)
}

// ParseExport decodes an export document from raw JSON.
func ParseExport(data []byte) ([]Page, error) {
	var pages []Page
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, errors.WrapError(err, errors.CategoryParse, "failed to decode export JSON")
	}
	return pages, nil
}
