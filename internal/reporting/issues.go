// File: internal/reporting/issues.go
// Description: Issue intake. Issues are produced by an external analysis pass
// and handed to docmend as a JSON array; ids are defaulted when the producer
// did not assign any.

package reporting

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/docmend/api/schemas"
)

// LoadIssues reads an issue list from a JSON file. Issues arriving without an
// id get a generated one so every job can be addressed individually.
func LoadIssues(path string) ([]schemas.Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reporting: reading issues file %s: %w", path, err)
	}
	return ParseIssues(data)
}

// ParseIssues decodes a JSON array of issues and fills in missing ids.
func ParseIssues(data []byte) ([]schemas.Issue, error) {
	var issues []schemas.Issue
	if err := json.Unmarshal(data, &issues); err != nil {
		return nil, fmt.Errorf("reporting: decoding issues: %w", err)
	}
	for i := range issues {
		if issues[i].ID == "" {
			issues[i].ID = uuid.NewString()
		}
	}
	return issues, nil
}
