package http

import (
	"strings"

	"github.com/datasteward/dqtracker/internal/entity"
)

const statusValuesMessage = "status must be one of: open, in_progress, resolved, closed"

// validateIssuePayload checks the required issue fields and returns one
// error per violation so the client sees every problem at once.
func validateIssuePayload(request CreateIssueRequest) []string {
	var errs []string

	if strings.TrimSpace(request.DatasetName) == "" {
		errs = append(errs, "dataset_name is required")
	}
	if strings.TrimSpace(request.Description) == "" {
		errs = append(errs, "description is required")
	}
	if strings.TrimSpace(request.Owner) == "" {
		errs = append(errs, "owner is required")
	}
	if strings.TrimSpace(request.IssueType) == "" {
		errs = append(errs, "issue_type is required")
	}
	if request.Status != "" && !entity.ValidStatus(request.Status) {
		errs = append(errs, statusValuesMessage)
	}

	return errs
}
