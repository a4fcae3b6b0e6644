package http

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/datasteward/dqtracker/internal/appcontext"
	"github.com/datasteward/dqtracker/internal/entity"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// exportColumns is the fixed CSV column order. Consumers parse exports
// positionally, so the order is part of the contract.
var exportColumns = []string{
	"dataset_name",
	"description",
	"owner",
	"issue_type",
	"category",
	"severity",
	"accuracy_score",
	"completeness_score",
	"timeliness_score",
	"status",
	"created_at",
}

func formatScore(score *int) string {
	if score == nil {
		return ""
	}
	return strconv.Itoa(*score)
}

// ExportCSV serializes every issue to CSV, with category and severity
// resolved to their names inline. The export is always unfiltered.
func ExportCSV(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		var issues []entity.Issue
		err := ctx.DB.
			Preload("Category").
			Preload("Severity").
			Order("created_at DESC").
			Find(&issues).Error
		if err != nil {
			ctx.Logger.Error("Failed to fetch issues for export", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to export data"})
			return
		}

		var buf bytes.Buffer
		writer := csv.NewWriter(&buf)

		if err := writer.Write(exportColumns); err != nil {
			ctx.Logger.Error("Failed to write CSV header", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to export data"})
			return
		}

		for _, issue := range issues {
			categoryName := ""
			if issue.Category != nil {
				categoryName = issue.Category.Name
			}
			severityName := ""
			if issue.Severity != nil {
				severityName = issue.Severity.Name
			}

			record := []string{
				issue.DatasetName,
				issue.Description,
				issue.Owner,
				issue.IssueType,
				categoryName,
				severityName,
				formatScore(issue.AccuracyScore),
				formatScore(issue.CompletenessScore),
				formatScore(issue.TimelinessScore),
				issue.Status,
				issue.CreatedAt.Format(time.RFC3339),
			}
			if err := writer.Write(record); err != nil {
				ctx.Logger.Error("Failed to write CSV record", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to export data"})
				return
			}
		}

		writer.Flush()
		if err := writer.Error(); err != nil {
			ctx.Logger.Error("Failed to flush CSV", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to export data"})
			return
		}

		c.Header("Content-Disposition", "attachment; filename=data-quality-issues.csv")
		c.Data(http.StatusOK, "text/csv", buf.Bytes())
	}
}
