package http

import (
	"fmt"
	"math"
	"net/http"

	"github.com/datasteward/dqtracker/internal/appcontext"
	"github.com/datasteward/dqtracker/internal/entity"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// formatAverage renders a score average as a fixed two-decimal string.
// When the issue table is empty the dashboard reports the bare number 0
// instead; callers handle that branch. A nil average (no contributing
// rows in a non-empty table) formats as "0.00".
func formatAverage(avg *float64) string {
	if avg == nil {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", *avg)
}

// GetDashboardStats computes overall and per-dataset quality statistics
// over the full, unfiltered issue set.
func GetDashboardStats(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		var totalIssues int64
		if err := ctx.DB.Model(&entity.Issue{}).Count(&totalIssues).Error; err != nil {
			ctx.Logger.Error("Failed to count issues", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch dashboard stats"})
			return
		}

		var openIssues int64
		if err := ctx.DB.Model(&entity.Issue{}).Where("status = ?", entity.StatusOpen).Count(&openIssues).Error; err != nil {
			ctx.Logger.Error("Failed to count open issues", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch dashboard stats"})
			return
		}

		var resolvedIssues int64
		if err := ctx.DB.Model(&entity.Issue{}).Where("status = ?", entity.StatusResolved).Count(&resolvedIssues).Error; err != nil {
			ctx.Logger.Error("Failed to count resolved issues", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch dashboard stats"})
			return
		}

		var averages struct {
			AvgAccuracy     *float64
			AvgCompleteness *float64
			AvgTimeliness   *float64
		}
		err := ctx.DB.Model(&entity.Issue{}).
			Select("AVG(accuracy_score) as avg_accuracy, AVG(completeness_score) as avg_completeness, AVG(timeliness_score) as avg_timeliness").
			Scan(&averages).Error
		if err != nil {
			ctx.Logger.Error("Failed to compute score averages", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch dashboard stats"})
			return
		}

		// The average fields are two-decimal strings, except when there
		// are no issues at all, where the API has always reported the
		// bare number 0. Clients depend on the asymmetry.
		var avgAccuracy, avgCompleteness, avgTimeliness interface{}
		if totalIssues == 0 {
			avgAccuracy, avgCompleteness, avgTimeliness = 0, 0, 0
		} else {
			avgAccuracy = formatAverage(averages.AvgAccuracy)
			avgCompleteness = formatAverage(averages.AvgCompleteness)
			avgTimeliness = formatAverage(averages.AvgTimeliness)
		}

		var datasetRows []struct {
			DatasetName    string
			TotalIssues    int64
			OpenIssues     int64
			ResolvedIssues int64
			QualityScore   *float64
		}
		err = ctx.DB.Model(&entity.Issue{}).
			Select(`dataset_name,
				COUNT(*) as total_issues,
				SUM(CASE WHEN status = 'open' THEN 1 ELSE 0 END) as open_issues,
				SUM(CASE WHEN status = 'resolved' THEN 1 ELSE 0 END) as resolved_issues,
				(COALESCE(SUM(accuracy_score), 0) + COALESCE(SUM(completeness_score), 0) + COALESCE(SUM(timeliness_score), 0)) * 1.0 /
					NULLIF(COUNT(accuracy_score) + COUNT(completeness_score) + COUNT(timeliness_score), 0) as quality_score`).
			Group("dataset_name").
			Order("dataset_name").
			Scan(&datasetRows).Error
		if err != nil {
			ctx.Logger.Error("Failed to compute dataset stats", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch dashboard stats"})
			return
		}

		datasetStats := make([]gin.H, 0, len(datasetRows))
		for _, row := range datasetRows {
			quality := 0.0
			if row.QualityScore != nil {
				quality = math.Round(*row.QualityScore*100) / 100
			}
			datasetStats = append(datasetStats, gin.H{
				"dataset_name":   row.DatasetName,
				"totalIssues":    row.TotalIssues,
				"openIssues":     row.OpenIssues,
				"resolvedIssues": row.ResolvedIssues,
				"qualityScore":   quality,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"datasetStats": datasetStats,
				"overallStats": gin.H{
					"totalIssues":     totalIssues,
					"openIssues":      openIssues,
					"resolvedIssues":  resolvedIssues,
					"avgAccuracy":     avgAccuracy,
					"avgCompleteness": avgCompleteness,
					"avgTimeliness":   avgTimeliness,
				},
			},
		})
	}
}
