package http

import (
	"math"
	"net/http"
	"strconv"

	"github.com/datasteward/dqtracker/internal/appcontext"
	"github.com/datasteward/dqtracker/internal/entity"
	"github.com/datasteward/dqtracker/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sortableColumns whitelists the order-by targets for issue listing.
// Unknown sort keys fall back to created_at rather than reaching the
// SQL layer.
var sortableColumns = map[string]bool{
	"created_at":         true,
	"updated_at":         true,
	"dataset_name":       true,
	"owner":              true,
	"issue_type":         true,
	"status":             true,
	"accuracy_score":     true,
	"completeness_score": true,
	"timeliness_score":   true,
}

// updatableColumns whitelists the columns a partial update may touch.
// id, created_at and created_by are immutable regardless of payload.
var updatableColumns = map[string]bool{
	"dataset_name":       true,
	"description":        true,
	"owner":              true,
	"issue_type":         true,
	"category_id":        true,
	"severity_id":        true,
	"accuracy_score":     true,
	"completeness_score": true,
	"timeliness_score":   true,
	"status":             true,
}

func issueWithJoins(ctx *appcontext.Context, id uuid.UUID) (*entity.Issue, error) {
	var issue entity.Issue
	err := ctx.DB.Preload("Category").Preload("Severity").First(&issue, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func ListIssues(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || page < 1 {
			page = 1
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if err != nil || limit < 1 {
			limit = 10
		}

		sort := c.DefaultQuery("sort", "created_at")
		if !sortableColumns[sort] {
			sort = "created_at"
		}
		direction := "DESC"
		if c.DefaultQuery("order", "desc") == "asc" {
			direction = "ASC"
		}

		query := ctx.DB.Model(&entity.Issue{})
		if dataset := c.Query("dataset"); dataset != "" {
			query = query.Where("LOWER(dataset_name) LIKE LOWER(?)", "%"+dataset+"%")
		}
		if category := c.Query("category"); category != "" {
			query = query.Where("category_id = ?", category)
		}
		if severity := c.Query("severity"); severity != "" {
			query = query.Where("severity_id = ?", severity)
		}
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		if owner := c.Query("owner"); owner != "" {
			query = query.Where("LOWER(owner) LIKE LOWER(?)", "%"+owner+"%")
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			ctx.Logger.Error("Failed to count issues", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch issues"})
			return
		}

		var issues []entity.Issue
		err = query.
			Preload("Category").
			Preload("Severity").
			Order(sort + " " + direction).
			Offset((page - 1) * limit).
			Limit(limit).
			Find(&issues).Error
		if err != nil {
			ctx.Logger.Error("Failed to fetch issues", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch issues"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    issues,
			"pagination": gin.H{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": int(math.Ceil(float64(total) / float64(limit))),
			},
		})
	}
}

func GetIssue(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Issue not found"})
			return
		}

		issue, err := issueWithJoins(ctx, id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Issue not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": issue})
	}
}

// CreateIssueRequest is the issue-create payload. Lookup references and
// scores are pointers so absent fields stay NULL in the store.
type CreateIssueRequest struct {
	DatasetName       string     `json:"dataset_name"`
	Description       string     `json:"description"`
	Owner             string     `json:"owner"`
	IssueType         string     `json:"issue_type"`
	CategoryID        *uuid.UUID `json:"category_id"`
	SeverityID        *uuid.UUID `json:"severity_id"`
	AccuracyScore     *int       `json:"accuracy_score"`
	CompletenessScore *int       `json:"completeness_score"`
	TimelinessScore   *int       `json:"timeliness_score"`
	Status            string     `json:"status"`
}

// nilIfZeroScore maps zero-value scores to NULL, matching the falsy
// coercion of the original API contract.
func nilIfZeroScore(score *int) *int {
	if score == nil || *score == 0 {
		return nil
	}
	return score
}

func nilIfZeroID(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	return id
}

func CreateIssue(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request CreateIssueRequest
		if err := c.BindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": []string{"invalid request body"}})
			return
		}

		if errs := validateIssuePayload(request); len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": errs})
			return
		}

		userID, err := utils.GetUserIDFromContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired authentication token"})
			return
		}

		status := request.Status
		if status == "" {
			status = entity.StatusOpen
		}

		issue := entity.Issue{
			DatasetName:       request.DatasetName,
			Description:       request.Description,
			Owner:             request.Owner,
			IssueType:         request.IssueType,
			CategoryID:        nilIfZeroID(request.CategoryID),
			SeverityID:        nilIfZeroID(request.SeverityID),
			AccuracyScore:     nilIfZeroScore(request.AccuracyScore),
			CompletenessScore: nilIfZeroScore(request.CompletenessScore),
			TimelinessScore:   nilIfZeroScore(request.TimelinessScore),
			Status:            status,
			CreatedBy:         userID,
		}

		if err := ctx.DB.Create(&issue).Error; err != nil {
			ctx.Logger.Error("Failed to create issue", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create issue"})
			return
		}

		created, err := issueWithJoins(ctx, issue.ID)
		if err != nil {
			ctx.Logger.Error("Failed to reload created issue", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create issue"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Issue created successfully",
			"data":    created,
		})
	}
}

// UpdateIssue applies a partial payload to an existing issue. There is
// no ownership scoping: any authenticated user may edit any issue, and
// created_by is provenance only.
func UpdateIssue(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Issue not found"})
			return
		}

		var payload map[string]interface{}
		if err := c.BindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
			return
		}

		updates := make(map[string]interface{}, len(payload))
		for key, value := range payload {
			if updatableColumns[key] {
				updates[key] = value
			}
		}

		// The status column carries the enum invariant; nothing outside
		// the four known values may be written.
		if raw, ok := updates["status"]; ok {
			status, _ := raw.(string)
			if !entity.ValidStatus(status) {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": statusValuesMessage})
				return
			}
		}

		var issue entity.Issue
		if err := ctx.DB.First(&issue, "id = ?", id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Issue not found"})
			return
		}

		if len(updates) > 0 {
			if err := ctx.DB.Model(&issue).Updates(updates).Error; err != nil {
				ctx.Logger.Error("Failed to update issue", zap.Error(err), zap.String("issue_id", id.String()))
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update issue"})
				return
			}
		}

		updated, err := issueWithJoins(ctx, id)
		if err != nil {
			ctx.Logger.Error("Failed to reload updated issue", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update issue"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Issue updated successfully",
			"data":    updated,
		})
	}
}

// DeleteIssue removes an issue outright. A delete that matches zero
// rows still reports success; only a store failure surfaces as an error.
func DeleteIssue(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete issue"})
			return
		}

		if err := ctx.DB.Delete(&entity.Issue{}, "id = ?", id).Error; err != nil {
			ctx.Logger.Error("Failed to delete issue", zap.Error(err), zap.String("issue_id", id.String()))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete issue"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Issue deleted successfully"})
	}
}
