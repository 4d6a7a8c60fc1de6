package admin

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lokroom_back_end/internal/database"
	"lokroom_back_end/internal/models"
)

// GetAuditLogs récupère les logs d'audit avec filtres
// GET /api/admin/audit?user_id=&action=&resource=&success=&limit=
func GetAuditLogs(c *gin.Context) {
	usersSession, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// Paramètres de filtrage
	userID := c.Query("user_id")
	action := c.Query("action")
	resource := c.Query("resource")
	success := c.Query("success")
	limitStr := c.DefaultQuery("limit", "100")

	limit, _ := strconv.Atoi(limitStr)
	if limit > 500 {
		limit = 500
	}

	// Construire la requête dynamiquement
	var query string
	var args []interface{}

	baseQuery := `SELECT id, user_id, user_email, action, resource, resource_id,
				  old_value, new_value, ip_address, user_agent, success,
				  error_msg, timestamp, session_id FROM audit_logs`

	conditions := []string{}

	if userID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, userID)
	}

	if action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, action)
	}

	if resource != "" {
		conditions = append(conditions, "resource = ?")
		args = append(args, resource)
	}

	if success != "" {
		successBool, _ := strconv.ParseBool(success)
		conditions = append(conditions, "success = ?")
		args = append(args, successBool)
	}

	if len(conditions) > 0 {
		query = baseQuery + " WHERE " + conditions[0]
		for i := 1; i < len(conditions); i++ {
			query += " AND " + conditions[i]
		}
	} else {
		query = baseQuery
	}

	query += " LIMIT ?"
	args = append(args, limit)

	iter := usersSession.Query(query, args...).Iter()

	var logs []models.AuditLog
	var auditLog models.AuditLog

	for iter.Scan(&auditLog.ID, &auditLog.UserID, &auditLog.UserEmail,
		&auditLog.Action, &auditLog.Resource, &auditLog.ResourceID,
		&auditLog.OldValue, &auditLog.NewValue, &auditLog.IPAddress,
		&auditLog.UserAgent, &auditLog.Success, &auditLog.ErrorMsg,
		&auditLog.Timestamp, &auditLog.SessionID) {
		logs = append(logs, auditLog)
	}

	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur récupération logs audit: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"total": len(logs),
		"filters": gin.H{
			"user_id":  userID,
			"action":   action,
			"resource": resource,
			"success":  success,
			"limit":    limit,
		},
	})
}

// GetAuditLogsByResource récupère les logs pour une ressource spécifique
// GET /api/admin/audit/:resource/:resource_id
func GetAuditLogsByResource(c *gin.Context) {
	resource := c.Param("resource")
	resourceID := c.Param("resource_id")
	limitStr := c.DefaultQuery("limit", "50")

	limit, _ := strconv.Atoi(limitStr)
	if limit > 200 {
		limit = 200
	}

	usersSession, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	query := `SELECT id, user_id, user_email, action, resource, resource_id,
			  old_value, new_value, ip_address, user_agent, success,
			  error_msg, timestamp, session_id FROM audit_logs
			  WHERE resource = ? AND resource_id = ? LIMIT ?`

	iter := usersSession.Query(query, resource, resourceID, limit).Iter()

	var logs []models.AuditLog
	var auditLog models.AuditLog

	for iter.Scan(&auditLog.ID, &auditLog.UserID, &auditLog.UserEmail,
		&auditLog.Action, &auditLog.Resource, &auditLog.ResourceID,
		&auditLog.OldValue, &auditLog.NewValue, &auditLog.IPAddress,
		&auditLog.UserAgent, &auditLog.Success, &auditLog.ErrorMsg,
		&auditLog.Timestamp, &auditLog.SessionID) {
		logs = append(logs, auditLog)
	}

	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur récupération logs audit: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"resource":    resource,
		"resource_id": resourceID,
		"logs":        logs,
		"total":       len(logs),
	})
}
