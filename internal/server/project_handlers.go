package server

import (
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flowchain/flowchain/internal/auth"
	"github.com/flowchain/flowchain/internal/models"
)

type projectRequest struct {
	Name           *string    `json:"name"`
	Description    *string    `json:"description"`
	Manager        *string    `json:"manager"`
	Deadline       *time.Time `json:"deadline"`
	Status         *string    `json:"status"`
	Budget         *float64   `json:"budget"`
	BudgetSpent    *float64   `json:"budgetSpent"`
	Cost           *float64   `json:"cost"`
	Revenue        *float64   `json:"revenue"`
	TotalTasks     *int       `json:"totalTasks"`
	CompletedTasks *int       `json:"completedTasks"`
	Progress       *int       `json:"progress"`
	Tags           *string    `json:"tags"`
}

// apply copies the fields present in the request onto the project
func (r projectRequest) apply(p *models.Project) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Description != nil {
		p.Description = r.Description
	}
	if r.Manager != nil {
		p.Manager = *r.Manager
	}
	if r.Deadline != nil {
		p.Deadline = r.Deadline
	}
	if r.Status != nil {
		p.Status = *r.Status
	}
	if r.Budget != nil {
		p.Budget = *r.Budget
	}
	if r.BudgetSpent != nil {
		p.BudgetSpent = *r.BudgetSpent
	}
	if r.Cost != nil {
		p.Cost = *r.Cost
	}
	if r.Revenue != nil {
		p.Revenue = *r.Revenue
	}
	if r.TotalTasks != nil {
		p.TotalTasks = *r.TotalTasks
	}
	if r.CompletedTasks != nil {
		p.CompletedTasks = *r.CompletedTasks
	}
	if r.Progress != nil {
		p.Progress = *r.Progress
	}
	if r.Tags != nil {
		p.Tags = r.Tags
	}
}

func (s *Server) listProjects(c *gin.Context) {
	projects, err := s.deps.Projects.List()
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (s *Server) getProject(c *gin.Context) {
	project, err := s.deps.Projects.GetByID(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

func (s *Server) createProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Name == nil || *req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project name is required"})
		return
	}

	var project models.Project
	req.apply(&project)
	if err := s.deps.Projects.Create(&project); err != nil {
		internalError(c)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Project created successfully",
		"project": project,
	})
}

func (s *Server) updateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	project, err := s.deps.Projects.GetByID(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	req.apply(project)
	updated, err := s.deps.Projects.Update(project)
	if err != nil {
		internalError(c)
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project updated successfully",
		"project": project,
	})
}

func (s *Server) deleteProject(c *gin.Context) {
	deleted, err := s.deps.Projects.Delete(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

type taskRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	ProjectID   *string    `json:"projectId"`
	AssigneeID  *string    `json:"assigneeId"`
	Status      *string    `json:"status"`
	IsBillable  *bool      `json:"isBillable"`
	TotalHours  *float64   `json:"totalHours"`
	Deadline    *time.Time `json:"deadline"`
	ImageURL    *string    `json:"imageUrl"`
	Tags        *string    `json:"tags"`
}

func (r taskRequest) apply(t *models.Task) {
	if r.Name != nil {
		t.Name = *r.Name
	}
	if r.Description != nil {
		t.Description = r.Description
	}
	if r.ProjectID != nil {
		t.ProjectID = r.ProjectID
	}
	if r.AssigneeID != nil {
		t.AssigneeID = r.AssigneeID
	}
	if r.Status != nil {
		t.Status = *r.Status
	}
	if r.IsBillable != nil {
		t.IsBillable = *r.IsBillable
	}
	if r.TotalHours != nil {
		t.TotalHours = *r.TotalHours
	}
	if r.Deadline != nil {
		t.Deadline = r.Deadline
	}
	if r.ImageURL != nil {
		t.ImageURL = r.ImageURL
	}
	if r.Tags != nil {
		t.Tags = r.Tags
	}
}

func (s *Server) listTasks(c *gin.Context) {
	var tasks []models.Task
	var err error

	if assignedTo := c.Query("assignedTo"); assignedTo != "" {
		tasks, err = s.deps.Tasks.ListByAssignee(assignedTo)
	} else {
		tasks, err = s.deps.Tasks.List()
	}
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (s *Server) getTask(c *gin.Context) {
	task, err := s.deps.Tasks.GetByID(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (s *Server) createTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Name == nil || *req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task name is required"})
		return
	}

	var task models.Task
	req.apply(&task)
	if claims := auth.CurrentUser(c); claims != nil {
		id := claims.UserID
		task.LastModifiedBy = &id
	}
	if req.IsBillable == nil {
		task.IsBillable = true
	}
	if err := s.deps.Tasks.Create(&task); err != nil {
		internalError(c)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Task created successfully",
		"task":    task,
	})
}

func (s *Server) updateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	task, err := s.deps.Tasks.GetByID(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	req.apply(task)
	if claims := auth.CurrentUser(c); claims != nil {
		id := claims.UserID
		task.LastModifiedBy = &id
	}
	updated, err := s.deps.Tasks.Update(task)
	if err != nil {
		internalError(c)
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task updated successfully",
		"task":    task,
	})
}

func (s *Server) deleteTask(c *gin.Context) {
	deleted, err := s.deps.Tasks.Delete(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

type timesheetRequest struct {
	TaskID      *string  `json:"taskId"`
	EmployeeID  *string  `json:"employeeId"`
	Description *string  `json:"description"`
	TimeLogged  *float64 `json:"timeLogged"`
	Billable    *bool    `json:"billable"`
}

func (r timesheetRequest) apply(ts *models.Timesheet) {
	if r.TaskID != nil {
		ts.TaskID = *r.TaskID
	}
	if r.EmployeeID != nil {
		ts.EmployeeID = *r.EmployeeID
	}
	if r.Description != nil {
		ts.Description = r.Description
	}
	if r.TimeLogged != nil {
		ts.TimeLogged = *r.TimeLogged
	}
	if r.Billable != nil {
		ts.Billable = *r.Billable
	}
}

func (s *Server) listTaskTimesheets(c *gin.Context) {
	timesheets, err := s.deps.Timesheets.ListByTask(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timesheets": timesheets})
}

func (s *Server) createTimesheet(c *gin.Context) {
	var req timesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.TaskID == nil || *req.TaskID == "" || req.EmployeeID == nil || *req.EmployeeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task and employee are required"})
		return
	}
	if req.TimeLogged != nil && *req.TimeLogged < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Time logged must not be negative"})
		return
	}

	timesheet := models.Timesheet{Billable: true}
	req.apply(&timesheet)
	if err := s.deps.Timesheets.Create(&timesheet); err != nil {
		internalError(c)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Timesheet created successfully",
		"timesheet": timesheet,
	})
}

func (s *Server) updateTimesheet(c *gin.Context) {
	var req timesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.TimeLogged != nil && *req.TimeLogged < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Time logged must not be negative"})
		return
	}

	timesheet, err := s.deps.Timesheets.GetByID(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if timesheet == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Timesheet not found"})
		return
	}

	req.apply(timesheet)
	updated, err := s.deps.Timesheets.Update(timesheet)
	if err != nil {
		internalError(c)
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Timesheet not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Timesheet updated successfully",
		"timesheet": timesheet,
	})
}

func (s *Server) deleteTimesheet(c *gin.Context) {
	deleted, err := s.deps.Timesheets.Delete(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Timesheet not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Timesheet deleted successfully"})
}

var allowedUploadExts = map[string]bool{
	".jpeg": true, ".jpg": true, ".png": true, ".gif": true,
	".pdf": true, ".doc": true, ".docx": true,
}

// saveUpload stores a multipart file under the uploads directory with a
// collision-resistant name and returns the stored filename.
func (s *Server) saveUpload(c *gin.Context, field string) (string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", err
	}
	if file.Size > s.config.Uploads.MaxSizeBytes {
		return "", fmt.Errorf("file too large")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedUploadExts[ext] {
		return "", fmt.Errorf("invalid file type")
	}

	if err := os.MkdirAll(s.config.Uploads.Dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%d-%d%s", time.Now().UnixMilli(), rand.Intn(1_000_000_000), ext)
	if err := c.SaveUploadedFile(file, filepath.Join(s.config.Uploads.Dir, name)); err != nil {
		return "", err
	}
	return name, nil
}

func (s *Server) uploadFile(c *gin.Context) {
	if _, err := c.FormFile("file"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	name, err := s.saveUpload(c, "file")
	if err != nil {
		s.logger.Error("Upload failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "File uploaded successfully",
		"url":      "/uploads/" + name,
		"filename": name,
	})
}
