package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flowchain/flowchain/internal/models"
	"github.com/flowchain/flowchain/internal/repository"
)

// Expense create and update accept multipart form data so the receipt image
// can ride along with the fields. JSON bodies work too.

type expenseRequest struct {
	Name        *string `json:"name"`
	ProjectID   *string `json:"projectId"`
	PeriodStart *string `json:"periodStart"`
	PeriodEnd   *string `json:"periodEnd"`
	ImageURL    *string `json:"imageUrl"`
	Description *string `json:"description"`
}

func (r expenseRequest) apply(e *models.Expense) {
	if r.Name != nil {
		e.Name = *r.Name
	}
	if r.ProjectID != nil {
		e.ProjectID = r.ProjectID
	}
	if r.PeriodStart != nil {
		e.PeriodStart = r.PeriodStart
	}
	if r.PeriodEnd != nil {
		e.PeriodEnd = r.PeriodEnd
	}
	if r.ImageURL != nil {
		e.ImageURL = r.ImageURL
	}
	if r.Description != nil {
		e.Description = r.Description
	}
}

// bindExpenseRequest reads the expense fields from either a JSON body or a
// multipart form. With multipart, an optional "image" file is stored and its
// URL folded into the request.
func (s *Server) bindExpenseRequest(c *gin.Context) (expenseRequest, bool) {
	var req expenseRequest

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		formValue := func(key string) *string {
			if v, ok := c.GetPostForm(key); ok {
				return &v
			}
			return nil
		}
		req.Name = formValue("name")
		req.ProjectID = formValue("projectId")
		req.PeriodStart = formValue("periodStart")
		req.PeriodEnd = formValue("periodEnd")
		req.Description = formValue("description")

		if _, err := c.FormFile("image"); err == nil {
			name, err := s.saveUpload(c, "image")
			if err != nil {
				s.logger.Error("Receipt upload failed", zap.Error(err))
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return req, false
			}
			url := "/uploads/" + name
			req.ImageURL = &url
		}
		return req, true
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return req, false
	}
	return req, true
}

func (s *Server) listExpenses(c *gin.Context) {
	expenses, err := s.deps.Expenses.List(repository.ExpenseFilter{
		Search:    c.Query("search"),
		ProjectID: c.Query("projectId"),
	})
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

func (s *Server) getExpense(c *gin.Context) {
	expense, err := s.deps.Expenses.GetByID(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if expense == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
		return
	}
	c.JSON(http.StatusOK, expense)
}

func (s *Server) createExpense(c *gin.Context) {
	req, ok := s.bindExpenseRequest(c)
	if !ok {
		return
	}
	if req.Name == nil || *req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Expense name is required"})
		return
	}

	var expense models.Expense
	req.apply(&expense)
	if err := s.deps.Expenses.Create(&expense); err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

func (s *Server) updateExpense(c *gin.Context) {
	req, ok := s.bindExpenseRequest(c)
	if !ok {
		return
	}

	expense, err := s.deps.Expenses.GetByID(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if expense == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
		return
	}

	req.apply(expense)
	updated, err := s.deps.Expenses.Update(expense)
	if err != nil {
		internalError(c)
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
		return
	}
	c.JSON(http.StatusOK, expense)
}

func (s *Server) deleteExpense(c *gin.Context) {
	deleted, err := s.deps.Expenses.Delete(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) extractExpenseReceipt(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file uploaded"})
		return
	}

	tmp, err := os.CreateTemp("", "receipt-*"+strings.ToLower(filepath.Ext(file.Filename)))
	if err != nil {
		internalError(c)
		return
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		internalError(c)
		return
	}

	extraction, err := s.deps.Extractor.Extract(c.Request.Context(), tmpPath)
	if err != nil {
		s.logger.Error("OCR extraction failed", zap.String("filename", file.Filename), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process image with OCR"})
		return
	}

	c.JSON(http.StatusOK, extraction)
}

type suggestCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ReceiptText string `json:"receiptText"`
}

func (s *Server) suggestExpenseCategory(c *gin.Context) {
	if s.deps.Suggester == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Category suggestion is not configured"})
		return
	}

	var req suggestCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Expense name is required"})
		return
	}

	suggestion, err := s.deps.Suggester.Suggest(c.Request.Context(), req.Name, req.Description, req.ReceiptText)
	if err != nil {
		s.logger.Error("Category suggestion failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to suggest category"})
		return
	}

	c.JSON(http.StatusOK, suggestion)
}
