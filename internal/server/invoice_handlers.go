package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flowchain/flowchain/internal/models"
	"github.com/flowchain/flowchain/internal/repository"
)

type invoiceRequest struct {
	Number        *string `json:"number"`
	Type          *string `json:"type"`
	PartnerID     *string `json:"partnerId"`
	ProjectID     *string `json:"projectId"`
	Status        *string `json:"status"`
	UntaxedAmount *string `json:"untaxedAmount"`
	TotalAmount   *string `json:"totalAmount"`
}

func (r invoiceRequest) apply(inv *models.Invoice) {
	if r.Number != nil {
		inv.Number = *r.Number
	}
	if r.Type != nil {
		inv.Type = *r.Type
	}
	if r.PartnerID != nil {
		inv.PartnerID = r.PartnerID
	}
	if r.ProjectID != nil {
		inv.ProjectID = r.ProjectID
	}
	if r.Status != nil {
		inv.Status = *r.Status
	}
	if r.UntaxedAmount != nil {
		inv.UntaxedAmount = *r.UntaxedAmount
	}
	if r.TotalAmount != nil {
		inv.TotalAmount = *r.TotalAmount
	}
}

func (s *Server) listInvoices(c *gin.Context) {
	invoices, err := s.deps.Invoices.List(repository.InvoiceFilter{
		Search:    c.Query("search"),
		Type:      c.Query("type"),
		ProjectID: c.Query("projectId"),
		PartnerID: c.Query("partnerId"),
		Status:    c.Query("status"),
	})
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func (s *Server) getInvoice(c *gin.Context) {
	invoice, err := s.deps.Invoices.GetByID(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if invoice == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (s *Server) createInvoice(c *gin.Context) {
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Number == nil || *req.Number == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invoice number is required"})
		return
	}

	var invoice models.Invoice
	req.apply(&invoice)
	if err := s.deps.Invoices.Create(&invoice); err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func (s *Server) updateInvoice(c *gin.Context) {
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	invoice, err := s.deps.Invoices.GetByID(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if invoice == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}

	req.apply(invoice)
	updated, err := s.deps.Invoices.Update(invoice)
	if err != nil {
		internalError(c)
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (s *Server) deleteInvoice(c *gin.Context) {
	deleted, err := s.deps.Invoices.Delete(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

type invoiceLineRequest struct {
	ProductID *string `json:"productId"`
	Quantity  *string `json:"quantity"`
	UnitPrice *string `json:"unitPrice"`
	TaxIDs    *string `json:"taxIds"`
	Amount    *string `json:"amount"`
}

func (r invoiceLineRequest) apply(l *models.InvoiceLine) {
	if r.ProductID != nil {
		l.ProductID = r.ProductID
	}
	if r.Quantity != nil {
		l.Quantity = *r.Quantity
	}
	if r.UnitPrice != nil {
		l.UnitPrice = *r.UnitPrice
	}
	if r.TaxIDs != nil {
		l.TaxIDs = r.TaxIDs
	}
	if r.Amount != nil {
		l.Amount = *r.Amount
	}
}

func (s *Server) listInvoiceLines(c *gin.Context) {
	invoice, err := s.deps.Invoices.GetByID(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if invoice == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}

	lines, err := s.deps.Invoices.ListLines(invoice.ID)
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, lines)
}

func (s *Server) addInvoiceLine(c *gin.Context) {
	var req invoiceLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	invoice, err := s.deps.Invoices.GetByID(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if invoice == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}

	line := models.InvoiceLine{InvoiceID: invoice.ID}
	req.apply(&line)
	if err := s.deps.Invoices.AddLine(&line); err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusCreated, line)
}

func (s *Server) updateInvoiceLine(c *gin.Context) {
	var req invoiceLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	line, err := s.deps.Invoices.GetLine(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if line == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice line not found"})
		return
	}

	req.apply(line)
	updated, err := s.deps.Invoices.UpdateLine(line)
	if err != nil {
		internalError(c)
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice line not found"})
		return
	}
	c.JSON(http.StatusOK, line)
}

func (s *Server) deleteInvoiceLine(c *gin.Context) {
	deleted, err := s.deps.Invoices.DeleteLine(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice line not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) exportInvoice(c *gin.Context) {
	id := c.Param("id")
	data, err := s.exporter.ExportXLSX(id)
	if err != nil {
		s.logger.Error("Invoice export failed", zap.String("invoice_id", id), zap.Error(err))
		internalError(c)
		return
	}
	if data == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}

	invoice, err := s.deps.Invoices.GetByID(id)
	if err != nil || invoice == nil {
		internalError(c)
		return
	}

	filename := fmt.Sprintf("invoice-%s.xlsx", invoice.Number)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
