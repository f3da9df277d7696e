package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flowchain/flowchain/internal/models"
	"github.com/flowchain/flowchain/internal/repository"
)

type salesOrderRequest struct {
	Code          *string `json:"code"`
	CustomerID    *string `json:"customerId"`
	ProjectID     *string `json:"projectId"`
	Status        *string `json:"status"`
	UntaxedAmount *string `json:"untaxedAmount"`
	TotalAmount   *string `json:"totalAmount"`
}

func (r salesOrderRequest) apply(o *models.SalesOrder) {
	if r.Code != nil {
		o.Code = *r.Code
	}
	if r.CustomerID != nil {
		o.CustomerID = r.CustomerID
	}
	if r.ProjectID != nil {
		o.ProjectID = r.ProjectID
	}
	if r.Status != nil {
		o.Status = *r.Status
	}
	if r.UntaxedAmount != nil {
		o.UntaxedAmount = *r.UntaxedAmount
	}
	if r.TotalAmount != nil {
		o.TotalAmount = *r.TotalAmount
	}
}

func (s *Server) listSalesOrders(c *gin.Context) {
	orders, err := s.deps.SalesOrders.List(repository.SalesOrderFilter{
		Search:     c.Query("search"),
		ProjectID:  c.Query("projectId"),
		CustomerID: c.Query("customerId"),
		Status:     c.Query("status"),
	})
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) getSalesOrder(c *gin.Context) {
	order, err := s.deps.SalesOrders.GetByID(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sales order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) createSalesOrder(c *gin.Context) {
	var req salesOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Code == nil || *req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order code is required"})
		return
	}

	// Amounts start at zero regardless of what the client sent. Totals only
	// move through a subsequent update on the order itself.
	var order models.SalesOrder
	req.apply(&order)
	if err := s.deps.SalesOrders.Create(&order); err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (s *Server) updateSalesOrder(c *gin.Context) {
	var req salesOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	order, err := s.deps.SalesOrders.GetByID(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sales order not found"})
		return
	}

	req.apply(order)
	updated, err := s.deps.SalesOrders.Update(order)
	if err != nil {
		internalError(c)
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sales order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) deleteSalesOrder(c *gin.Context) {
	deleted, err := s.deps.SalesOrders.Delete(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sales order not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

type orderLineRequest struct {
	ProductID *string `json:"productId"`
	Quantity  *string `json:"quantity"`
	Unit      *string `json:"unit"`
	UnitPrice *string `json:"unitPrice"`
	TaxIDs    *string `json:"taxIds"`
	Amount    *string `json:"amount"`
}

func (s *Server) listSalesOrderLines(c *gin.Context) {
	order, err := s.deps.SalesOrders.GetByID(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sales order not found"})
		return
	}

	lines, err := s.deps.SalesOrders.ListLines(order.ID)
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, lines)
}

func (s *Server) addSalesOrderLine(c *gin.Context) {
	var req orderLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	order, err := s.deps.SalesOrders.GetByID(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sales order not found"})
		return
	}

	line := models.SalesOrderLine{OrderID: order.ID}
	applySalesOrderLine(req, &line)
	if err := s.deps.SalesOrders.AddLine(&line); err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusCreated, line)
}

func (s *Server) updateSalesOrderLine(c *gin.Context) {
	var req orderLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	line, err := s.deps.SalesOrders.GetLine(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if line == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order line not found"})
		return
	}

	applySalesOrderLine(req, line)
	updated, err := s.deps.SalesOrders.UpdateLine(line)
	if err != nil {
		internalError(c)
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order line not found"})
		return
	}
	c.JSON(http.StatusOK, line)
}

func (s *Server) deleteSalesOrderLine(c *gin.Context) {
	deleted, err := s.deps.SalesOrders.DeleteLine(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order line not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func applySalesOrderLine(r orderLineRequest, l *models.SalesOrderLine) {
	if r.ProductID != nil {
		l.ProductID = r.ProductID
	}
	if r.Quantity != nil {
		l.Quantity = *r.Quantity
	}
	if r.Unit != nil {
		l.Unit = r.Unit
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

type purchaseOrderRequest struct {
	Code          *string `json:"code"`
	VendorID      *string `json:"vendorId"`
	ProjectID     *string `json:"projectId"`
	Status        *string `json:"status"`
	UntaxedAmount *string `json:"untaxedAmount"`
	TotalAmount   *string `json:"totalAmount"`
}

func (r purchaseOrderRequest) apply(o *models.PurchaseOrder) {
	if r.Code != nil {
		o.Code = *r.Code
	}
	if r.VendorID != nil {
		o.VendorID = r.VendorID
	}
	if r.ProjectID != nil {
		o.ProjectID = r.ProjectID
	}
	if r.Status != nil {
		o.Status = *r.Status
	}
	if r.UntaxedAmount != nil {
		o.UntaxedAmount = *r.UntaxedAmount
	}
	if r.TotalAmount != nil {
		o.TotalAmount = *r.TotalAmount
	}
}

func (s *Server) listPurchaseOrders(c *gin.Context) {
	orders, err := s.deps.PurchaseOrders.List(repository.PurchaseOrderFilter{
		Search:    c.Query("search"),
		ProjectID: c.Query("projectId"),
		VendorID:  c.Query("vendorId"),
		Status:    c.Query("status"),
	})
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) getPurchaseOrder(c *gin.Context) {
	order, err := s.deps.PurchaseOrders.GetByID(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Purchase order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) createPurchaseOrder(c *gin.Context) {
	var req purchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Code == nil || *req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order code is required"})
		return
	}

	var order models.PurchaseOrder
	req.apply(&order)
	if err := s.deps.PurchaseOrders.Create(&order); err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (s *Server) updatePurchaseOrder(c *gin.Context) {
	var req purchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	order, err := s.deps.PurchaseOrders.GetByID(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Purchase order not found"})
		return
	}

	req.apply(order)
	updated, err := s.deps.PurchaseOrders.Update(order)
	if err != nil {
		internalError(c)
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Purchase order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) deletePurchaseOrder(c *gin.Context) {
	deleted, err := s.deps.PurchaseOrders.Delete(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Purchase order not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listPurchaseOrderLines(c *gin.Context) {
	order, err := s.deps.PurchaseOrders.GetByID(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Purchase order not found"})
		return
	}

	lines, err := s.deps.PurchaseOrders.ListLines(order.ID)
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, lines)
}

func (s *Server) addPurchaseOrderLine(c *gin.Context) {
	var req orderLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	order, err := s.deps.PurchaseOrders.GetByID(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Purchase order not found"})
		return
	}

	line := models.PurchaseOrderLine{OrderID: order.ID}
	applyPurchaseOrderLine(req, &line)
	if err := s.deps.PurchaseOrders.AddLine(&line); err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusCreated, line)
}

func (s *Server) updatePurchaseOrderLine(c *gin.Context) {
	var req orderLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	line, err := s.deps.PurchaseOrders.GetLine(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if line == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order line not found"})
		return
	}

	applyPurchaseOrderLine(req, line)
	updated, err := s.deps.PurchaseOrders.UpdateLine(line)
	if err != nil {
		internalError(c)
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order line not found"})
		return
	}
	c.JSON(http.StatusOK, line)
}

func (s *Server) deletePurchaseOrderLine(c *gin.Context) {
	deleted, err := s.deps.PurchaseOrders.DeleteLine(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order line not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func applyPurchaseOrderLine(r orderLineRequest, l *models.PurchaseOrderLine) {
	if r.ProductID != nil {
		l.ProductID = r.ProductID
	}
	if r.Quantity != nil {
		l.Quantity = *r.Quantity
	}
	if r.Unit != nil {
		l.Unit = r.Unit
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
