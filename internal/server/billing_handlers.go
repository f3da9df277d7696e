package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flowchain/flowchain/internal/models"
	"github.com/flowchain/flowchain/internal/repository"
)

// Billing endpoints return entities bare, without a message envelope.

type partnerRequest struct {
	Name    *string `json:"name"`
	Type    *string `json:"type"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

func (r partnerRequest) apply(p *models.Partner) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Type != nil {
		p.Type = *r.Type
	}
	if r.Email != nil {
		p.Email = r.Email
	}
	if r.Phone != nil {
		p.Phone = r.Phone
	}
	if r.Address != nil {
		p.Address = r.Address
	}
}

func (s *Server) listPartners(c *gin.Context) {
	partners, err := s.deps.Partners.List(repository.PartnerFilter{
		Search: c.Query("search"),
		Type:   c.Query("type"),
	})
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, partners)
}

func (s *Server) getPartner(c *gin.Context) {
	partner, err := s.deps.Partners.GetByID(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if partner == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Partner not found"})
		return
	}
	c.JSON(http.StatusOK, partner)
}

func (s *Server) createPartner(c *gin.Context) {
	var req partnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Name == nil || *req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Partner name is required"})
		return
	}

	var partner models.Partner
	req.apply(&partner)
	if err := s.deps.Partners.Create(&partner); err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusCreated, partner)
}

func (s *Server) updatePartner(c *gin.Context) {
	var req partnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	partner, err := s.deps.Partners.GetByID(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if partner == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Partner not found"})
		return
	}

	req.apply(partner)
	updated, err := s.deps.Partners.Update(partner)
	if err != nil {
		internalError(c)
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Partner not found"})
		return
	}
	c.JSON(http.StatusOK, partner)
}

func (s *Server) deletePartner(c *gin.Context) {
	deleted, err := s.deps.Partners.Delete(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Partner not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

type productRequest struct {
	Name        *string `json:"name"`
	ForSales    *bool   `json:"forSales"`
	ForPurchase *bool   `json:"forPurchase"`
	ForExpenses *bool   `json:"forExpenses"`
	SalesPrice  *string `json:"salesPrice"`
	Cost        *string `json:"cost"`
	TaxIDs      *string `json:"taxIds"`
}

func (r productRequest) apply(p *models.Product) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.ForSales != nil {
		p.ForSales = *r.ForSales
	}
	if r.ForPurchase != nil {
		p.ForPurchase = *r.ForPurchase
	}
	if r.ForExpenses != nil {
		p.ForExpenses = *r.ForExpenses
	}
	if r.SalesPrice != nil {
		p.SalesPrice = *r.SalesPrice
	}
	if r.Cost != nil {
		p.Cost = *r.Cost
	}
	if r.TaxIDs != nil {
		p.TaxIDs = r.TaxIDs
	}
}

func (s *Server) listProducts(c *gin.Context) {
	products, err := s.deps.Products.List(repository.ProductFilter{
		Search: c.Query("search"),
		Usage:  c.Query("usage"),
	})
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (s *Server) getProduct(c *gin.Context) {
	product, err := s.deps.Products.GetByID(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) createProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Name == nil || *req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product name is required"})
		return
	}

	var product models.Product
	req.apply(&product)
	if err := s.deps.Products.Create(&product); err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (s *Server) updateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	product, err := s.deps.Products.GetByID(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	req.apply(product)
	updated, err := s.deps.Products.Update(product)
	if err != nil {
		internalError(c)
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) deleteProduct(c *gin.Context) {
	deleted, err := s.deps.Products.Delete(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

type taxRequest struct {
	Name *string `json:"name"`
	Rate *string `json:"rate"`
}

func (r taxRequest) apply(t *models.Tax) {
	if r.Name != nil {
		t.Name = *r.Name
	}
	if r.Rate != nil {
		t.Rate = *r.Rate
	}
}

func (s *Server) listTaxes(c *gin.Context) {
	taxes, err := s.deps.Taxes.List()
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, taxes)
}

func (s *Server) getTax(c *gin.Context) {
	tax, err := s.deps.Taxes.GetByID(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if tax == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tax not found"})
		return
	}
	c.JSON(http.StatusOK, tax)
}

func (s *Server) createTax(c *gin.Context) {
	var req taxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Name == nil || *req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tax name is required"})
		return
	}

	var tax models.Tax
	req.apply(&tax)
	if err := s.deps.Taxes.Create(&tax); err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusCreated, tax)
}

func (s *Server) updateTax(c *gin.Context) {
	var req taxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	tax, err := s.deps.Taxes.GetByID(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if tax == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tax not found"})
		return
	}

	req.apply(tax)
	updated, err := s.deps.Taxes.Update(tax)
	if err != nil {
		internalError(c)
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tax not found"})
		return
	}
	c.JSON(http.StatusOK, tax)
}

func (s *Server) deleteTax(c *gin.Context) {
	deleted, err := s.deps.Taxes.Delete(c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tax not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
