package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/settleio/settle/internal/domain"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type createProductRequest struct {
	Name  string `json:"name" binding:"required"`
	Price int64  `json:"price" binding:"min=0"`
}

func (s *Server) handleCreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := s.store.CreateProduct(c.Request.Context(), domain.Product{
		ID:    domain.NewID(),
		Name:  req.Name,
		Price: req.Price,
	})
	if err != nil {
		s.logger.Error("create product failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (s *Server) handleListProducts(c *gin.Context) {
	products, err := s.store.ListProducts(c.Request.Context())
	if err != nil {
		s.logger.Error("list products failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}
	c.JSON(http.StatusOK, products)
}

type createOrderRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

func (s *Server) handleCreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if _, err := s.store.GetProduct(ctx, req.ProductID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		s.logger.Error("create order failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}

	order, err := s.store.CreateOrder(ctx, domain.Order{
		ID:        domain.NewID(),
		ProductID: req.ProductID,
		Status:    domain.OrderPending,
	})
	if err != nil {
		s.logger.Error("create order failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (s *Server) handleListOrders(c *gin.Context) {
	orders, err := s.store.ListOrders(c.Request.Context())
	if err != nil {
		s.logger.Error("list orders failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) handleOrderEvents(c *gin.Context) {
	ctx := c.Request.Context()
	orderID := c.Param("id")

	if _, err := s.store.GetOrder(ctx, orderID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		s.logger.Error("order events failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}

	events, err := s.store.ListOrderEvents(ctx, orderID)
	if err != nil {
		s.logger.Error("order events failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}
	c.JSON(http.StatusOK, events)
}

type payRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

func (s *Server) handlePay(c *gin.Context) {
	var req payRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	clientSecret, err := s.payments.StartPayment(c.Request.Context(), req.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		s.logger.Error("start payment failed", "order_id", req.OrderID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment initialization failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"clientSecret": clientSecret})
}

type confirmRequest struct {
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
	PaymentMethod   string `json:"paymentMethod"`
}

func (s *Server) handleConfirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	intent, err := s.payments.Confirm(c.Request.Context(), req.PaymentIntentID, req.PaymentMethod)
	if err != nil {
		s.logger.Error("confirm payment failed", "payment_intent_id", req.PaymentIntentID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment confirmation failed"})
		return
	}

	c.JSON(http.StatusOK, intent)
}
