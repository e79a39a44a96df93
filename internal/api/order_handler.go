package api

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"petstore-service/internal/interfaces"
	"petstore-service/internal/models"
)

// OrderHandler handles HTTP requests for the order service
type OrderHandler struct {
	orderService interfaces.OrderService
	ownerCheck   SecretCheck
}

// NewOrderHandler creates a new order API handler
func NewOrderHandler(orderService interfaces.OrderService, ownerCheck SecretCheck) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		ownerCheck:   ownerCheck,
	}
}

// SetupOrderRoutes sets up the HTTP routes for the order service
func (h *OrderHandler) SetupOrderRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(CORSMiddleware())

	r.GET("/", h.home)
	r.GET("/kill", h.kill)

	r.POST("/purchases", RequireJSON(), h.createPurchase)
	r.GET("/transactions", OwnerAuthMiddleware(h.ownerCheck), h.listTransactions)

	return r
}

// home handles liveness requests
func (h *OrderHandler) home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Pet Order API is running"})
}

// kill terminates the process immediately. Operator escape hatch, not part
// of the business contract.
func (h *OrderHandler) kill(c *gin.Context) {
	log.Warn().Msg("Kill endpoint invoked, terminating")
	os.Exit(1)
}

// createPurchase handles purchase requests
func (h *OrderHandler) createPurchase(c *gin.Context) {
	var req models.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Response.BindError(c, err)
		return
	}

	purchase, err := h.orderService.Purchase(c.Request.Context(), &req)
	if err != nil {
		var validationErr *models.ValidationError
		switch {
		case errors.As(err, &validationErr):
			Response.ValidationError(c, validationErr.Field, validationErr.Message)
		case errors.Is(err, models.ErrNotAvailable):
			Response.BusinessError(c, 400, "No Availability", "No pet of this type is available", models.ErrorCodeNotAvailable)
		default:
			// Removal and persistence failures are both server faults and
			// stay generic towards the caller.
			Response.InternalError(c, err.Error())
		}
		return
	}

	Response.Created(c, purchase)
}

// listTransactions handles authenticated ledger queries. Recognized query
// parameters filter with equality semantics; unknown keys are ignored.
func (h *OrderHandler) listTransactions(c *gin.Context) {
	filter := models.TransactionFilter{}
	for key, values := range c.Request.URL.Query() {
		if len(values) == 0 {
			continue
		}
		value := values[0]
		switch key {
		case "purchaser":
			filter.Purchaser = &value
		case "pet-type":
			filter.PetType = &value
		case "store":
			filter.Store = &value
		case "purchase-id":
			filter.PurchaseID = &value
		}
	}

	transactions, err := h.orderService.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		Response.InternalError(c, err.Error())
		return
	}

	Response.Success(c, transactions)
}
