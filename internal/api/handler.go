package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"commerce-console/internal/draft"
	"commerce-console/internal/errs"
	"commerce-console/internal/orchestrator"
	"commerce-console/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler exposes the console to the browser as a JSON API.
type Handler struct {
	console *orchestrator.Console
}

// NewHandler creates a new HTTP handler
func NewHandler(console *orchestrator.Console) *Handler {
	return &Handler{console: console}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/login", h.login)
		v1.POST("/register", h.register)
		v1.POST("/resume", h.resume)
		v1.POST("/logout", h.logout)

		v1.GET("/overview", h.overview)

		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.POST("/products", h.createProduct)
		v1.PUT("/products/:id", h.updateProduct)
		v1.DELETE("/products/:id", h.deleteProduct)

		v1.GET("/groupbuys", h.listGroupBuys)
		v1.GET("/groupbuys/:id", h.getGroupBuy)
		v1.POST("/groupbuys", h.createGroupBuy)
		v1.POST("/groupbuys/:id/join", h.joinGroupBuy)
		v1.DELETE("/groupbuys/:id", h.deleteGroupBuy)

		v1.GET("/orders", h.listOrders)
		v1.GET("/orders/:id", h.getOrder)
		v1.POST("/orders", h.createOrder)
		v1.DELETE("/orders/:id", h.deleteOrder)

		v1.GET("/users", h.listUsers)
		v1.GET("/users/:id", h.getUser)
		v1.PUT("/users/:id", h.updateUser)
		v1.DELETE("/users/:id", h.deleteUser)
	}
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// respondError maps the error taxonomy onto HTTP statuses: local validation
// to 400, local state rejection to 409, auth failures to 401, backend
// rejections relayed with their own status and body, connectivity failures
// to 502. One message per failure.
func respondError(c *gin.Context, err error) {
	var ve *errs.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  ve.Error(),
			"reason": ve.Reason,
			"fields": ve.Fields,
		})
		return
	}

	if errs.IsInvalidState(err) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	if errs.IsAuth(err) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	if status := errs.RemoteStatus(err); status != 0 {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	var te *errs.TransportError
	if errors.As(err, &te) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "backend unreachable"})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// ---- auth ------------------------------------------------------------------

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	sess, err := h.console.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sess.ID, "username": sess.Username})
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	user, err := h.console.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

type resumeRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// resume restores a stored session by id, as the browser does on reload with
// the session_id it kept from login.
func (h *Handler) resume(c *gin.Context) {
	var req resumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	if err := h.console.Resume(c.Request.Context(), req.SessionID); err != nil {
		respondError(c, err)
		return
	}
	sess := h.console.Session()
	c.JSON(http.StatusOK, gin.H{"session_id": sess.ID, "username": sess.Username})
}

func (h *Handler) logout(c *gin.Context) {
	h.console.Logout(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// ---- overview --------------------------------------------------------------

// overview loads products, group buys, and orders concurrently and returns
// whatever populated, reporting failures per collection.
func (h *Handler) overview(c *gin.Context) {
	loadErr := h.console.LoadAll(c.Request.Context())

	resp := gin.H{
		"products":  h.console.Products(),
		"groupbuys": h.console.GroupBuys(),
		"orders":    h.console.Orders(),
	}

	var fe *orchestrator.FanoutError
	if errors.As(loadErr, &fe) {
		failed := make(map[string]string, len(fe.Failures))
		for col, err := range fe.Failures {
			failed[col] = err.Error()
		}
		resp["failed"] = failed
		c.JSON(http.StatusOK, resp)
		return
	}
	if loadErr != nil {
		respondError(c, loadErr)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ---- products --------------------------------------------------------------

// listProducts applies any pagination/filter query params to the view-state
// (each change triggers its own validated re-fetch) and returns the cached
// page.
func (h *Handler) listProducts(c *gin.Context) {
	ctx := c.Request.Context()

	if raw := c.Query("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "pageSize must be an integer"})
			return
		}
		if err := h.console.SetPageSize(ctx, size); err != nil {
			respondError(c, err)
			return
		}
	}

	if min, max := c.Query("minPrice"), c.Query("maxPrice"); min != "" || max != "" {
		err := h.console.ApplyPriceFilter(ctx, draft.FilterInput{MinPrice: min, MaxPrice: max})
		if err != nil {
			respondError(c, err)
			return
		}
	}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be an integer"})
			return
		}
		if err := h.console.SetPage(ctx, page); err != nil {
			respondError(c, err)
			return
		}
	} else if err := h.console.RefreshProducts(ctx); err != nil {
		respondError(c, err)
		return
	}

	view := h.console.View()
	c.JSON(http.StatusOK, gin.H{
		"products": h.console.Products(),
		"page":     view.Page,
		"pageSize": view.PageSize,
	})
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	product, err := h.console.SelectProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) createProduct(c *gin.Context) {
	var in draft.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	product, err := h.console.CreateProduct(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in draft.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	product, err := h.console.UpdateProduct(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.console.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---- group buys ------------------------------------------------------------

func (h *Handler) listGroupBuys(c *gin.Context) {
	if err := h.console.RefreshGroupBuys(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.console.GroupBuys())
}

func (h *Handler) getGroupBuy(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	gb, err := h.console.SelectGroupBuy(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gb)
}

func (h *Handler) createGroupBuy(c *gin.Context) {
	var in draft.GroupBuyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	gb, err := h.console.CreateGroupBuy(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gb)
}

func (h *Handler) joinGroupBuy(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	gb, err := h.console.JoinGroupBuy(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gb)
}

func (h *Handler) deleteGroupBuy(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.console.DeleteGroupBuy(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---- orders ----------------------------------------------------------------

func (h *Handler) listOrders(c *gin.Context) {
	if err := h.console.RefreshOrders(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.console.Orders())
}

func (h *Handler) getOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := h.console.SelectOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) createOrder(c *gin.Context) {
	var in draft.OrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	order, err := h.console.CreateOrder(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) deleteOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.console.DeleteOrder(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---- users -----------------------------------------------------------------

func (h *Handler) listUsers(c *gin.Context) {
	if err := h.console.RefreshUsers(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.console.Users())
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := h.console.SelectUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) updateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in draft.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	user, err := h.console.UpdateUser(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.console.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
