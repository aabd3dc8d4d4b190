package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
	"github.com/gin-gonic/gin"

	"wartungsmanager-backend/internal/model"
	"wartungsmanager-backend/internal/registry"
)

type customerRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

// CreateCustomer handles POST /api/customers.
func (h *Handler) CreateCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	customer, err := h.registry.CreateCustomer(c.Request.Context(), registry.CustomerInput{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
		Notes: req.Notes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func listOptions(c *gin.Context) (registry.ListOptions, bool) {
	limit, ok := intQuery(c, "limit")
	if !ok {
		return registry.ListOptions{}, false
	}
	offset, ok := intQuery(c, "offset")
	if !ok {
		return registry.ListOptions{}, false
	}
	return registry.ListOptions{Query: c.Query("q"), Limit: limit, Offset: offset}, true
}

// ListCustomers handles GET /api/customers?q=&limit=&offset=.
func (h *Handler) ListCustomers(c *gin.Context) {
	opts, ok := listOptions(c)
	if !ok {
		return
	}
	customers, err := h.registry.ListCustomers(c.Request.Context(), opts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if customers == nil {
		customers = []model.Customer{}
	}
	c.JSON(http.StatusOK, customers)
}

// GetCustomer handles GET /api/customers/:id.
func (h *Handler) GetCustomer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	customer, err := h.registry.GetCustomer(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

type bottleRequest struct {
	InternalNumber    string     `json:"internalNumber"`
	ExternalNumber    string     `json:"externalNumber"`
	Barcode           string     `json:"barcode"`
	BarcodeType       string     `json:"barcodeType"`
	SizeLiters        float64    `json:"sizeLiters"`
	MaxPressure       int        `json:"maxPressure"`
	WeightKg          float64    `json:"weightKg"`
	ValveType         string     `json:"valveType"`
	Manufacturer      string     `json:"manufacturer"`
	ManufacturedAt    *time.Time `json:"manufacturedAt"`
	InspectionDate    *time.Time `json:"inspectionDate"`
	NextInspectionDue *time.Time `json:"nextInspectionDue"`
	CustomerID        *int64     `json:"customerId"`
}

// CreateBottle handles POST /api/bottles.
func (h *Handler) CreateBottle(c *gin.Context) {
	var req bottleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	bottle, err := h.registry.CreateBottle(c.Request.Context(), registry.BottleInput{
		InternalNumber:    req.InternalNumber,
		ExternalNumber:    req.ExternalNumber,
		Barcode:           req.Barcode,
		BarcodeType:       req.BarcodeType,
		SizeLiters:        req.SizeLiters,
		MaxPressure:       req.MaxPressure,
		WeightKg:          req.WeightKg,
		ValveType:         req.ValveType,
		Manufacturer:      req.Manufacturer,
		ManufacturedAt:    req.ManufacturedAt,
		InspectionDate:    req.InspectionDate,
		NextInspectionDue: req.NextInspectionDue,
		CustomerID:        req.CustomerID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bottle)
}

// ListBottles handles GET /api/bottles?active=&customerId=&q=&limit=&offset=.
func (h *Handler) ListBottles(c *gin.Context) {
	opts, ok := listOptions(c)
	if !ok {
		return
	}
	filter := registry.BottleFilter{ListOptions: opts}
	if raw := strings.TrimSpace(c.Query("active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "invalid active")
			return
		}
		filter.Active = &active
	}
	customerID, ok := intQuery(c, "customerId")
	if !ok {
		return
	}
	filter.CustomerID = int64(customerID)

	bottles, err := h.registry.ListBottles(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if bottles == nil {
		bottles = []model.Bottle{}
	}
	c.JSON(http.StatusOK, bottles)
}

// GetBottle handles GET /api/bottles/:id.
func (h *Handler) GetBottle(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	bottle, err := h.registry.GetBottle(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bottle)
}

// LookupBottle handles GET /api/bottles/lookup?barcode=, the scanner path.
func (h *Handler) LookupBottle(c *gin.Context) {
	code := c.Query("barcode")
	if strings.TrimSpace(code) == "" {
		badRequest(c, "barcode is required")
		return
	}
	bottle, err := h.registry.LookupBottle(c.Request.Context(), code)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bottle)
}

// DeactivateBottle handles POST /api/bottles/:id/deactivate.
func (h *Handler) DeactivateBottle(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	bottle, err := h.registry.DeactivateBottle(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bottle)
}

type inspectionRequest struct {
	Date          time.Time `json:"date" zog:"date"`
	IntervalYears int       `json:"intervalYears" zog:"intervalYears"`
	Protocol      string    `json:"protocol" zog:"protocol"`
}

var inspectionSchema = z.Struct(z.Shape{
	"date":          z.Time(),
	"intervalYears": z.Int(),
	"protocol":      z.String().Max(10000),
})

// RecordInspection handles POST /api/bottles/:id/inspection.
func (h *Handler) RecordInspection(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req inspectionRequest
	if issues := inspectionSchema.Parse(zhttp.Request(c.Request), &req); issues != nil {
		respondIssues(c, issues)
		return
	}
	bottle, err := h.registry.RecordInspection(c.Request.Context(), id, registry.InspectionInput{
		Date:          req.Date,
		IntervalYears: req.IntervalYears,
		Protocol:      req.Protocol,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bottle)
}
