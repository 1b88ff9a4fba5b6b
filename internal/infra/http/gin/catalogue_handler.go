package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"innkeeper/internal/app/services/catalogue"
	domainguest "innkeeper/internal/domain/guest"
	domainproperty "innkeeper/internal/domain/property"
	domainroom "innkeeper/internal/domain/room"
	"innkeeper/internal/domain/shared/money"
)

type PropertyHandler struct {
	Service *catalogue.Service
	Logger  *slog.Logger
}

type createPropertyRequest struct {
	Name                 string `json:"name" binding:"required"`
	AddressLine1         string `json:"address_line1"`
	AddressLine2         string `json:"address_line2"`
	City                 string `json:"city"`
	Country              string `json:"country"`
	Zip                  string `json:"zip"`
	CheckInTime          string `json:"check_in_time"`
	CheckOutTime         string `json:"check_out_time"`
	AdvanceBookingDays   int    `json:"advance_booking_days" binding:"min=0"`
	OnlineBookingAllowed bool   `json:"online_booking_allowed"`
}

func (h PropertyHandler) Create(c *gin.Context) {
	p, ok := requirePermission(c, "properties:write")
	if !ok {
		return
	}
	var req createPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	prop, err := h.Service.CreateProperty(c.Request.Context(), catalogue.CreatePropertyParams{
		TenantID: p.TenantID,
		Name:     req.Name,
		Address: domainproperty.Address{
			Line1:   req.AddressLine1,
			Line2:   req.AddressLine2,
			City:    req.City,
			Country: req.Country,
			Zip:     req.Zip,
		},
		CheckInTime:  req.CheckInTime,
		CheckOutTime: req.CheckOutTime,
		BookingPolicy: domainproperty.BookingPolicy{
			AdvanceBookingDays:   req.AdvanceBookingDays,
			OnlineBookingAllowed: req.OnlineBookingAllowed,
		},
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, newPropertyResponse(prop))
}

func (h PropertyHandler) Get(c *gin.Context) {
	p, ok := requirePermission(c, "properties:read")
	if !ok {
		return
	}
	prop, err := h.Service.PropertyByID(c.Request.Context(), p.TenantID, c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, newPropertyResponse(prop))
}

func (h PropertyHandler) List(c *gin.Context) {
	p, ok := requirePermission(c, "properties:read")
	if !ok {
		return
	}
	props, err := h.Service.ListProperties(c.Request.Context(), p.TenantID)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	out := make([]propertyResponse, 0, len(props))
	for _, prop := range props {
		out = append(out, newPropertyResponse(prop))
	}
	c.JSON(http.StatusOK, gin.H{"properties": out})
}

type propertyResponse struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	AddressLine1         string    `json:"address_line1,omitempty"`
	AddressLine2         string    `json:"address_line2,omitempty"`
	City                 string    `json:"city,omitempty"`
	Country              string    `json:"country,omitempty"`
	Zip                  string    `json:"zip,omitempty"`
	CheckInTime          string    `json:"check_in_time"`
	CheckOutTime         string    `json:"check_out_time"`
	AdvanceBookingDays   int       `json:"advance_booking_days"`
	OnlineBookingAllowed bool      `json:"online_booking_allowed"`
	CreatedAt            time.Time `json:"created_at"`
}

func newPropertyResponse(prop *domainproperty.Property) propertyResponse {
	return propertyResponse{
		ID:                   string(prop.ID),
		Name:                 prop.Name,
		AddressLine1:         prop.Address.Line1,
		AddressLine2:         prop.Address.Line2,
		City:                 prop.Address.City,
		Country:              prop.Address.Country,
		Zip:                  prop.Address.Zip,
		CheckInTime:          prop.CheckInTime,
		CheckOutTime:         prop.CheckOutTime,
		AdvanceBookingDays:   prop.BookingPolicy.AdvanceBookingDays,
		OnlineBookingAllowed: prop.BookingPolicy.OnlineBookingAllowed,
		CreatedAt:            prop.CreatedAt,
	}
}

type RoomHandler struct {
	Service *catalogue.Service
	Logger  *slog.Logger
}

type createRoomRequest struct {
	NameOrNumber  string `json:"name_or_number" binding:"required"`
	Type          string `json:"type" binding:"required,oneof=room suite apartment"`
	AdultCapacity int    `json:"adult_capacity" binding:"required,gt=0"`
	ChildCapacity int    `json:"child_capacity" binding:"min=0"`
	BaseRate      int64  `json:"base_rate" binding:"required,gt=0"`
	ExtraAdult    int64  `json:"extra_adult" binding:"min=0"`
	ExtraChild    int64  `json:"extra_child" binding:"min=0"`
	CleaningFee   int64  `json:"cleaning_fee" binding:"min=0"`
	ServiceFee    int64  `json:"service_fee" binding:"min=0"`
	Currency      string `json:"currency" binding:"required,currency"`
}

func (h RoomHandler) Create(c *gin.Context) {
	p, ok := requirePermission(c, "rooms:write")
	if !ok {
		return
	}
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	currency := req.Currency
	rm, err := h.Service.CreateRoom(c.Request.Context(), catalogue.CreateRoomParams{
		TenantID:     p.TenantID,
		PropertyID:   c.Param("id"),
		NameOrNumber: req.NameOrNumber,
		Type:         domainroom.Type(req.Type),
		Capacity:     domainroom.Capacity{Adults: req.AdultCapacity, Children: req.ChildCapacity},
		Rate: domainroom.Rate{
			Base:       money.Money{Amount: req.BaseRate, Currency: currency},
			ExtraAdult: money.Money{Amount: req.ExtraAdult, Currency: currency},
			ExtraChild: money.Money{Amount: req.ExtraChild, Currency: currency},
		},
		Fees: domainroom.Fees{
			Cleaning: money.Money{Amount: req.CleaningFee, Currency: currency},
			Service:  money.Money{Amount: req.ServiceFee, Currency: currency},
		},
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, newRoomResponse(rm))
}

func (h RoomHandler) ListByProperty(c *gin.Context) {
	p, ok := requirePermission(c, "rooms:read")
	if !ok {
		return
	}
	rooms, err := h.Service.ListRooms(c.Request.Context(), p.TenantID, c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	out := make([]roomResponse, 0, len(rooms))
	for _, rm := range rooms {
		out = append(out, newRoomResponse(rm))
	}
	c.JSON(http.StatusOK, gin.H{"rooms": out})
}

func (h RoomHandler) Get(c *gin.Context) {
	p, ok := requirePermission(c, "rooms:read")
	if !ok {
		return
	}
	rm, err := h.Service.RoomByID(c.Request.Context(), p.TenantID, c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, newRoomResponse(rm))
}

type setRoomStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=available occupied maintenance cleaning"`
}

func (h RoomHandler) SetStatus(c *gin.Context) {
	p, ok := requirePermission(c, "rooms:write")
	if !ok {
		return
	}
	var req setRoomStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rm, err := h.Service.SetRoomStatus(c.Request.Context(), p.TenantID, c.Param("id"), domainroom.Status(req.Status))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, newRoomResponse(rm))
}

type roomResponse struct {
	ID            string      `json:"id"`
	PropertyID    string      `json:"property_id"`
	NameOrNumber  string      `json:"name_or_number"`
	Type          string      `json:"type"`
	AdultCapacity int         `json:"adult_capacity"`
	ChildCapacity int         `json:"child_capacity"`
	BaseRate      money.Money `json:"base_rate"`
	ExtraAdult    money.Money `json:"extra_adult"`
	ExtraChild    money.Money `json:"extra_child"`
	CleaningFee   money.Money `json:"cleaning_fee"`
	ServiceFee    money.Money `json:"service_fee"`
	Status        string      `json:"status"`
}

func newRoomResponse(rm *domainroom.Room) roomResponse {
	return roomResponse{
		ID:            string(rm.ID),
		PropertyID:    string(rm.PropertyID),
		NameOrNumber:  rm.NameOrNumber,
		Type:          string(rm.Type),
		AdultCapacity: rm.Capacity.Adults,
		ChildCapacity: rm.Capacity.Children,
		BaseRate:      rm.Rate.Base,
		ExtraAdult:    rm.Rate.ExtraAdult,
		ExtraChild:    rm.Rate.ExtraChild,
		CleaningFee:   rm.Fees.Cleaning,
		ServiceFee:    rm.Fees.Service,
		Status:        string(rm.Status),
	}
}

type GuestHandler struct {
	Service *catalogue.Service
	Logger  *slog.Logger
}

type createGuestRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"omitempty,email"`
	Phone          string `json:"phone"`
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
	Currency       string `json:"currency" binding:"omitempty,currency"`
}

func (h GuestHandler) Create(c *gin.Context) {
	p, ok := requirePermission(c, "guests:write")
	if !ok {
		return
	}
	var req createGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	g, err := h.Service.CreateGuest(c.Request.Context(), catalogue.CreateGuestParams{
		TenantID: p.TenantID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Document: domainguest.Document{
			Type:   req.DocumentType,
			Number: req.DocumentNumber,
		},
		Currency: req.Currency,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, newGuestResponse(g))
}

func (h GuestHandler) Get(c *gin.Context) {
	p, ok := requirePermission(c, "guests:read")
	if !ok {
		return
	}
	g, err := h.Service.GuestByID(c.Request.Context(), p.TenantID, c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, newGuestResponse(g))
}

func (h GuestHandler) List(c *gin.Context) {
	p, ok := requirePermission(c, "guests:read")
	if !ok {
		return
	}
	guests, err := h.Service.ListGuests(c.Request.Context(), p.TenantID)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	out := make([]guestResponse, 0, len(guests))
	for _, g := range guests {
		out = append(out, newGuestResponse(g))
	}
	c.JSON(http.StatusOK, gin.H{"guests": out})
}

// UploadDocument accepts a multipart form with a single "document" file and
// stores the identification scan against the guest.
func (h GuestHandler) UploadDocument(c *gin.Context) {
	p, ok := requirePermission(c, "guests:write")
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	defer file.Close()

	g, err := h.Service.UploadGuestDocument(c.Request.Context(), catalogue.UploadDocumentParams{
		TenantID:    p.TenantID,
		GuestID:     c.Param("id"),
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     file,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, newGuestResponse(g))
}

type guestResponse struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Email          string      `json:"email,omitempty"`
	Phone          string      `json:"phone,omitempty"`
	DocumentType   string      `json:"document_type,omitempty"`
	DocumentNumber string      `json:"document_number,omitempty"`
	DocumentURL    string      `json:"document_url,omitempty"`
	TotalStays     int         `json:"total_stays"`
	TotalSpent     money.Money `json:"total_spent"`
	VIP            bool        `json:"vip"`
	Blacklisted    bool        `json:"blacklisted"`
	CreatedAt      time.Time   `json:"created_at"`
}

func newGuestResponse(g *domainguest.Guest) guestResponse {
	return guestResponse{
		ID:             string(g.ID),
		Name:           g.Name,
		Email:          g.Email,
		Phone:          g.Phone,
		DocumentType:   g.Document.Type,
		DocumentNumber: g.Document.Number,
		DocumentURL:    g.Document.AttachmentURL,
		TotalStays:     g.TotalStays,
		TotalSpent:     g.TotalSpent,
		VIP:            g.VIP,
		Blacklisted:    g.Blacklisted,
		CreatedAt:      g.CreatedAt,
	}
}
