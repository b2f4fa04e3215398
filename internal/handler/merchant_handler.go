package handler

import (
	"net/http"
	"time"

	"vegeapp/internal/config"
	"vegeapp/internal/middleware"
	"vegeapp/internal/repository"
	"vegeapp/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /merchantのHTTP。仲買伝票の記録用
type MerchantHandler struct {
	uc *usecase.MerchantUsecase
}

// DI
func NewMerchantHandler(uc *usecase.MerchantUsecase) *MerchantHandler {
	return &MerchantHandler{uc: uc}
}

type MerchantBagRequest struct {
	BagNo  int64   `json:"bag_number"`
	Weight float64 `json:"weight"`
}

type CreateMerchantEntryRequest struct {
	Date         string               `json:"date"` // YYYY-MM-DD。空なら当日
	TripNo       string               `json:"trip_no"`
	MerchantName string               `json:"merchant_name"`
	Vegetable    string               `json:"vegetable"`
	UnitPrice    float64              `json:"unit_price"`
	Bags         []MerchantBagRequest `json:"bags"`
}

// /merchant/entries を登録
func (h *MerchantHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/merchant/entries")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.POST("", h.createEntry)
	g.GET("", h.listEntries)
	g.GET("/:id", h.entryDetail)
}

func (h *MerchantHandler) createEntry(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CreateMerchantEntryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	var date time.Time
	if req.Date != "" {
		d, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid date"})
		}
		date = d
	}

	bags := make([]usecase.MerchantBagInput, 0, len(req.Bags))
	for _, b := range req.Bags {
		bags = append(bags, usecase.MerchantBagInput{BagNo: b.BagNo, Weight: b.Weight})
	}

	out, err := h.uc.CreateEntry(c.Request().Context(), userID, usecase.CreateMerchantEntryInput{
		Date:         date,
		TripNo:       req.TripNo,
		MerchantName: req.MerchantName,
		Vegetable:    req.Vegetable,
		UnitPrice:    req.UnitPrice,
		Bags:         bags,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *MerchantHandler) listEntries(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var date *time.Time
	if v := c.QueryParam("date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid date"})
		}
		date = &d
	}

	out, err := h.uc.ListEntries(c.Request().Context(), userID, date)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *MerchantHandler) entryDetail(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.GetEntry(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
