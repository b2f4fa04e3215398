package handler

import (
	"fmt"
	"net/http"
	"strings"

	"vegeapp/internal/config"
	"vegeapp/internal/middleware"
	"vegeapp/internal/repository"
	"vegeapp/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/tealeg/xlsx"
)

// 管理画面のExcel出力。データ集めはusecase、整形はここ
type ExportHandler struct {
	exportUC *usecase.ExportUsecase
}

// DI
func NewExportHandler(exportUC *usecase.ExportUsecase) *ExportHandler {
	return &ExportHandler{exportUC: exportUC}
}

// /admin/export を登録。admin専用
func (h *ExportHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/admin/export")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.Use(middleware.AdminRoleGuard())

	g.GET("/products.xlsx", h.exportProducts)
	g.GET("/orders.xlsx", h.exportOrders)
}

func (h *ExportHandler) exportProducts(c echo.Context) error {
	products, err := h.exportUC.ListProducts(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "excel error"})
	}

	headers := []string{
		"ID", "Name", "Category", "Price", "Unit", "Stock", "InStock", "CreatedAt",
	}
	headerRow := sheet.AddRow()
	for _, hd := range headers {
		headerRow.AddCell().SetValue(hd)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Category)
		row.AddCell().SetValue(p.Price)
		row.AddCell().SetValue(p.Unit)
		row.AddCell().SetValue(p.Stock)
		row.AddCell().SetValue(p.InStock)
		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return writeXLSX(c, file, "products.xlsx")
}

func (h *ExportHandler) exportOrders(c echo.Context) error {
	rows, err := h.exportUC.ListOrders(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "excel error"})
	}

	headers := []string{
		"ID", "UserID", "Status", "Total", "DeliveryAddress", "Items", "CreatedAt",
	}
	headerRow := sheet.AddRow()
	for _, hd := range headers {
		headerRow.AddCell().SetValue(hd)
	}

	for _, r := range rows {
		lines := make([]string, 0, len(r.Items))
		for _, it := range r.Items {
			lines = append(lines, fmt.Sprintf("%s x%d", it.ProductNameSnapshot, it.Quantity))
		}

		o := r.Order
		row := sheet.AddRow()
		row.AddCell().SetValue(o.ID)
		row.AddCell().SetValue(o.UserID)
		row.AddCell().SetValue(string(o.Status))
		row.AddCell().SetValue(o.Total)
		row.AddCell().SetValue(o.DeliveryAddress)
		row.AddCell().SetValue(strings.Join(lines, ", "))
		row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return writeXLSX(c, file, "orders.xlsx")
}

func writeXLSX(c echo.Context, file *xlsx.File, filename string) error {
	c.Response().Header().Set("Content-Disposition", "attachment; filename="+filename)
	c.Response().Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)

	if err := file.Write(c.Response()); err != nil {
		return err
	}
	return nil
}
