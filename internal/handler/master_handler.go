package handler

import (
	"errors"
	"net/http"
	"strings"

	"vegeapp/internal/config"
	"vegeapp/internal/domain/model"
	"vegeapp/internal/middleware"
	"vegeapp/internal/repository"
	"vegeapp/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// マスタ7種は「bind→CRUD」の形が全部同じなので、
// リソースごとの違いはbind関数だけに寄せて、ルートは型パラメータでまとめる。

var errInvalidMasterBody = errors.New("invalid body")

// bindはリクエストボディからレコードを組み立てる。
// idは作成時は採番済みuuid、更新時はパスパラメータが入ってくる。
type masterRoutes[T any] struct {
	uc   *usecase.MasterUsecase[T]
	bind func(c echo.Context, userID string, id string) (T, error)
}

func (m *masterRoutes[T]) register(g *echo.Group, prefix string) {
	g.POST(prefix, m.create)
	g.GET(prefix, m.list)
	g.PUT(prefix+"/:id", m.update)
	g.DELETE(prefix+"/:id", m.remove)
}

func (m *masterRoutes[T]) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	rec, err := m.bind(c, userID, uuid.NewString())
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	created, err := m.uc.Create(c.Request().Context(), userID, rec)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, created)
}

func (m *masterRoutes[T]) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	recs, err := m.uc.List(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, recs)
}

func (m *masterRoutes[T]) update(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	rec, err := m.bind(c, userID, id)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	if err := m.uc.Update(c.Request().Context(), userID, id, rec); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (m *masterRoutes[T]) remove(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := m.uc.Delete(c.Request().Context(), userID, id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

// /mastersのHTTP。7リソースをまとめて登録する
type MasterHandler struct {
	categories   *masterRoutes[model.Category]
	uoms         *masterRoutes[model.UnitOfMeasure]
	packingUnits *masterRoutes[model.PackingUnit]
	vegetables   *masterRoutes[model.Vegetable]
	farmers      *masterRoutes[model.Farmer]
	agents       *masterRoutes[model.Agent]
	staff        *masterRoutes[model.Staff]
}

// DI
func NewMasterHandler(
	categoryUC *usecase.MasterUsecase[model.Category],
	uomUC *usecase.MasterUsecase[model.UnitOfMeasure],
	packingUnitUC *usecase.MasterUsecase[model.PackingUnit],
	vegetableUC *usecase.MasterUsecase[model.Vegetable],
	farmerUC *usecase.MasterUsecase[model.Farmer],
	agentUC *usecase.MasterUsecase[model.Agent],
	staffUC *usecase.MasterUsecase[model.Staff],
) *MasterHandler {
	return &MasterHandler{
		categories:   &masterRoutes[model.Category]{uc: categoryUC, bind: bindCategory},
		uoms:         &masterRoutes[model.UnitOfMeasure]{uc: uomUC, bind: bindUOM},
		packingUnits: &masterRoutes[model.PackingUnit]{uc: packingUnitUC, bind: bindPackingUnit},
		vegetables:   &masterRoutes[model.Vegetable]{uc: vegetableUC, bind: bindVegetable},
		farmers:      &masterRoutes[model.Farmer]{uc: farmerUC, bind: bindFarmer},
		agents:       &masterRoutes[model.Agent]{uc: agentUC, bind: bindAgent},
		staff:        &masterRoutes[model.Staff]{uc: staffUC, bind: bindStaff},
	}
}

// /masters を登録。全ルート認証必須
func (h *MasterHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/masters")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	h.categories.register(g, "/categories")
	h.uoms.register(g, "/uoms")
	h.packingUnits.register(g, "/packing-units")
	h.vegetables.register(g, "/vegetables")
	h.farmers.register(g, "/farmers")
	h.agents.register(g, "/agents")
	h.staff.register(g, "/staff")
}

type masterNameRequest struct {
	Name string `json:"name"`
}

type masterContactRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type masterVegetableRequest struct {
	Name          string `json:"name"`
	UOMID         string `json:"uom_id"`
	PackingUnitID string `json:"packing_unit_id"`
}

func bindName(c echo.Context) (string, error) {
	var req masterNameRequest
	if err := c.Bind(&req); err != nil {
		return "", errInvalidMasterBody
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return "", errors.New("name required")
	}
	return name, nil
}

func bindCategory(c echo.Context, userID string, id string) (model.Category, error) {
	name, err := bindName(c)
	if err != nil {
		return model.Category{}, err
	}
	return model.Category{ID: id, UserID: userID, Name: name}, nil
}

func bindUOM(c echo.Context, userID string, id string) (model.UnitOfMeasure, error) {
	name, err := bindName(c)
	if err != nil {
		return model.UnitOfMeasure{}, err
	}
	return model.UnitOfMeasure{ID: id, UserID: userID, Name: name}, nil
}

func bindPackingUnit(c echo.Context, userID string, id string) (model.PackingUnit, error) {
	name, err := bindName(c)
	if err != nil {
		return model.PackingUnit{}, err
	}
	return model.PackingUnit{ID: id, UserID: userID, Name: name}, nil
}

func bindVegetable(c echo.Context, userID string, id string) (model.Vegetable, error) {
	var req masterVegetableRequest
	if err := c.Bind(&req); err != nil {
		return model.Vegetable{}, errInvalidMasterBody
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Vegetable{}, errors.New("name required")
	}

	return model.Vegetable{
		ID:            id,
		UserID:        userID,
		Name:          name,
		UOMID:         strings.TrimSpace(req.UOMID),
		PackingUnitID: strings.TrimSpace(req.PackingUnitID),
	}, nil
}

func bindContact(c echo.Context) (masterContactRequest, error) {
	var req masterContactRequest
	if err := c.Bind(&req); err != nil {
		return masterContactRequest{}, errInvalidMasterBody
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return masterContactRequest{}, errors.New("name required")
	}

	req.Address = strings.TrimSpace(req.Address)
	req.Phone = strings.TrimSpace(req.Phone)
	return req, nil
}

func bindFarmer(c echo.Context, userID string, id string) (model.Farmer, error) {
	req, err := bindContact(c)
	if err != nil {
		return model.Farmer{}, err
	}
	return model.Farmer{ID: id, UserID: userID, Name: req.Name, Address: req.Address, Phone: req.Phone}, nil
}

func bindAgent(c echo.Context, userID string, id string) (model.Agent, error) {
	req, err := bindContact(c)
	if err != nil {
		return model.Agent{}, err
	}
	return model.Agent{ID: id, UserID: userID, Name: req.Name, Address: req.Address, Phone: req.Phone}, nil
}

func bindStaff(c echo.Context, userID string, id string) (model.Staff, error) {
	req, err := bindContact(c)
	if err != nil {
		return model.Staff{}, err
	}
	return model.Staff{ID: id, UserID: userID, Name: req.Name, Address: req.Address, Phone: req.Phone}, nil
}
