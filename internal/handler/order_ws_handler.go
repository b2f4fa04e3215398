package handler

import (
	"encoding/json"
	"net/http"
	"sync"

	"vegeapp/internal/config"
	"vegeapp/internal/middleware"
	"vegeapp/internal/repository"
	"vegeapp/internal/usecase"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// 管理画面向けの注文イベント配信。
// 注文の作成・ステータス変更をつないでいる全クライアントへ流す。
type OrderWSHandler struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func NewOrderWSHandler() *OrderWSHandler {
	return &OrderWSHandler{clients: make(map[*websocket.Conn]bool)}
}

// /admin/orders/ws を登録。admin専用
func (h *OrderWSHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/admin/orders/ws")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.Use(middleware.AdminRoleGuard())

	g.GET("", h.serve)
}

func (h *OrderWSHandler) serve(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	// クライアントは送ってこない想定。切断検知のためだけに読む
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			break
		}
	}
	return nil
}

// usecase.OrderNotifier実装。失敗したクライアントは外す
func (h *OrderWSHandler) NotifyOrder(out usecase.OrderOutput) {
	data, err := json.Marshal(out)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}
