package handlers

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"abyss-player/models"
	"abyss-player/services"
)

// newSessionRouter 构造一个注册了会话快照路由的测试环境。
func newSessionRouter() (*gin.Engine, services.Store) {
	gin.SetMode(gin.TestMode)
	store := services.NewMemoryStore()
	router := gin.New()
	handler := NewSessionHandler(services.NewSessionService(store))
	router.POST("/api/session/write", handler.Write)
	router.POST("/api/session/read", handler.Read)
	return router, store
}

// TestSessionWriteRead 测试快照保存与恢复的完整往返。
func TestSessionWriteRead(t *testing.T) {
	router, store := newSessionRouter()
	ctx := context.Background()
	playlist := models.NewPlaylist("p")
	store.Playlists().Save(ctx, playlist)
	group := models.NewGroup(models.Meta{Path: "/a"}, playlist.ID)
	store.Groups().Save(ctx, group)

	path := filepath.Join(t.TempDir(), "session.json")
	w := doJSON(router, "POST", "/api/session/write", `{"path":"`+path+`"}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("期望状态码 204, 得到 %d: %s", w.Code, w.Body.String())
	}

	// 清空数据后从快照恢复。
	store.Playlists().Destroy(ctx, playlist.ID)
	w = doJSON(router, "POST", "/api/session/read", `{"path":"`+path+`"}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("期望状态码 204, 得到 %d: %s", w.Code, w.Body.String())
	}

	playlists, _ := store.Playlists().All(ctx)
	if len(playlists) != 1 || playlists[0].ID != playlist.ID {
		t.Errorf("期望恢复 1 个播放列表, 得到 %+v", playlists)
	}
	groups, _ := store.Groups().FindByPlaylist(ctx, playlist.ID)
	if len(groups) != 1 {
		t.Errorf("期望恢复 1 个分组, 得到 %d", len(groups))
	}
}

// TestSessionReadMissingFile 测试快照文件不存在时返回 404。
func TestSessionReadMissingFile(t *testing.T) {
	router, _ := newSessionRouter()

	w := doJSON(router, "POST", "/api/session/read", `{"path":"/nonexistent/session.json"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("期望状态码 404, 得到 %d", w.Code)
	}
}

// TestSessionValidation 测试缺少 path 参数。
func TestSessionValidation(t *testing.T) {
	router, _ := newSessionRouter()

	w := doJSON(router, "POST", "/api/session/write", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("期望状态码 400, 得到 %d", w.Code)
	}
	w = doJSON(router, "POST", "/api/session/read", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("期望状态码 400, 得到 %d", w.Code)
	}
}
