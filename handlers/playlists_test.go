package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"abyss-player/models"
	"abyss-player/services"
)

// newPlaylistRouter 构造一个注册了播放列表路由的测试环境。
func newPlaylistRouter() (*gin.Engine, services.Store) {
	gin.SetMode(gin.TestMode)
	store := services.NewMemoryStore()
	router := gin.New()
	handler := NewPlaylistHandler(store)
	router.GET("/api/playlists", handler.Index)
	router.POST("/api/playlists", handler.Create)
	router.GET("/api/playlists/:id", handler.Show)
	router.DELETE("/api/playlists/:id", handler.Destroy)
	return router, store
}

// doJSON 发送一个带 JSON 请求体的测试请求。
func doJSON(router *gin.Engine, method, url, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, url, nil)
	} else {
		req, _ = http.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestPlaylistLifecycle 测试播放列表从创建到删除的完整流程。
func TestPlaylistLifecycle(t *testing.T) {
	router, _ := newPlaylistRouter()

	// 创建播放列表。
	w := doJSON(router, "POST", "/api/playlists", `{"name":"我的列表"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("期望状态码 201, 得到 %d", w.Code)
	}
	var created models.Playlist
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if created.Name != "我的列表" || created.ID == "" {
		t.Errorf("创建结果不完整: %+v", created)
	}

	// 同名创建产生相同 ID。
	w = doJSON(router, "POST", "/api/playlists", `{"name":"我的列表"}`)
	var duplicate models.Playlist
	json.Unmarshal(w.Body.Bytes(), &duplicate)
	if duplicate.ID != created.ID {
		t.Errorf("期望同名播放列表 ID 相同, 得到 %s 和 %s", created.ID, duplicate.ID)
	}

	// 列表中只有一条记录。
	w = doJSON(router, "GET", "/api/playlists", "")
	if w.Code != http.StatusOK {
		t.Fatalf("期望状态码 200, 得到 %d", w.Code)
	}
	var all []models.Playlist
	json.Unmarshal(w.Body.Bytes(), &all)
	if len(all) != 1 {
		t.Errorf("期望 1 个播放列表, 得到 %d", len(all))
	}

	// 按 ID 查询。
	w = doJSON(router, "GET", "/api/playlists/"+created.ID, "")
	if w.Code != http.StatusOK {
		t.Errorf("期望状态码 200, 得到 %d", w.Code)
	}

	// 删除后再查询应返回 404。
	w = doJSON(router, "DELETE", "/api/playlists/"+created.ID, "")
	if w.Code != http.StatusNoContent {
		t.Errorf("期望状态码 204, 得到 %d", w.Code)
	}
	w = doJSON(router, "GET", "/api/playlists/"+created.ID, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("期望状态码 404, 得到 %d", w.Code)
	}
}

// TestCreatePlaylistValidation 测试缺少名称时的错误处理。
func TestCreatePlaylistValidation(t *testing.T) {
	router, _ := newPlaylistRouter()

	w := doJSON(router, "POST", "/api/playlists", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("期望状态码 400, 得到 %d", w.Code)
	}
	var apiErr APIError
	if err := json.Unmarshal(w.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("解析错误响应失败: %v", err)
	}
	if apiErr.Code != "BAD_REQUEST" {
		t.Errorf("期望错误码 BAD_REQUEST, 得到 %s", apiErr.Code)
	}
}

// TestDestroyMissingPlaylist 测试删除不存在的播放列表。
func TestDestroyMissingPlaylist(t *testing.T) {
	router, _ := newPlaylistRouter()

	w := doJSON(router, "DELETE", "/api/playlists/missing", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("期望状态码 404, 得到 %d", w.Code)
	}
}
