package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"abyss-player/models"
	"abyss-player/services"
)

// newEntryRouter 构造一个注册了条目路由的测试环境。
func newEntryRouter() (*gin.Engine, services.Store) {
	gin.SetMode(gin.TestMode)
	store := services.NewMemoryStore()
	router := gin.New()
	handler := NewEntryHandler(store)
	router.GET("/api/entries", handler.Index)
	router.POST("/api/entries", handler.Create)
	router.POST("/api/entries/sort", handler.Sort)
	router.GET("/api/entries/:id", handler.Show)
	router.DELETE("/api/entries/:id", handler.Destroy)
	router.POST("/api/entries/:id/shift", handler.Shift)
	return router, store
}

// writeMP3 写入一个带 ID3 头的假 MP3 文件，足以被内容探测识别为音频。
func writeMP3(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("ID3\x03\x00\x00\x00fake"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestCreateEntry 测试条目创建时的 MIME 探测与路径校验。
func TestCreateEntry(t *testing.T) {
	router, _ := newEntryRouter()
	path := writeMP3(t, t.TempDir(), "song.mp3")

	w := doJSON(router, "POST", "/api/entries", `{"group_id":"g1","path":"`+path+`"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("期望状态码 201, 得到 %d: %s", w.Code, w.Body.String())
	}
	var entry models.Entry
	if err := json.Unmarshal(w.Body.Bytes(), &entry); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if entry.GroupID != "g1" {
		t.Errorf("期望分组为 g1, 得到 %s", entry.GroupID)
	}
	if !strings.HasPrefix(entry.Mime, "audio/") {
		t.Errorf("期望探测为音频类型, 得到 %q", entry.Mime)
	}

	// 路径不存在时返回 404。
	w = doJSON(router, "POST", "/api/entries", `{"group_id":"g1","path":"/nonexistent.mp3"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("期望状态码 404, 得到 %d", w.Code)
	}
}

// TestEntryIndexFiltersByGroup 测试按分组过滤条目列表。
func TestEntryIndexFiltersByGroup(t *testing.T) {
	router, store := newEntryRouter()
	ctx := context.Background()
	store.Entries().Save(ctx, models.Entry{ID: "e1", GroupID: "g1"})
	store.Entries().Save(ctx, models.Entry{ID: "e2", GroupID: "g2"})

	w := doJSON(router, "GET", "/api/entries?group_id=g1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("期望状态码 200, 得到 %d", w.Code)
	}
	var entries []models.Entry
	json.Unmarshal(w.Body.Bytes(), &entries)
	if len(entries) != 1 || entries[0].ID != "e1" {
		t.Errorf("期望仅返回 g1 下的条目, 得到 %+v", entries)
	}
}

// TestEntryShow 测试条目详情查询。
func TestEntryShow(t *testing.T) {
	router, store := newEntryRouter()
	ctx := context.Background()
	path := writeMP3(t, t.TempDir(), "song.mp3")
	entry := models.Entry{ID: "e1", GroupID: "g1", Mime: "audio/mpeg", Meta: models.Meta{Path: path}}
	store.Entries().Save(ctx, entry)

	w := doJSON(router, "GET", "/api/entries/e1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("期望状态码 200, 得到 %d", w.Code)
	}
	var details map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &details); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if details["id"] != "e1" {
		t.Errorf("期望返回条目 e1, 得到 %v", details["id"])
	}

	w = doJSON(router, "GET", "/api/entries/missing", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("期望状态码 404, 得到 %d", w.Code)
	}
}

// TestEntryShiftAndDestroy 测试条目移位与删除。
func TestEntryShiftAndDestroy(t *testing.T) {
	router, store := newEntryRouter()
	ctx := context.Background()
	store.Entries().Save(ctx, models.Entry{ID: "e1", GroupID: "g1"})
	store.Entries().Save(ctx, models.Entry{ID: "e2", GroupID: "g1"})

	// 越界偏移收敛到边界而不是报错。
	w := doJSON(router, "POST", "/api/entries/e1/shift", `{"offset":100}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("期望状态码 204, 得到 %d", w.Code)
	}
	entries, _ := store.Entries().All(ctx)
	if entries[len(entries)-1].ID != "e1" {
		t.Errorf("期望 e1 移到末尾, 得到 %+v", entries)
	}

	w = doJSON(router, "DELETE", "/api/entries/e1", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("期望状态码 204, 得到 %d", w.Code)
	}
	w = doJSON(router, "DELETE", "/api/entries/e1", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("期望状态码 404, 得到 %d", w.Code)
	}
}
