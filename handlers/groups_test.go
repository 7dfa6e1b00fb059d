package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"abyss-player/models"
	"abyss-player/services"
)

// newGroupRouter 构造一个注册了分组路由的测试环境。
func newGroupRouter() (*gin.Engine, services.Store) {
	gin.SetMode(gin.TestMode)
	store := services.NewMemoryStore()
	router := gin.New()
	handler := NewGroupHandler(store)
	router.GET("/api/groups", handler.Index)
	router.POST("/api/groups", handler.Create)
	router.POST("/api/groups/sort", handler.Sort)
	router.GET("/api/groups/:id", handler.Show)
	router.DELETE("/api/groups/:id", handler.Destroy)
	router.POST("/api/groups/:id/shift", handler.Shift)
	return router, store
}

// TestCreateGroup 测试分组创建与路径校验。
func TestCreateGroup(t *testing.T) {
	router, _ := newGroupRouter()
	dir := t.TempDir()

	// 路径真实存在时创建成功。
	w := doJSON(router, "POST", "/api/groups", `{"playlist_id":"p1","path":"`+dir+`"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("期望状态码 201, 得到 %d: %s", w.Code, w.Body.String())
	}
	var group models.Group
	if err := json.Unmarshal(w.Body.Bytes(), &group); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if group.PlaylistID != "p1" || group.Meta.Path != dir {
		t.Errorf("创建结果不完整: %+v", group)
	}
	if group.Meta.CreatedAt.IsZero() {
		t.Error("期望分组元数据带有时间信息")
	}

	// 路径不存在时返回 404。
	missing := filepath.Join(dir, "missing")
	w = doJSON(router, "POST", "/api/groups", `{"playlist_id":"p1","path":"`+missing+`"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("期望状态码 404, 得到 %d", w.Code)
	}

	// 缺少参数时返回 400。
	w = doJSON(router, "POST", "/api/groups", `{"playlist_id":"p1"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("期望状态码 400, 得到 %d", w.Code)
	}
}

// TestGroupIndexFiltersByPlaylist 测试按播放列表过滤分组列表。
func TestGroupIndexFiltersByPlaylist(t *testing.T) {
	router, store := newGroupRouter()
	ctx := context.Background()
	store.Groups().Save(ctx, models.NewGroup(models.Meta{Path: "/a"}, "p1"))
	store.Groups().Save(ctx, models.NewGroup(models.Meta{Path: "/b"}, "p2"))

	w := doJSON(router, "GET", "/api/groups?playlist_id=p1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("期望状态码 200, 得到 %d", w.Code)
	}
	var groups []models.Group
	json.Unmarshal(w.Body.Bytes(), &groups)
	if len(groups) != 1 || groups[0].PlaylistID != "p1" {
		t.Errorf("期望仅返回 p1 下的分组, 得到 %+v", groups)
	}

	w = doJSON(router, "GET", "/api/groups", "")
	json.Unmarshal(w.Body.Bytes(), &groups)
	if len(groups) != 2 {
		t.Errorf("期望返回全部 2 个分组, 得到 %d", len(groups))
	}
}

// TestGroupSortValidation 测试排序规则校验与排序效果。
func TestGroupSortValidation(t *testing.T) {
	router, store := newGroupRouter()
	ctx := context.Background()
	store.Groups().Save(ctx, models.NewGroup(models.Meta{Path: "/b"}, "p1"))
	store.Groups().Save(ctx, models.NewGroup(models.Meta{Path: "/a"}, "p1"))

	// 未知排序字段被拒绝。
	w := doJSON(router, "POST", "/api/groups/sort", `{"by":"rating","ascend":true}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("期望状态码 400, 得到 %d", w.Code)
	}

	// 按路径升序排序。
	w = doJSON(router, "POST", "/api/groups/sort", `{"by":"path","ascend":true}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("期望状态码 204, 得到 %d", w.Code)
	}
	groups, _ := store.Groups().All(ctx)
	if groups[0].Meta.Path != "/a" {
		t.Errorf("期望 /a 排在最前, 得到 %s", groups[0].Meta.Path)
	}
}

// TestGroupShift 测试分组移位与错误处理。
func TestGroupShift(t *testing.T) {
	router, store := newGroupRouter()
	ctx := context.Background()
	first := models.NewGroup(models.Meta{Path: "/a"}, "p1")
	second := models.NewGroup(models.Meta{Path: "/b"}, "p1")
	store.Groups().Save(ctx, first)
	store.Groups().Save(ctx, second)

	w := doJSON(router, "POST", "/api/groups/"+first.ID+"/shift", `{"offset":1}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("期望状态码 204, 得到 %d", w.Code)
	}
	groups, _ := store.Groups().All(ctx)
	if groups[0].ID != second.ID {
		t.Errorf("期望 %s 排在最前, 得到 %s", second.ID, groups[0].ID)
	}

	w = doJSON(router, "POST", "/api/groups/missing/shift", `{"offset":1}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("期望状态码 404, 得到 %d", w.Code)
	}
}

// TestGroupDestroyCascades 测试删除分组时级联删除条目。
func TestGroupDestroyCascades(t *testing.T) {
	router, store := newGroupRouter()
	ctx := context.Background()
	group := models.NewGroup(models.Meta{Path: "/a"}, "p1")
	store.Groups().Save(ctx, group)
	store.Entries().Save(ctx, models.Entry{ID: "e1", GroupID: group.ID})

	w := doJSON(router, "DELETE", "/api/groups/"+group.ID, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("期望状态码 204, 得到 %d", w.Code)
	}
	entries, _ := store.Entries().All(ctx)
	if len(entries) != 0 {
		t.Errorf("期望条目被级联删除, 仍剩 %d 个", len(entries))
	}
}
