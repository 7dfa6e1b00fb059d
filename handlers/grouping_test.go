package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"abyss-player/grouping"
	"abyss-player/models"
	"abyss-player/services"
)

// newGroupingRouter 构造一个注册了分组工作流路由的测试环境。
func newGroupingRouter() (*gin.Engine, services.Store) {
	gin.SetMode(gin.TestMode)
	store := services.NewMemoryStore()
	router := gin.New()
	handler := NewGroupingHandler(services.NewMediaScanner(), store)
	router.GET("/api/grouping", handler.Show)
	router.POST("/api/grouping/scan", handler.Scan)
	router.POST("/api/grouping/apply", handler.Apply)
	router.POST("/api/grouping/commit", handler.Commit)
	router.POST("/api/grouping/reset", handler.Reset)
	return router, store
}

// TestGroupingWorkflow 测试扫描-分组-提交的完整流程。
func TestGroupingWorkflow(t *testing.T) {
	router, store := newGroupingRouter()
	dir := t.TempDir()
	writeMP3(t, dir, "a.mp3")
	writeMP3(t, dir, "b.mp3")

	// 初始状态处于扫描阶段。
	w := doJSON(router, "GET", "/api/grouping", "")
	var snapshot grouping.Snapshot
	json.Unmarshal(w.Body.Bytes(), &snapshot)
	if snapshot.State != grouping.StateScanning {
		t.Fatalf("期望初始状态为 scanning, 得到 %s", snapshot.State)
	}

	// 执行扫描。
	w = doJSON(router, "POST", "/api/grouping/scan", `{"root_path":"`+dir+`","allowed_mimes":["audio"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("期望状态码 200, 得到 %d: %s", w.Code, w.Body.String())
	}
	json.Unmarshal(w.Body.Bytes(), &snapshot)
	if snapshot.State != grouping.StateGrouping {
		t.Fatalf("期望扫描后进入 grouping 阶段, 得到 %s", snapshot.State)
	}
	if len(snapshot.Ungrouped) != 2 {
		t.Fatalf("期望 2 个未分组路径, 得到 %v", snapshot.Ungrouped)
	}

	// 应用分组规则。
	w = doJSON(router, "POST", "/api/grouping/apply", `{"prefix":"`+dir+`","one_level_deeper":false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("期望状态码 200, 得到 %d", w.Code)
	}
	json.Unmarshal(w.Body.Bytes(), &snapshot)
	if len(snapshot.Ungrouped) != 0 || len(snapshot.Groups) != 1 {
		t.Fatalf("期望全部路径归入 1 个分组, 得到 %+v", snapshot)
	}

	// 提交到一个已存在的播放列表。
	playlist := models.NewPlaylist("p")
	store.Playlists().Save(context.Background(), playlist)
	w = doJSON(router, "POST", "/api/grouping/commit", `{"playlist_id":"`+playlist.ID+`"}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("期望状态码 204, 得到 %d: %s", w.Code, w.Body.String())
	}

	groups, _ := store.Groups().FindByPlaylist(context.Background(), playlist.ID)
	if len(groups) != 1 {
		t.Fatalf("期望创建 1 个分组, 得到 %d", len(groups))
	}
	entries, _ := store.Entries().FindByGroup(context.Background(), groups[0].ID)
	if len(entries) != 2 {
		t.Errorf("期望创建 2 个条目, 得到 %d", len(entries))
	}

	// 提交成功后回到扫描阶段。
	w = doJSON(router, "GET", "/api/grouping", "")
	json.Unmarshal(w.Body.Bytes(), &snapshot)
	if snapshot.State != grouping.StateScanning {
		t.Errorf("期望提交后回到 scanning 阶段, 得到 %s", snapshot.State)
	}
}

// TestGroupingRequiresScanFirst 测试未扫描时分组与提交被拒绝。
func TestGroupingRequiresScanFirst(t *testing.T) {
	router, _ := newGroupingRouter()

	w := doJSON(router, "POST", "/api/grouping/apply", `{"prefix":"/media"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("期望状态码 400, 得到 %d", w.Code)
	}
	w = doJSON(router, "POST", "/api/grouping/commit", `{"playlist_id":"p"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("期望状态码 400, 得到 %d", w.Code)
	}
}

// TestGroupingApplyRejectsEmptyPrefix 测试空前缀规则被拒绝，
// 避免把全部未分组路径扫入一个空键分组。
func TestGroupingApplyRejectsEmptyPrefix(t *testing.T) {
	router, _ := newGroupingRouter()
	dir := t.TempDir()
	writeMP3(t, dir, "a.mp3")

	doJSON(router, "POST", "/api/grouping/scan", `{"root_path":"`+dir+`","allowed_mimes":["audio"]}`)
	w := doJSON(router, "POST", "/api/grouping/apply", `{"prefix":""}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("期望状态码 400, 得到 %d: %s", w.Code, w.Body.String())
	}

	// 拒绝后未分组路径保持不变。
	w = doJSON(router, "GET", "/api/grouping", "")
	var snapshot grouping.Snapshot
	json.Unmarshal(w.Body.Bytes(), &snapshot)
	if len(snapshot.Ungrouped) != 1 || len(snapshot.Groups) != 0 {
		t.Errorf("期望空前缀不改变分组状态, 得到 %+v", snapshot)
	}
}

// TestGroupingCommitUnknownPlaylist 测试提交到不存在的播放列表。
func TestGroupingCommitUnknownPlaylist(t *testing.T) {
	router, _ := newGroupingRouter()
	dir := t.TempDir()
	writeMP3(t, dir, "a.mp3")

	doJSON(router, "POST", "/api/grouping/scan", `{"root_path":"`+dir+`","allowed_mimes":["audio"]}`)
	w := doJSON(router, "POST", "/api/grouping/commit", `{"playlist_id":"missing"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("期望状态码 404, 得到 %d", w.Code)
	}
}

// TestGroupingReset 测试重置后回到扫描阶段并丢弃状态。
func TestGroupingReset(t *testing.T) {
	router, _ := newGroupingRouter()
	dir := t.TempDir()
	writeMP3(t, dir, "a.mp3")

	doJSON(router, "POST", "/api/grouping/scan", `{"root_path":"`+dir+`","allowed_mimes":["audio"]}`)
	w := doJSON(router, "POST", "/api/grouping/reset", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("期望状态码 204, 得到 %d", w.Code)
	}

	w = doJSON(router, "GET", "/api/grouping", "")
	var snapshot grouping.Snapshot
	json.Unmarshal(w.Body.Bytes(), &snapshot)
	if snapshot.State != grouping.StateScanning || len(snapshot.Ungrouped) != 0 {
		t.Errorf("期望重置后状态清空, 得到 %+v", snapshot)
	}
}
