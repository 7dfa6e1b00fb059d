package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"abyss-player/logger"
	"abyss-player/middleware"
	"abyss-player/services"
)

// ScannerHandler 负责处理媒体文件扫描请求。
type ScannerHandler struct {
	scanner services.Scanner
}

// NewScannerHandler 创建一个新的 ScannerHandler 实例。
func NewScannerHandler(scanner services.Scanner) *ScannerHandler {
	return &ScannerHandler{scanner: scanner}
}

// Index 扫描指定根目录并返回匹配的媒体文件路径列表。
// allowed_mimes 为逗号分隔的 MIME 类型模式。
// 参数校验在调用扫描器之前完成。
func (h *ScannerHandler) Index(c *gin.Context) {
	rootPath := c.Query("root_path")
	if rootPath == "" {
		c.JSON(http.StatusBadRequest, NewValidationError("缺少 root_path 参数"))
		return
	}
	allowedMimes := splitMimes(c.Query("allowed_mimes"))
	if len(allowedMimes) == 0 {
		c.JSON(http.StatusBadRequest, NewValidationError("缺少 allowed_mimes 参数"))
		return
	}

	paths, err := h.scanner.Scan(c.Request.Context(), rootPath, allowedMimes)
	if err != nil {
		logger.WithRequestID(middleware.GetRequestID(c)).Errorf("扫描失败: %v", err)
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, paths)
}

// splitMimes 解析逗号分隔的 MIME 模式列表，忽略空白项。
func splitMimes(raw string) []string {
	mimes := make([]string, 0)
	for _, mime := range strings.Split(raw, ",") {
		mime = strings.TrimSpace(mime)
		if mime != "" {
			mimes = append(mimes, mime)
		}
	}
	return mimes
}
