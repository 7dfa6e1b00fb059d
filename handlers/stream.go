package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"abyss-player/logger"
	"abyss-player/middleware"
	"abyss-player/services"
)

// StreamHandler 负责将条目对应的媒体文件以 HTTP 流式传输给客户端。
// 图片整体返回；音频与视频必须携带 Range 请求头分段获取。
type StreamHandler struct {
	store        services.Store
	maxRangeSize int64
}

// NewStreamHandler 创建一个新的 StreamHandler 实例。
func NewStreamHandler(store services.Store, maxRangeSize int64) *StreamHandler {
	return &StreamHandler{store: store, maxRangeSize: maxRangeSize}
}

// Stream 按条目 ID 流式传输其媒体文件。
func (h *StreamHandler) Stream(c *gin.Context) {
	id := c.Param("id")
	requestID := middleware.GetRequestID(c)

	entry, err := h.store.Entries().Find(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, NewNotFoundError("条目"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}

	cleanPath, err := filepath.Abs(entry.Meta.Path)
	if err != nil {
		logger.WithRequestID(requestID).Errorf("获取文件绝对路径失败 %s: %v", entry.Meta.Path, err)
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, NewNotFoundError("媒体文件"))
		} else {
			logger.WithRequestID(requestID).Errorf("无法获取文件信息 %s: %v", cleanPath, err)
			c.JSON(http.StatusInternalServerError, NewInternalError(err))
		}
		return
	}

	// 确保请求的不是一个目录。
	if fileInfo.IsDir() {
		logger.WithRequestID(requestID).Warnf("安全警告: 尝试流式传输目录: %s", cleanPath)
		c.JSON(http.StatusForbidden, NewForbiddenError("无法流式传输目录"))
		return
	}

	file, err := os.Open(cleanPath)
	if err != nil {
		logger.WithRequestID(requestID).Errorf("打开媒体文件失败 %s: %v", cleanPath, err)
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	defer file.Close()

	fileSize := fileInfo.Size()
	contentType := entry.Mime
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	logger.WithRequestID(requestID).Infof("媒体流请求: id=%s, path=%s, ip=%s, size=%d", id, cleanPath, c.ClientIP(), fileSize)

	rangeHeader := c.GetHeader("Range")
	if rangeHeader != "" {
		h.serveRange(c, file, fileSize, rangeHeader, contentType, filepath.Base(cleanPath))
		return
	}

	// 音频与视频体积大且需要支持拖动，拒绝无 Range 的整体传输。
	if strings.HasPrefix(contentType, "audio/") || strings.HasPrefix(contentType, "video/") {
		c.Header("Accept-Ranges", "bytes")
		c.JSON(http.StatusBadRequest, NewBadRequestError("音频与视频必须使用 Range 请求"))
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Content-Length", fmt.Sprintf("%d", fileSize))
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=\"%s\"", filepath.Base(cleanPath)))
	c.Header("Accept-Ranges", "bytes")

	c.Status(http.StatusOK)
	written, err := io.Copy(c.Writer, file)
	if err != nil {
		logger.WithRequestID(requestID).Errorf("流式传输媒体时出错 (已写入 %d/%d 字节): %v", written, fileSize, err)
	}
}

// serveRange 处理 HTTP Range 请求，用于支持媒体的分段传输与拖动。
func (h *StreamHandler) serveRange(c *gin.Context, file *os.File, fileSize int64, rangeHeader, contentType, filename string) {
	requestID := middleware.GetRequestID(c)
	ranges := strings.TrimPrefix(rangeHeader, "bytes=")
	parts := strings.Split(ranges, "-")

	if len(parts) != 2 {
		c.JSON(http.StatusBadRequest, NewBadRequestError("无效的 Range 请求头格式"))
		return
	}

	start := int64(0)
	end := fileSize - 1

	if parts[0] == "" {
		// bytes=-N 表示请求文件末尾的 N 个字节。
		suffix, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || suffix <= 0 {
			c.JSON(http.StatusBadRequest, NewBadRequestError("无效的 Range 结束值"))
			return
		}
		start = fileSize - suffix
		if start < 0 {
			start = 0
		}
	} else {
		var err error
		start, err = strconv.ParseInt(parts[0], 10, 64)
		if err != nil || start < 0 {
			c.JSON(http.StatusBadRequest, NewBadRequestError("无效的 Range 起始值"))
			return
		}
		if parts[1] != "" {
			end, err = strconv.ParseInt(parts[1], 10, 64)
			if err != nil || end < 0 {
				c.JSON(http.StatusBadRequest, NewBadRequestError("无效的 Range 结束值"))
				return
			}
		}
	}

	if start < 0 || end >= fileSize || start > end {
		c.Header("Content-Range", fmt.Sprintf("bytes */%d", fileSize))
		c.Status(http.StatusRequestedRangeNotSatisfiable)
		return
	}

	contentLength := end - start + 1

	// 限制单次请求的数据大小。
	if contentLength > h.maxRangeSize {
		logger.WithRequestID(requestID).Warnf("Range 请求过大: %d 字节 (最大 %d)", contentLength, h.maxRangeSize)
		c.JSON(http.StatusBadRequest, NewBadRequestError(fmt.Sprintf("请求范围过大 (最大 %d 字节)", h.maxRangeSize)))
		return
	}

	c.Header("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, fileSize))
	c.Header("Content-Length", fmt.Sprintf("%d", contentLength))
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=\"%s\"", filename))
	c.Header("Accept-Ranges", "bytes")
	c.Status(http.StatusPartialContent)

	if _, err := file.Seek(start, 0); err != nil {
		logger.WithRequestID(requestID).Errorf("定位文件到 %d 位置失败: %v", start, err)
		return
	}

	written, err := io.CopyN(c.Writer, file, contentLength)
	if err != nil && err != io.EOF {
		logger.WithRequestID(requestID).Errorf("流式传输范围时出错 (已写入 %d/%d 字节): %v", written, contentLength, err)
	}
}
