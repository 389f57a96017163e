package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"familygraph_go/internal/service"
)

// FeedHandler 动态记录查询接口
type FeedHandler struct {
	recorder *service.ActivityRecorder
}

// NewFeedHandler 创建动态记录接口实例
func NewFeedHandler(recorder *service.ActivityRecorder) *FeedHandler {
	return &FeedHandler{
		recorder: recorder,
	}
}

// Register 注册路由
func (h *FeedHandler) Register(public *gin.RouterGroup) {
	public.GET("/members/:id/activity", h.Recent)
}

// Recent 查询成员最近的动态记录
func (h *FeedHandler) Recent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	records, err := h.recorder.Recent(c.Request.Context(), id, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}
