package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"familygraph_go/internal/service"
)

// 组装视图的缓存时长。关系变更只主动逐出变更双方及其一跳亲属的视图，
// 更远代际的缓存树最多过时一个TTL周期
const viewCacheTTL = time.Minute

// TreeHandler 族谱树与家庭视图接口
type TreeHandler struct {
	family *service.FamilyService
	trees  *service.TreeService
	cache  *service.CacheService
	logger *service.Logger
}

// NewTreeHandler 创建族谱树接口实例
func NewTreeHandler(family *service.FamilyService, trees *service.TreeService, cache *service.CacheService, logger *service.Logger) *TreeHandler {
	return &TreeHandler{
		family: family,
		trees:  trees,
		cache:  cache,
		logger: logger,
	}
}

// Register 注册路由
func (h *TreeHandler) Register(public *gin.RouterGroup) {
	public.GET("/members/:id/family", h.ImmediateFamily)
	public.GET("/members/:id/ancestors", h.Ancestors)
	public.GET("/members/:id/descendants", h.Descendants)
}

// ImmediateFamily 一跳家庭视图
func (h *TreeHandler) ImmediateFamily(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if h.cache != nil {
		var cached service.ImmediateFamily
		if hit, err := h.cache.Get(ctx, service.FamilyViewKey(id), &cached); err == nil && hit {
			c.JSON(http.StatusOK, &cached)
			return
		}
	}

	view, err := h.family.GetImmediateFamily(ctx, id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	h.cacheView(c, service.FamilyViewKey(id), view)
	c.JSON(http.StatusOK, view)
}

// Ancestors 祖先树（向上三代）
func (h *TreeHandler) Ancestors(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if h.cache != nil {
		var cached service.AncestorTree
		if hit, err := h.cache.Get(ctx, service.AncestorViewKey(id), &cached); err == nil && hit {
			c.JSON(http.StatusOK, &cached)
			return
		}
	}

	tree, err := h.trees.GetAncestors(ctx, id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	h.cacheView(c, service.AncestorViewKey(id), tree)
	c.JSON(http.StatusOK, tree)
}

// Descendants 后代树（向下三代）
func (h *TreeHandler) Descendants(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if h.cache != nil {
		var cached service.DescendantTree
		if hit, err := h.cache.Get(ctx, service.DescendantViewKey(id), &cached); err == nil && hit {
			c.JSON(http.StatusOK, &cached)
			return
		}
	}

	tree, err := h.trees.GetDescendants(ctx, id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	h.cacheView(c, service.DescendantViewKey(id), tree)
	c.JSON(http.StatusOK, tree)
}

// cacheView 缓存组装好的视图，失败只记日志不影响响应
func (h *TreeHandler) cacheView(c *gin.Context, key string, view interface{}) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Set(c.Request.Context(), key, view, viewCacheTTL); err != nil {
		h.logger.Warn("Failed to cache view %s: %v", key, err)
	}
}
