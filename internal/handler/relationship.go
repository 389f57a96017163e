package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"familygraph_go/internal/model"
	"familygraph_go/internal/repository"
	"familygraph_go/internal/service"
)

// LinkInput 关系链接/解除入参
type LinkInput struct {
	MemberID    uint   `json:"member_id"`
	RelativeID  uint   `json:"relative_id"`
	Kind        string `json:"kind"`
	SiblingType string `json:"sibling_type,omitempty"`
}

// RelationshipHandler 关系维护接口。
// 写冲突在这里按退避策略重试有限次，仍失败时以409返回。
type RelationshipHandler struct {
	links  *service.LinkService
	retry  *service.Retry
	repo   repository.MemberRepository
	cache  *service.CacheService
	logger *service.Logger
}

// NewRelationshipHandler 创建关系维护接口实例
func NewRelationshipHandler(links *service.LinkService, retry *service.Retry, repo repository.MemberRepository, cache *service.CacheService, logger *service.Logger) *RelationshipHandler {
	return &RelationshipHandler{
		links:  links,
		retry:  retry,
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// Register 注册路由（关系变更全部需要登录）
func (h *RelationshipHandler) Register(protected *gin.RouterGroup) {
	protected.POST("/relationships", h.Link)
	protected.DELETE("/relationships", h.Unlink)
	protected.POST("/members/:id/normalize-siblings", h.NormalizeSiblings)
}

// Link 建立关系
func (h *RelationshipHandler) Link(c *gin.Context) {
	input, ok := h.bindInput(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	err := h.retry.Execute(ctx, func() error {
		return h.links.Link(ctx, input.MemberID, input.RelativeID,
			model.RelationKind(input.Kind), model.SiblingType(input.SiblingType))
	}, isWriteConflict)
	if err != nil {
		abortWithError(c, err)
		return
	}

	h.invalidate(c, input.MemberID, input.RelativeID)
	c.JSON(http.StatusOK, gin.H{"status": "linked"})
}

// Unlink 解除关系
func (h *RelationshipHandler) Unlink(c *gin.Context) {
	input, ok := h.bindInput(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	err := h.retry.Execute(ctx, func() error {
		return h.links.Unlink(ctx, input.MemberID, input.RelativeID,
			model.RelationKind(input.Kind))
	}, isWriteConflict)
	if err != nil {
		abortWithError(c, err)
		return
	}

	h.invalidate(c, input.MemberID, input.RelativeID)
	c.JSON(http.StatusOK, gin.H{"status": "unlinked"})
}

// NormalizeSiblings 触发旧格式兄弟姐妹链接的类型迁移
func (h *RelationshipHandler) NormalizeSiblings(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.links.NormalizeSiblings(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}

	h.invalidate(c, id)
	c.JSON(http.StatusOK, gin.H{"status": "normalized"})
}

// bindInput 解析并校验入参
func (h *RelationshipHandler) bindInput(c *gin.Context) (*LinkInput, bool) {
	var input LinkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return nil, false
	}

	err := service.NewValidator().
		MemberID(input.MemberID, "member_id").
		MemberID(input.RelativeID, "relative_id").
		RelationKind(input.Kind, "kind").
		SiblingType(input.SiblingType, "sibling_type").
		Validate()
	if err != nil {
		abortWithError(c, err)
		return nil, false
	}
	return &input, true
}

// invalidate 清除受影响成员的视图缓存。
// 关系变更还会波及双方一跳亲属的树视图，一并逐出；
// 更远代际的缓存树依赖TTL到期淘汰。
func (h *RelationshipHandler) invalidate(c *gin.Context, memberIDs ...uint) {
	if h.cache == nil {
		return
	}

	ctx := c.Request.Context()
	evict := memberIDs
	if h.repo != nil {
		members, err := h.repo.GetByIDs(ctx, memberIDs)
		if err != nil {
			h.logger.Warn("Failed to load members for cache invalidation: %v", err)
		} else {
			evict = affectedIDs(memberIDs, members)
		}
	}
	if err := h.cache.InvalidateMember(ctx, evict...); err != nil {
		h.logger.Warn("Failed to invalidate view cache: %v", err)
	}
}

// affectedIDs 计算逐出集合：变更双方加上各自当前的一跳亲属，去重
func affectedIDs(memberIDs []uint, members []*model.Member) []uint {
	evict := model.IDList{}
	for _, id := range memberIDs {
		evict = evict.Add(id)
	}
	for _, member := range members {
		for _, id := range member.RelativeIDs() {
			evict = evict.Add(id)
		}
	}
	return evict
}

// isWriteConflict 判断错误是否可按写冲突重试
func isWriteConflict(err error) bool {
	return service.IsCode(err, service.ErrWriteConflict)
}
