package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"familygraph_go/internal/model"
	"familygraph_go/internal/repository"
	"familygraph_go/internal/service"
)

// MemberInput 成员创建/更新入参
type MemberInput struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Gender     string `json:"gender"`
	BirthDate  string `json:"birth_date"`
	DeathDate  string `json:"death_date"`
	BirthPlace string `json:"birth_place"`
	DeathPlace string `json:"death_place"`
	Biography  string `json:"biography"`
	PhotoURL   string `json:"photo_url"`

	// 可选的初始关系：新成员与一位既有成员直接建立关系
	InitialRelative uint   `json:"initial_relative,omitempty"`
	InitialKind     string `json:"initial_kind,omitempty"`
}

// MemberHandler 成员档案接口
type MemberHandler struct {
	repo   repository.MemberRepository
	links  *service.LinkService
	search *service.MemberSearch
	events *service.EventService
	logger *service.Logger
}

// NewMemberHandler 创建成员接口实例
func NewMemberHandler(repo repository.MemberRepository, links *service.LinkService, search *service.MemberSearch, events *service.EventService, logger *service.Logger) *MemberHandler {
	return &MemberHandler{
		repo:   repo,
		links:  links,
		search: search,
		events: events,
		logger: logger,
	}
}

// Register 注册路由
func (h *MemberHandler) Register(public, protected *gin.RouterGroup) {
	public.GET("/members/:id", h.Get)
	public.GET("/search", h.Search)
	protected.POST("/members", h.Create)
	protected.PUT("/members/:id", h.Update)
	protected.DELETE("/members/:id", h.Delete)
}

// Get 获取成员档案
func (h *MemberHandler) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	member, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if member == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}
	c.JSON(http.StatusOK, member)
}

// Search 搜索成员：短查询走内存索引联想，其余走仓储模糊搜索
func (h *MemberHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	if c.Query("typeahead") == "true" {
		c.JSON(http.StatusOK, h.search.Search(query))
		return
	}

	members, err := h.repo.Search(c.Request.Context(), query)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// Create 创建成员，可附带一条初始关系
func (h *MemberHandler) Create(c *gin.Context) {
	var input MemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	validator := service.NewValidator().
		Required(input.FirstName, "first_name").
		MaxLength(input.FirstName, "first_name", 100).
		MaxLength(input.LastName, "last_name", 100).
		Gender(input.Gender, "gender").
		Date(input.BirthDate, "birth_date").
		Date(input.DeathDate, "death_date")
	if input.InitialRelative != 0 {
		validator.RelationKind(input.InitialKind, "initial_kind")
	}
	if err := validator.Validate(); err != nil {
		abortWithError(c, err)
		return
	}

	member, err := memberFromInput(&input)
	if err != nil {
		abortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.repo.Create(ctx, member); err != nil {
		abortWithError(c, err)
		return
	}

	if input.InitialRelative != 0 {
		err := h.links.Link(ctx, member.ID, input.InitialRelative,
			model.RelationKind(input.InitialKind), model.SiblingTypeNone)
		if err != nil {
			abortWithError(c, err)
			return
		}
		// 关系字段由LinkService写入，重新读取完整记录
		if linked, err := h.repo.GetByID(ctx, member.ID); err == nil && linked != nil {
			member = linked
		}
	}

	h.search.Index(member)
	if h.events != nil {
		h.events.Publish(ctx, "member.created", member.ID, 0, member.FullName())
	}
	c.JSON(http.StatusCreated, member)
}

// Update 更新成员档案字段（结构字段不在此处修改）
func (h *MemberHandler) Update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var input MemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := service.NewValidator().
		Required(input.FirstName, "first_name").
		MaxLength(input.FirstName, "first_name", 100).
		MaxLength(input.LastName, "last_name", 100).
		Gender(input.Gender, "gender").
		Date(input.BirthDate, "birth_date").
		Date(input.DeathDate, "death_date").
		Validate()
	if err != nil {
		abortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	member, err := h.repo.GetByID(ctx, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if member == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}

	updated, err := memberFromInput(&input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	member.FirstName = updated.FirstName
	member.LastName = updated.LastName
	member.Gender = updated.Gender
	member.BirthDate = updated.BirthDate
	member.DeathDate = updated.DeathDate
	member.BirthPlace = updated.BirthPlace
	member.DeathPlace = updated.DeathPlace
	member.Biography = updated.Biography
	member.PhotoURL = updated.PhotoURL

	if err := h.repo.Save(ctx, member); err != nil {
		abortWithError(c, err)
		return
	}

	h.search.Index(member)
	c.JSON(http.StatusOK, member)
}

// Delete 删除成员，仓储负责清理所有指向该成员的结构字段
func (h *MemberHandler) Delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.repo.Delete(ctx, id); err != nil {
		abortWithError(c, err)
		return
	}

	h.search.Remove(id)
	if h.events != nil {
		h.events.Publish(ctx, "member.deleted", id, 0, "")
	}
	c.Status(http.StatusNoContent)
}

// memberFromInput 把入参转为成员模型
func memberFromInput(input *MemberInput) (*model.Member, error) {
	member := &model.Member{
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Gender:     input.Gender,
		BirthPlace: input.BirthPlace,
		DeathPlace: input.DeathPlace,
		Biography:  input.Biography,
		PhotoURL:   input.PhotoURL,
		Parents:    model.IDList{},
		Spouses:    model.IDList{},
		Children:   model.IDList{},
		Siblings:   model.SiblingLinks{},
	}

	if input.BirthDate != "" {
		parsed, err := time.Parse("2006-01-02", input.BirthDate)
		if err != nil {
			return nil, service.NewError(service.ErrValidation, "invalid birth_date", err)
		}
		member.BirthDate = &parsed
	}
	if input.DeathDate != "" {
		parsed, err := time.Parse("2006-01-02", input.DeathDate)
		if err != nil {
			return nil, service.NewError(service.ErrValidation, "invalid death_date", err)
		}
		member.DeathDate = &parsed
	}
	return member, nil
}

// paramID 解析路径中的成员ID
func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member id"})
		return 0, false
	}
	return uint(id), true
}
