package service

import (
	"context"

	"familygraph_go/internal/model"
	"familygraph_go/internal/repository"
)

// 树的展开深度固定为3代，与图表渲染深度一致
const treeGenerations = 3

// AncestorTree 祖先树：焦点成员向上三代
type AncestorTree struct {
	Focus             *model.Member   `json:"focus"`
	Parents           []*model.Member `json:"parents"`
	Grandparents      []*model.Member `json:"grandparents"`
	GreatGrandparents []*model.Member `json:"great_grandparents"`
}

// DescendantTree 后代树：焦点成员向下三代
type DescendantTree struct {
	Focus              *model.Member   `json:"focus"`
	Children           []*model.Member `json:"children"`
	Grandchildren      []*model.Member `json:"grandchildren"`
	GreatGrandchildren []*model.Member `json:"great_grandchildren"`
}

// TreeService 族谱树构建服务。
// 逐代展开，每代只发起一次批量查询；缺失的亲属直接跳过并记日志，
// 树上留空位而不是报错。
type TreeService struct {
	repo   repository.MemberRepository
	errors *ErrorHandler
	logger *Logger
}

// NewTreeService 创建族谱树服务实例
func NewTreeService(repo repository.MemberRepository, errors *ErrorHandler, logger *Logger) *TreeService {
	return &TreeService{
		repo:   repo,
		errors: errors,
		logger: logger,
	}
}

// GetAncestors 获取焦点成员向上三代的祖先树
func (s *TreeService) GetAncestors(ctx context.Context, focusID uint) (*AncestorTree, error) {
	focus, generations, err := s.expand(ctx, focusID, func(m *model.Member) model.IDList {
		return m.Parents
	})
	if err != nil {
		return nil, err
	}

	return &AncestorTree{
		Focus:             focus,
		Parents:           generations[0],
		Grandparents:      generations[1],
		GreatGrandparents: generations[2],
	}, nil
}

// GetDescendants 获取焦点成员向下三代的后代树
func (s *TreeService) GetDescendants(ctx context.Context, focusID uint) (*DescendantTree, error) {
	focus, generations, err := s.expand(ctx, focusID, func(m *model.Member) model.IDList {
		return m.Children
	})
	if err != nil {
		return nil, err
	}

	return &DescendantTree{
		Focus:              focus,
		Children:           generations[0],
		Grandchildren:      generations[1],
		GreatGrandchildren: generations[2],
	}, nil
}

// expand 逐代展开：第k+1代的ID集合来自第k代结果的next字段并集，
// 每代恰好一次GetByIDs调用。
func (s *TreeService) expand(ctx context.Context, focusID uint, next func(*model.Member) model.IDList) (*model.Member, [treeGenerations][]*model.Member, error) {
	var generations [treeGenerations][]*model.Member

	focus, err := s.repo.GetByID(ctx, focusID)
	if err != nil {
		return nil, generations, err
	}
	if focus == nil {
		return nil, generations, NewError(ErrMemberNotFound, "focus member not found", nil).
			WithContext("member_id", focusID)
	}

	current := []*model.Member{focus}
	for gen := 0; gen < treeGenerations; gen++ {
		ids := model.IDList{}
		for _, member := range current {
			for _, id := range next(member) {
				ids = ids.Add(id)
			}
		}
		if len(ids) == 0 {
			generations[gen] = []*model.Member{}
			current = nil
			continue
		}

		fetched, err := s.repo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, generations, err
		}
		if len(fetched) < len(ids) {
			s.errors.Handle(NewError(ErrMissingRelative, "tree expansion skipped missing relatives", nil).
				WithContext("member_id", focusID).
				WithContext("missing", len(ids)-len(fetched)))
		}

		generations[gen] = fetched
		current = fetched
	}

	return focus, generations, nil
}
