package service

import (
	"context"

	"familygraph_go/internal/model"
	"familygraph_go/internal/repository"
)

// SiblingMember 带有效类型标注的兄弟姐妹，供前端按类型渲染角标
type SiblingMember struct {
	Member *model.Member     `json:"member"`
	Type   model.SiblingType `json:"type"`
}

// ImmediateFamily 一跳家庭视图：焦点成员及其父母、配偶、子女、兄弟姐妹
type ImmediateFamily struct {
	Focus    *model.Member   `json:"focus"`
	Parents  []*model.Member `json:"parents"`
	Spouses  []*model.Member `json:"spouses"`
	Children []*model.Member `json:"children"`
	Siblings []SiblingMember `json:"siblings"`
}

// FamilyService 家庭视图组装服务。
// 父母、配偶、子女各一次批量查询；兄弟姐妹集合是显式链接与
// 共享至少一位父母的成员的并集，再补一次批量查询后由分类器标注类型。
type FamilyService struct {
	repo       repository.MemberRepository
	classifier *SiblingClassifier
	errors     *ErrorHandler
	logger     *Logger
}

// NewFamilyService 创建家庭视图服务实例
func NewFamilyService(repo repository.MemberRepository, classifier *SiblingClassifier, errors *ErrorHandler, logger *Logger) *FamilyService {
	return &FamilyService{
		repo:       repo,
		classifier: classifier,
		errors:     errors,
		logger:     logger,
	}
}

// GetImmediateFamily 组装焦点成员的一跳家庭视图
func (s *FamilyService) GetImmediateFamily(ctx context.Context, focusID uint) (*ImmediateFamily, error) {
	focus, err := s.repo.GetByID(ctx, focusID)
	if err != nil {
		return nil, err
	}
	if focus == nil {
		return nil, NewError(ErrMemberNotFound, "focus member not found", nil).
			WithContext("member_id", focusID)
	}

	parents, err := s.repo.GetByIDs(ctx, focus.Parents)
	if err != nil {
		return nil, err
	}
	spouses, err := s.repo.GetByIDs(ctx, focus.Spouses)
	if err != nil {
		return nil, err
	}
	children, err := s.repo.GetByIDs(ctx, focus.Children)
	if err != nil {
		return nil, err
	}

	siblings, err := s.composeSiblings(ctx, focus, parents)
	if err != nil {
		return nil, err
	}

	return &ImmediateFamily{
		Focus:    focus,
		Parents:  parents,
		Spouses:  spouses,
		Children: children,
		Siblings: siblings,
	}, nil
}

// composeSiblings 计算有效兄弟姐妹集合：
// 候选ID = 显式链接目标 ∪ 各父母的其他子女，一次批量取回后逐个分类，
// 有效类型为None的候选被排除。
func (s *FamilyService) composeSiblings(ctx context.Context, focus *model.Member, parents []*model.Member) ([]SiblingMember, error) {
	candidates := focus.Siblings.IDs()
	for _, parent := range parents {
		for _, childID := range parent.Children {
			if childID != focus.ID {
				candidates = candidates.Add(childID)
			}
		}
	}

	fetched, err := s.repo.GetByIDs(ctx, candidates)
	if err != nil {
		return nil, err
	}
	if len(fetched) < len(candidates) {
		s.errors.Handle(NewError(ErrMissingRelative, "sibling composition skipped missing relatives", nil).
			WithContext("member_id", focus.ID).
			WithContext("missing", len(candidates)-len(fetched)))
	}

	siblings := make([]SiblingMember, 0, len(fetched))
	for _, candidate := range fetched {
		siblingType, err := s.classifier.Classify(focus, candidate)
		if err != nil {
			s.errors.Handle(err)
		}
		if siblingType == model.SiblingTypeNone {
			continue
		}
		siblings = append(siblings, SiblingMember{Member: candidate, Type: siblingType})
	}
	return siblings, nil
}
