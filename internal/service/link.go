package service

import (
	"context"
	"errors"

	"familygraph_go/internal/model"
	"familygraph_go/internal/repository"
)

// LinkService 关系链接维护服务。
// 这是唯一允许修改parents/spouses/children/siblings字段的组件：
// 每次链接/解除都在一个事务内同时改写两条成员记录，
// 保证镜像边要么两边都在、要么两边都不在。
type LinkService struct {
	repo       repository.MemberRepository
	classifier *SiblingClassifier
	events     *EventService
	logger     *Logger
}

// NewLinkService 创建链接维护服务实例
func NewLinkService(repo repository.MemberRepository, classifier *SiblingClassifier, events *EventService, logger *Logger) *LinkService {
	return &LinkService{
		repo:       repo,
		classifier: classifier,
		events:     events,
		logger:     logger,
	}
}

// Link 建立memberID与relativeID之间的关系及其镜像边。
// kind描述对方相对本人的身份；kind为sibling时siblingType指定显式类型，
// 留空按Full处理。重复链接是幂等空操作。
func (s *LinkService) Link(ctx context.Context, memberID, relativeID uint, kind model.RelationKind, siblingType model.SiblingType) error {
	if err := s.validate(memberID, relativeID, kind); err != nil {
		return err
	}
	if kind == model.RelationSibling && siblingType == model.SiblingTypeNone {
		siblingType = model.SiblingTypeFull
	}
	if kind == model.RelationSibling && !siblingType.IsValid() {
		return NewError(ErrInvalidRequest, "invalid sibling type", nil).
			WithContext("sibling_type", string(siblingType))
	}

	err := s.repo.Transaction(ctx, func(tx repository.MemberRepository) error {
		member, relative, err := s.fetchPair(ctx, tx, memberID, relativeID)
		if err != nil {
			return err
		}

		// 两位父母上限在任何写入之前检查
		if kind == model.RelationParent &&
			len(member.Parents) >= model.MaxParents && !member.Parents.Contains(relativeID) {
			return NewError(ErrParentLimit, "member already has two parents", nil).
				WithContext("member_id", memberID)
		}
		if kind == model.RelationChild &&
			len(relative.Parents) >= model.MaxParents && !relative.Parents.Contains(memberID) {
			return NewError(ErrParentLimit, "relative already has two parents", nil).
				WithContext("member_id", relativeID)
		}

		s.apply(member, relative, kind, siblingType)
		s.apply(relative, member, kind.Reciprocal(), siblingType)

		if err := tx.Save(ctx, member); err != nil {
			return err
		}
		return tx.Save(ctx, relative)
	})
	if err != nil {
		return s.asWriteError(err)
	}

	s.publish(ctx, "relationship.linked", memberID, relativeID, string(kind))
	return nil
}

// Unlink 解除关系及其镜像边；解除不存在的关系是幂等空操作
func (s *LinkService) Unlink(ctx context.Context, memberID, relativeID uint, kind model.RelationKind) error {
	if err := s.validate(memberID, relativeID, kind); err != nil {
		return err
	}

	err := s.repo.Transaction(ctx, func(tx repository.MemberRepository) error {
		member, relative, err := s.fetchPair(ctx, tx, memberID, relativeID)
		if err != nil {
			return err
		}

		s.remove(member, relativeID, kind)
		s.remove(relative, memberID, kind.Reciprocal())

		if err := tx.Save(ctx, member); err != nil {
			return err
		}
		return tx.Save(ctx, relative)
	})
	if err != nil {
		return s.asWriteError(err)
	}

	s.publish(ctx, "relationship.unlinked", memberID, relativeID, string(kind))
	return nil
}

// NormalizeSiblings 旧格式迁移：把成员身上类型未知的兄弟姐妹链接
// 按共同父母推断出full/half，推断不出时按Full落盘，ID绝不丢失。
// 两边记录在同一事务内更新。
func (s *LinkService) NormalizeSiblings(ctx context.Context, memberID uint) error {
	err := s.repo.Transaction(ctx, func(tx repository.MemberRepository) error {
		member, err := tx.GetByID(ctx, memberID)
		if err != nil {
			return err
		}
		if member == nil {
			return NewError(ErrMemberNotFound, "member not found", nil).
				WithContext("member_id", memberID)
		}

		changed := false
		for i, link := range member.Siblings {
			if link.Type != model.SiblingTypeNone {
				continue
			}

			sibling, err := tx.GetByID(ctx, link.ID)
			if err != nil {
				return err
			}
			if sibling == nil {
				s.logger.Warn("Sibling normalization skipped missing member %d", link.ID)
				continue
			}

			inferred := s.classifier.derive(member, sibling)
			if inferred == model.SiblingTypeNone {
				inferred = model.SiblingTypeFull
			}

			member.Siblings[i].Type = inferred
			sibling.Siblings = sibling.Siblings.Remove(member.ID).
				Add(model.SiblingLink{ID: member.ID, Type: inferred})
			if err := tx.Save(ctx, sibling); err != nil {
				return err
			}
			changed = true
		}

		if !changed {
			return nil
		}
		return tx.Save(ctx, member)
	})
	if err != nil {
		return s.asWriteError(err)
	}
	return nil
}

// validate 写入前的请求校验：自链接与未知关系种类直接拒绝
func (s *LinkService) validate(memberID, relativeID uint, kind model.RelationKind) error {
	if memberID == relativeID {
		return NewError(ErrInvalidRequest, "cannot link a member to itself", nil).
			WithContext("member_id", memberID)
	}
	if !kind.IsValid() {
		return NewError(ErrInvalidRequest, "unknown relation kind", nil).
			WithContext("kind", string(kind))
	}
	return nil
}

// fetchPair 取出两条待改写的成员记录，任一缺失即报not-found
func (s *LinkService) fetchPair(ctx context.Context, tx repository.MemberRepository, memberID, relativeID uint) (*model.Member, *model.Member, error) {
	member, err := tx.GetByID(ctx, memberID)
	if err != nil {
		return nil, nil, err
	}
	if member == nil {
		return nil, nil, NewError(ErrMemberNotFound, "member not found", nil).
			WithContext("member_id", memberID)
	}

	relative, err := tx.GetByID(ctx, relativeID)
	if err != nil {
		return nil, nil, err
	}
	if relative == nil {
		return nil, nil, NewError(ErrMemberNotFound, "relative not found", nil).
			WithContext("member_id", relativeID)
	}
	return member, relative, nil
}

// apply 在member身上登记relative作为其kind关系，已存在时不变
func (s *LinkService) apply(member, relative *model.Member, kind model.RelationKind, siblingType model.SiblingType) {
	switch kind {
	case model.RelationParent:
		member.Parents = member.Parents.Add(relative.ID)
	case model.RelationChild:
		member.Children = member.Children.Add(relative.ID)
	case model.RelationSpouse:
		member.Spouses = member.Spouses.Add(relative.ID)
	case model.RelationSibling:
		member.Siblings = member.Siblings.Add(model.SiblingLink{ID: relative.ID, Type: siblingType})
	}
}

// remove 从member身上移除指向relativeID的kind关系，不存在时不变
func (s *LinkService) remove(member *model.Member, relativeID uint, kind model.RelationKind) {
	switch kind {
	case model.RelationParent:
		member.Parents = member.Parents.Remove(relativeID)
	case model.RelationChild:
		member.Children = member.Children.Remove(relativeID)
	case model.RelationSpouse:
		member.Spouses = member.Spouses.Remove(relativeID)
	case model.RelationSibling:
		member.Siblings = member.Siblings.Remove(relativeID)
	}
}

// asWriteError 业务错误原样返回，底层提交失败归入write-conflict供调用方重试
func (s *LinkService) asWriteError(err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return NewError(ErrWriteConflict, "two-sided write could not be committed", err)
}

// publish 发布关系变更事件，事件服务未接线时静默跳过
func (s *LinkService) publish(ctx context.Context, action string, memberID, relativeID uint, detail string) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, action, memberID, relativeID, detail)
}
