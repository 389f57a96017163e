package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"familygraph_go/internal/model"
)

// MemberRepository 成员仓储接口。
// GetByID对不存在的成员返回(nil, nil)：关系指向缺失数据不是错误，
// 由调用方决定跳过还是上报。GetByIDs必须是单次批量查询。
type MemberRepository interface {
	// GetByID 按ID获取成员，不存在时返回(nil, nil)
	GetByID(ctx context.Context, id uint) (*model.Member, error)
	// GetByIDs 按ID集合批量获取成员，一次调用完成；缺失的ID直接跳过
	GetByIDs(ctx context.Context, ids []uint) ([]*model.Member, error)
	// Search 按姓名/地点模糊搜索成员
	Search(ctx context.Context, query string) ([]*model.Member, error)
	// Create 创建成员
	Create(ctx context.Context, member *model.Member) error
	// Save 保存成员全部字段
	Save(ctx context.Context, member *model.Member) error
	// Delete 删除成员，并从所有引用该成员的结构字段中清除其ID
	Delete(ctx context.Context, id uint) error
	// Transaction 在事务中执行fn，fn返回错误时整体回滚
	Transaction(ctx context.Context, fn func(MemberRepository) error) error
}

// GormMemberRepository 基于GORM的成员仓储实现
type GormMemberRepository struct {
	db   *gorm.DB
	inTx bool
}

// NewGormMemberRepository 创建成员仓储实例
func NewGormMemberRepository(db *DB) *GormMemberRepository {
	return &GormMemberRepository{db: db.DB}
}

// reader 构造读查询。事务内的读取加FOR UPDATE行锁，
// 防止并发事务在读取和保存之间改写同一行后被整行Save覆盖。
// sqlite不支持该子句，其写事务本身即是串行的。
func (r *GormMemberRepository) reader(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx)
	if r.inTx && r.db.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

// GetByID 按ID获取成员
func (r *GormMemberRepository) GetByID(ctx context.Context, id uint) (*model.Member, error) {
	var member model.Member
	err := r.reader(ctx).First(&member, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member %d: %v", id, err)
	}
	return &member, nil
}

// GetByIDs 按ID集合批量获取成员，单次IN查询
func (r *GormMemberRepository) GetByIDs(ctx context.Context, ids []uint) ([]*model.Member, error) {
	if len(ids) == 0 {
		return []*model.Member{}, nil
	}
	var members []*model.Member
	if err := r.reader(ctx).Where("id IN ?", ids).Find(&members).Error; err != nil {
		return nil, fmt.Errorf("failed to get members by ids: %v", err)
	}
	return members, nil
}

// Search 按姓名/地点模糊搜索成员
func (r *GormMemberRepository) Search(ctx context.Context, query string) ([]*model.Member, error) {
	var members []*model.Member
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("first_name LIKE ? OR last_name LIKE ? OR birth_place LIKE ? OR death_place LIKE ?",
			pattern, pattern, pattern, pattern).
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search members: %v", err)
	}
	return members, nil
}

// Create 创建成员
func (r *GormMemberRepository) Create(ctx context.Context, member *model.Member) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		return fmt.Errorf("failed to create member: %v", err)
	}
	return nil
}

// Save 保存成员全部字段
func (r *GormMemberRepository) Save(ctx context.Context, member *model.Member) error {
	if err := r.db.WithContext(ctx).Save(member).Error; err != nil {
		return fmt.Errorf("failed to save member %d: %v", member.ID, err)
	}
	return nil
}

// Delete 删除成员并清理引用。
// 对称性不变式保证引用该成员的恰好是其自身结构字段中的各ID，
// 因此在同一事务内批量取出这些成员、剔除被删ID后保存即可。
func (r *GormMemberRepository) Delete(ctx context.Context, id uint) error {
	return r.Transaction(ctx, func(tx MemberRepository) error {
		member, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if member == nil {
			return nil
		}

		relatives, err := tx.GetByIDs(ctx, member.RelativeIDs())
		if err != nil {
			return err
		}
		for _, relative := range relatives {
			relative.Parents = relative.Parents.Remove(id)
			relative.Spouses = relative.Spouses.Remove(id)
			relative.Children = relative.Children.Remove(id)
			relative.Siblings = relative.Siblings.Remove(id)
			if err := tx.Save(ctx, relative); err != nil {
				return err
			}
		}

		gtx := tx.(*GormMemberRepository)
		if err := gtx.db.WithContext(ctx).Delete(&model.Member{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete member %d: %v", id, err)
		}
		return nil
	})
}

// Transaction 在数据库事务中执行fn
func (r *GormMemberRepository) Transaction(ctx context.Context, fn func(MemberRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormMemberRepository{db: tx, inTx: true})
	})
}
