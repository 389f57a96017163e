package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"familygraph_go/internal/model"
)

func seed(t *testing.T, repo *MemoryMemberRepository, members ...*model.Member) {
	t.Helper()
	for _, m := range members {
		require.NoError(t, repo.Create(context.Background(), m))
	}
}

func named(id uint, first string) *model.Member {
	return &model.Member{
		Model:     gorm.Model{ID: id},
		FirstName: first,
	}
}

func TestMemoryGetByIDAbsentIsNotError(t *testing.T) {
	repo := NewMemoryMemberRepository()

	member, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, member)
}

func TestMemoryGetByIDsSkipsMissing(t *testing.T) {
	repo := NewMemoryMemberRepository()
	seed(t, repo, named(1, "Ada"), named(2, "Ben"))

	members, err := repo.GetByIDs(context.Background(), []uint{1, 99, 2})
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestMemoryGetByIDReturnsIsolatedCopy(t *testing.T) {
	repo := NewMemoryMemberRepository()
	seed(t, repo, named(1, "Ada"))
	ctx := context.Background()

	first, _ := repo.GetByID(ctx, 1)
	first.Parents = first.Parents.Add(42)

	// 未经过Save的修改不影响仓储内的记录
	second, _ := repo.GetByID(ctx, 1)
	assert.False(t, second.Parents.Contains(42))
}

func TestMemorySearch(t *testing.T) {
	repo := NewMemoryMemberRepository()
	ada := named(1, "Ada")
	ada.BirthPlace = "Shanghai"
	seed(t, repo, ada, named(2, "Ben"))

	results, err := repo.Search(context.Background(), "shang")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint(1), results[0].ID)
}

func TestMemoryDeleteStripsReferences(t *testing.T) {
	parent := named(1, "Ada")
	parent.Children = model.IDList{2}
	child := named(2, "Ben")
	child.Parents = model.IDList{1}
	child.Siblings = model.SiblingLinks{{ID: 3, Type: model.SiblingTypeFull}}
	sibling := named(3, "Cam")
	sibling.Siblings = model.SiblingLinks{{ID: 2, Type: model.SiblingTypeFull}}

	repo := NewMemoryMemberRepository()
	seed(t, repo, parent, child, sibling)
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, 2))

	gone, _ := repo.GetByID(ctx, 2)
	assert.Nil(t, gone)
	gotParent, _ := repo.GetByID(ctx, 1)
	assert.False(t, gotParent.Children.Contains(2))
	gotSibling, _ := repo.GetByID(ctx, 3)
	assert.False(t, gotSibling.Siblings.Contains(2))
}

func TestMemoryTransactionRollsBackOnError(t *testing.T) {
	repo := NewMemoryMemberRepository()
	seed(t, repo, named(1, "Ada"))
	ctx := context.Background()

	err := repo.Transaction(ctx, func(tx MemberRepository) error {
		member, _ := tx.GetByID(ctx, 1)
		member.Spouses = member.Spouses.Add(2)
		if err := tx.Save(ctx, member); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	member, _ := repo.GetByID(ctx, 1)
	assert.Empty(t, member.Spouses)
}

func TestMemoryTransactionCommits(t *testing.T) {
	repo := NewMemoryMemberRepository()
	seed(t, repo, named(1, "Ada"))
	ctx := context.Background()

	err := repo.Transaction(ctx, func(tx MemberRepository) error {
		member, _ := tx.GetByID(ctx, 1)
		member.Spouses = member.Spouses.Add(2)
		return tx.Save(ctx, member)
	})
	require.NoError(t, err)

	member, _ := repo.GetByID(ctx, 1)
	assert.True(t, member.Spouses.Contains(2))
}

func TestMemoryTransactionSerializesConcurrentWriters(t *testing.T) {
	repo := NewMemoryMemberRepository()
	seed(t, repo, named(1, "Ada"))
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	first := make(chan error, 1)
	go func() {
		first <- repo.Transaction(ctx, func(tx MemberRepository) error {
			member, _ := tx.GetByID(ctx, 1)
			close(entered)
			<-release
			member.Spouses = member.Spouses.Add(2)
			return tx.Save(ctx, member)
		})
	}()
	<-entered

	second := make(chan error, 1)
	go func() {
		second <- repo.Transaction(ctx, func(tx MemberRepository) error {
			member, _ := tx.GetByID(ctx, 1)
			member.Spouses = member.Spouses.Add(3)
			return tx.Save(ctx, member)
		})
	}()

	// 第一个事务读取后尚未提交，第二个必须排队而不是插入其间
	select {
	case err := <-second:
		t.Fatalf("second transaction finished before first committed: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-first)
	require.NoError(t, <-second)

	member, _ := repo.GetByID(ctx, 1)
	assert.True(t, member.Spouses.Contains(2))
	assert.True(t, member.Spouses.Contains(3))
}
