package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familygraph_go/internal/model"
	"familygraph_go/internal/repository"
)

// countingRepo 统计仓储调用次数的装饰器，用于断言每代一次批量查询
type countingRepo struct {
	repository.MemberRepository
	getByIDCalls  int
	getByIDsCalls int
}

func (r *countingRepo) GetByID(ctx context.Context, id uint) (*model.Member, error) {
	r.getByIDCalls++
	return r.MemberRepository.GetByID(ctx, id)
}

func (r *countingRepo) GetByIDs(ctx context.Context, ids []uint) ([]*model.Member, error) {
	r.getByIDsCalls++
	return r.MemberRepository.GetByIDs(ctx, ids)
}

func seedRepo(t *testing.T, members ...*model.Member) *repository.MemoryMemberRepository {
	t.Helper()
	repo := repository.NewMemoryMemberRepository()
	for _, m := range members {
		require.NoError(t, repo.Create(context.Background(), m))
	}
	return repo
}

func memberIDs(members []*model.Member) []uint {
	ids := make([]uint, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestGetAncestorsThreeGenerations(t *testing.T) {
	// 1 的父母是 2,3；2 的父母是 4,5；4 的父母是 6,7
	m1 := member(1, 2, 3)
	m2 := member(2, 4, 5)
	m3 := member(3)
	m4 := member(4, 6, 7)
	m5 := member(5)
	m6 := member(6)
	m7 := member(7)
	repo := seedRepo(t, m1, m2, m3, m4, m5, m6, m7)

	s := NewTreeService(repo, NewErrorHandler(testLogger()), testLogger())
	tree, err := s.GetAncestors(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, uint(1), tree.Focus.ID)
	assert.ElementsMatch(t, []uint{2, 3}, memberIDs(tree.Parents))
	assert.ElementsMatch(t, []uint{4, 5}, memberIDs(tree.Grandparents))
	assert.ElementsMatch(t, []uint{6, 7}, memberIDs(tree.GreatGrandparents))
}

func TestGetAncestorsBulkFetchBound(t *testing.T) {
	m1 := member(1, 2, 3)
	m2 := member(2, 4, 5)
	m3 := member(3, 6, 7)
	repo := &countingRepo{MemberRepository: seedRepo(t,
		m1, m2, m3, member(4), member(5), member(6), member(7))}

	s := NewTreeService(repo, NewErrorHandler(testLogger()), testLogger())
	_, err := s.GetAncestors(context.Background(), 1)
	require.NoError(t, err)

	// 焦点1次 + 每代各1次批量查询
	assert.Equal(t, 1, repo.getByIDCalls)
	assert.LessOrEqual(t, repo.getByIDsCalls, 3)
}

func TestGetAncestorsUnknownSlotsAreAbsentNotErrors(t *testing.T) {
	// 1 的父母是 4,5；4 没有已知父母
	repo := seedRepo(t, member(1, 4, 5), member(4), member(5))

	s := NewTreeService(repo, NewErrorHandler(testLogger()), testLogger())
	tree, err := s.GetAncestors(context.Background(), 1)
	require.NoError(t, err)

	assert.ElementsMatch(t, []uint{4, 5}, memberIDs(tree.Parents))
	assert.Empty(t, tree.Grandparents)
	assert.Empty(t, tree.GreatGrandparents)
}

func TestGetAncestorsMissingRelativeSkipped(t *testing.T) {
	// 父母之一不在库中：跳过，不报错
	repo := seedRepo(t, member(1, 4, 5), member(4))

	s := NewTreeService(repo, NewErrorHandler(testLogger()), testLogger())
	tree, err := s.GetAncestors(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, []uint{4}, memberIDs(tree.Parents))
}

func TestGetAncestorsFocusNotFound(t *testing.T) {
	repo := seedRepo(t)

	s := NewTreeService(repo, NewErrorHandler(testLogger()), testLogger())
	_, err := s.GetAncestors(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrMemberNotFound))
}

func TestGetDescendantsThreeGenerations(t *testing.T) {
	m1 := member(1)
	m1.Children = model.IDList{2, 3}
	m2 := member(2)
	m2.Children = model.IDList{4}
	m3 := member(3)
	m4 := member(4)
	m4.Children = model.IDList{5}
	m5 := member(5)
	repo := seedRepo(t, m1, m2, m3, m4, m5)

	s := NewTreeService(repo, NewErrorHandler(testLogger()), testLogger())
	tree, err := s.GetDescendants(context.Background(), 1)
	require.NoError(t, err)

	assert.ElementsMatch(t, []uint{2, 3}, memberIDs(tree.Children))
	assert.ElementsMatch(t, []uint{4}, memberIDs(tree.Grandchildren))
	assert.ElementsMatch(t, []uint{5}, memberIDs(tree.GreatGrandchildren))
}

func TestGetDescendantsFocusNotFound(t *testing.T) {
	repo := seedRepo(t)

	s := NewTreeService(repo, NewErrorHandler(testLogger()), testLogger())
	_, err := s.GetDescendants(context.Background(), 42)
	assert.True(t, IsCode(err, ErrMemberNotFound))
}
