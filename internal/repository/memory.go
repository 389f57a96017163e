package repository

import (
	"context"
	"strings"
	"sync"

	"familygraph_go/internal/model"
)

// MemoryMemberRepository 内存版成员仓储，用于测试和开发环境的种子数据。
// 互斥锁覆盖整个事务执行过程，并发写入串行化；失败时用快照整体回滚。
type MemoryMemberRepository struct {
	mu      sync.Mutex
	members map[uint]*model.Member
	nextID  uint
}

// NewMemoryMemberRepository 创建内存仓储实例
func NewMemoryMemberRepository() *MemoryMemberRepository {
	return &MemoryMemberRepository{
		members: make(map[uint]*model.Member),
		nextID:  1,
	}
}

// cloneMember 深拷贝成员，避免调用方共享内部状态
func cloneMember(m *model.Member) *model.Member {
	clone := *m
	clone.Parents = append(model.IDList{}, m.Parents...)
	clone.Spouses = append(model.IDList{}, m.Spouses...)
	clone.Children = append(model.IDList{}, m.Children...)
	clone.Siblings = append(model.SiblingLinks{}, m.Siblings...)
	return &clone
}

// snapshot 复制当前全部数据，用于事务回滚
func (r *MemoryMemberRepository) snapshot() map[uint]*model.Member {
	copied := make(map[uint]*model.Member, len(r.members))
	for id, m := range r.members {
		copied[id] = cloneMember(m)
	}
	return copied
}

// GetByID 按ID获取成员，不存在时返回(nil, nil)
func (r *MemoryMemberRepository) GetByID(ctx context.Context, id uint) (*model.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLocked(id), nil
}

func (r *MemoryMemberRepository) getLocked(id uint) *model.Member {
	member, ok := r.members[id]
	if !ok {
		return nil
	}
	return cloneMember(member)
}

// GetByIDs 按ID集合批量获取成员，缺失的ID直接跳过
func (r *MemoryMemberRepository) GetByIDs(ctx context.Context, ids []uint) ([]*model.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getByIDsLocked(ids), nil
}

func (r *MemoryMemberRepository) getByIDsLocked(ids []uint) []*model.Member {
	members := make([]*model.Member, 0, len(ids))
	for _, id := range ids {
		if member := r.getLocked(id); member != nil {
			members = append(members, member)
		}
	}
	return members
}

// Search 按姓名/地点模糊搜索成员
func (r *MemoryMemberRepository) Search(ctx context.Context, query string) ([]*model.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.searchLocked(query), nil
}

func (r *MemoryMemberRepository) searchLocked(query string) []*model.Member {
	query = strings.ToLower(query)
	var results []*model.Member
	for _, member := range r.members {
		haystack := strings.ToLower(strings.Join([]string{
			member.FirstName, member.LastName, member.BirthPlace, member.DeathPlace,
		}, " "))
		if strings.Contains(haystack, query) {
			results = append(results, cloneMember(member))
		}
	}
	return results
}

// Create 创建成员，自动分配ID
func (r *MemoryMemberRepository) Create(ctx context.Context, member *model.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createLocked(member)
	return nil
}

func (r *MemoryMemberRepository) createLocked(member *model.Member) {
	if member.ID == 0 {
		member.ID = r.nextID
	}
	if member.ID >= r.nextID {
		r.nextID = member.ID + 1
	}
	r.members[member.ID] = cloneMember(member)
}

// Save 保存成员全部字段
func (r *MemoryMemberRepository) Save(ctx context.Context, member *model.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveLocked(member)
	return nil
}

func (r *MemoryMemberRepository) saveLocked(member *model.Member) {
	r.members[member.ID] = cloneMember(member)
}

// Delete 删除成员并清理引用
func (r *MemoryMemberRepository) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteLocked(id)
	return nil
}

func (r *MemoryMemberRepository) deleteLocked(id uint) {
	delete(r.members, id)
	for _, member := range r.members {
		member.Parents = member.Parents.Remove(id)
		member.Spouses = member.Spouses.Remove(id)
		member.Children = member.Children.Remove(id)
		member.Siblings = member.Siblings.Remove(id)
	}
}

// Transaction 持锁执行fn：另一事务的读-改-写无法插入到本事务的
// 读取和提交之间。失败时回滚到执行前的快照。
func (r *MemoryMemberRepository) Transaction(ctx context.Context, fn func(MemberRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	backup := r.snapshot()
	if err := fn(&memoryTx{repo: r}); err != nil {
		r.members = backup
		return err
	}
	return nil
}

// memoryTx 事务视图，锁已由宿主事务持有，直接访问内部状态；
// 嵌套事务不再建立新快照
type memoryTx struct {
	repo *MemoryMemberRepository
}

func (t *memoryTx) GetByID(ctx context.Context, id uint) (*model.Member, error) {
	return t.repo.getLocked(id), nil
}

func (t *memoryTx) GetByIDs(ctx context.Context, ids []uint) ([]*model.Member, error) {
	return t.repo.getByIDsLocked(ids), nil
}

func (t *memoryTx) Search(ctx context.Context, query string) ([]*model.Member, error) {
	return t.repo.searchLocked(query), nil
}

func (t *memoryTx) Create(ctx context.Context, member *model.Member) error {
	t.repo.createLocked(member)
	return nil
}

func (t *memoryTx) Save(ctx context.Context, member *model.Member) error {
	t.repo.saveLocked(member)
	return nil
}

func (t *memoryTx) Delete(ctx context.Context, id uint) error {
	t.repo.deleteLocked(id)
	return nil
}

func (t *memoryTx) Transaction(ctx context.Context, fn func(MemberRepository) error) error {
	return fn(t)
}
