package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"familygraph_go/internal/model"
	"familygraph_go/internal/repository"
)

// MemberSearch 成员搜索服务：内存倒排索引，供输入联想使用。
// 索引从仓储整体重建；正式的模糊搜索仍走仓储的Search。
type MemberSearch struct {
	repo   repository.MemberRepository
	logger *Logger
	mu     sync.RWMutex
	index  map[string]map[uint]struct{} // 关键词 -> 成员ID集合
	docs   map[uint]*model.Member
}

// NewMemberSearch 创建搜索服务实例
func NewMemberSearch(repo repository.MemberRepository, logger *Logger) *MemberSearch {
	return &MemberSearch{
		repo:   repo,
		logger: logger,
		index:  make(map[string]map[uint]struct{}),
		docs:   make(map[uint]*model.Member),
	}
}

// Index 把单个成员写入索引，已存在时覆盖
func (s *MemberSearch) Index(member *model.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(member.ID)
	s.docs[member.ID] = member
	for _, keyword := range memberKeywords(member) {
		ids, ok := s.index[keyword]
		if !ok {
			ids = make(map[uint]struct{})
			s.index[keyword] = ids
		}
		ids[member.ID] = struct{}{}
	}
}

// Remove 从索引中移除成员
func (s *MemberSearch) Remove(memberID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(memberID)
}

func (s *MemberSearch) removeLocked(memberID uint) {
	if _, ok := s.docs[memberID]; !ok {
		return
	}
	delete(s.docs, memberID)
	for keyword, ids := range s.index {
		delete(ids, memberID)
		if len(ids) == 0 {
			delete(s.index, keyword)
		}
	}
}

// Reindex 从仓储重建整个索引
func (s *MemberSearch) Reindex(ctx context.Context) error {
	members, err := s.repo.Search(ctx, "")
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.index = make(map[string]map[uint]struct{})
	s.docs = make(map[uint]*model.Member, len(members))
	s.mu.Unlock()

	for _, member := range members {
		s.Index(member)
	}
	s.logger.Info("Member search index rebuilt with %d members", len(members))
	return nil
}

// Search 按关键词前缀查找成员，结果按ID稳定排序
func (s *MemberSearch) Search(query string) []*model.Member {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make(map[uint]struct{})
	for _, token := range tokens {
		for keyword, ids := range s.index {
			if !strings.HasPrefix(keyword, token) {
				continue
			}
			for id := range ids {
				matched[id] = struct{}{}
			}
		}
	}

	results := make([]*model.Member, 0, len(matched))
	for id := range matched {
		results = append(results, s.docs[id])
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results
}

// memberKeywords 提取成员的索引关键词
func memberKeywords(member *model.Member) []string {
	fields := []string{member.FirstName, member.LastName, member.BirthPlace, member.DeathPlace}
	var keywords []string
	for _, field := range fields {
		keywords = append(keywords, tokenize(field)...)
	}
	return keywords
}

// tokenize 切分并归一化关键词
func tokenize(text string) []string {
	var tokens []string
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ",.;:")
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
