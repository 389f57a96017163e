package service

import (
	"familygraph_go/internal/model"
)

// SiblingClassifier 兄弟姐妹关系分类服务。
// 显式链接优先于推断结果；推断只看双方parents集合的交集。
type SiblingClassifier struct {
	logger *Logger
}

// NewSiblingClassifier 创建分类服务实例
func NewSiblingClassifier(logger *Logger) *SiblingClassifier {
	return &SiblingClassifier{
		logger: logger,
	}
}

// Classify 判定两名成员之间的有效兄弟姐妹类型。
// 返回SiblingTypeNone表示不是兄弟姐妹或数据不足。
// 结果与参数顺序无关；显式链接单边缺失或两边类型不一致时，
// 返回确定性的结果并附带完整性错误，绝不擅自修复数据。
func (c *SiblingClassifier) Classify(a, b *model.Member) (model.SiblingType, error) {
	if a == nil || b == nil || a.ID == b.ID {
		return model.SiblingTypeNone, nil
	}

	linkAB, okAB := a.SiblingLinkTo(b.ID)
	linkBA, okBA := b.SiblingLinkTo(a.ID)

	switch {
	case okAB && okBA:
		if linkAB.Type != linkBA.Type {
			// 两边类型不一致：取ID较小一方持有的链接，保证顺序无关
			chosen := linkAB
			if b.ID < a.ID {
				chosen = linkBA
			}
			err := NewError(ErrIntegrityViolation, "explicit sibling link types disagree", nil).
				WithContext("member_a", a.ID).
				WithContext("member_b", b.ID)
			return c.effectiveType(chosen.Type, a, b), err
		}
		return c.effectiveType(linkAB.Type, a, b), nil

	case okAB || okBA:
		// 单边链接：上报完整性问题，仍返回已有一边的类型
		chosen := linkAB
		if okBA {
			chosen = linkBA
		}
		err := NewError(ErrIntegrityViolation, "explicit sibling link present on one side only", nil).
			WithContext("member_a", a.ID).
			WithContext("member_b", b.ID)
		return c.effectiveType(chosen.Type, a, b), err
	}

	return c.derive(a, b), nil
}

// effectiveType 把显式链接类型落实为有效类型。
// 旧格式归一化产生的未知类型按共同父母推断，推断不出时按Full处理
// （用户当初确实录入过这层关系）。
func (c *SiblingClassifier) effectiveType(explicit model.SiblingType, a, b *model.Member) model.SiblingType {
	if explicit != model.SiblingTypeNone {
		return explicit
	}
	if derived := c.derive(a, b); derived != model.SiblingTypeNone {
		return derived
	}
	return model.SiblingTypeFull
}

// derive 仅凭parents集合交集推断兄弟姐妹类型。
// 任一方parents为空视为数据不足，不作猜测。
func (c *SiblingClassifier) derive(a, b *model.Member) model.SiblingType {
	if len(a.Parents) == 0 || len(b.Parents) == 0 {
		return model.SiblingTypeNone
	}

	shared := 0
	for _, id := range a.Parents {
		if b.Parents.Contains(id) {
			shared++
		}
	}

	switch shared {
	case 2:
		return model.SiblingTypeFull
	case 1:
		return model.SiblingTypeHalf
	default:
		return model.SiblingTypeNone
	}
}

// Group 把成员列表按兄弟姐妹关系划分成簇。
// 分类结果为Full或Half的两人之间连边，取连通分量（并查集）；
// 兄弟姐妹关系按传递闭包处理，不要求两两直接相关。
// 只含单个成员的簇被丢弃，空输入返回空结果。
func (c *SiblingClassifier) Group(members []*model.Member) [][]*model.Member {
	if len(members) == 0 {
		return [][]*model.Member{}
	}

	parent := make([]int, len(members))
	for i := range parent {
		parent[i] = i
	}

	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(i, j int) {
		ri, rj := find(i), find(j)
		if ri != rj {
			parent[rj] = ri
		}
	}

	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			siblingType, err := c.Classify(members[i], members[j])
			if err != nil {
				c.logger.Warn("Sibling grouping hit integrity issue: %v", err)
			}
			if siblingType == model.SiblingTypeFull || siblingType == model.SiblingTypeHalf {
				union(i, j)
			}
		}
	}

	// 按首次出现的顺序输出各连通分量
	order := make([]int, 0, len(members))
	clusters := make(map[int][]*model.Member)
	for i, member := range members {
		root := find(i)
		if _, seen := clusters[root]; !seen {
			order = append(order, root)
		}
		clusters[root] = append(clusters[root], member)
	}

	groups := make([][]*model.Member, 0, len(order))
	for _, root := range order {
		if len(clusters[root]) >= 2 {
			groups = append(groups, clusters[root])
		}
	}
	return groups
}
