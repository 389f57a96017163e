package model

// SiblingType 兄弟姐妹关系类型
type SiblingType string

const (
	SiblingTypeNone    SiblingType = ""        // 无（或类型未知，待推断）
	SiblingTypeFull    SiblingType = "full"    // 同父同母
	SiblingTypeHalf    SiblingType = "half"    // 同父异母/同母异父
	SiblingTypeStep    SiblingType = "step"    // 继兄弟姐妹
	SiblingTypeAdopted SiblingType = "adopted" // 收养
)

// IsValid 判断是否是有效的兄弟姐妹类型
func (t SiblingType) IsValid() bool {
	switch t {
	case SiblingTypeFull, SiblingTypeHalf, SiblingTypeStep, SiblingTypeAdopted:
		return true
	}
	return false
}

// RelationKind 关系种类
type RelationKind string

const (
	RelationParent  RelationKind = "parent"  // 对方是本人的父/母
	RelationChild   RelationKind = "child"   // 对方是本人的子女
	RelationSpouse  RelationKind = "spouse"  // 配偶
	RelationSibling RelationKind = "sibling" // 兄弟姐妹
)

// IsValid 判断是否是有效的关系种类
func (k RelationKind) IsValid() bool {
	switch k {
	case RelationParent, RelationChild, RelationSpouse, RelationSibling:
		return true
	}
	return false
}

// Reciprocal 返回对端需要持有的镜像关系种类
func (k RelationKind) Reciprocal() RelationKind {
	switch k {
	case RelationParent:
		return RelationChild
	case RelationChild:
		return RelationParent
	default:
		// 配偶和兄弟姐妹关系是自反的
		return k
	}
}

// MaxParents 每个成员最多持有的父母数量
const MaxParents = 2
