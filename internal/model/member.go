package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Member 家族成员模型
type Member struct {
	gorm.Model
	FirstName  string     `gorm:"size:100;not null" json:"first_name"`
	LastName   string     `gorm:"size:100" json:"last_name"`
	Gender     string     `gorm:"size:10;not null" json:"gender"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	DeathDate  *time.Time `json:"death_date,omitempty"`
	BirthPlace string     `gorm:"size:200" json:"birth_place"`
	DeathPlace string     `gorm:"size:200" json:"death_place"`
	Biography  string     `gorm:"type:text" json:"biography"`
	PhotoURL   string     `gorm:"size:500" json:"photo_url"`

	// 关系字段：均按JSON列持久化，只允许LinkService修改
	Parents  IDList       `gorm:"type:text" json:"parents"`
	Spouses  IDList       `gorm:"type:text" json:"spouses"`
	Children IDList       `gorm:"type:text" json:"children"`
	Siblings SiblingLinks `gorm:"type:text" json:"siblings"`
}

// TableName 指定表名
func (Member) TableName() string {
	return "members"
}

// IsAlive 判断成员是否在世（无去世日期即视为在世）
func (m *Member) IsAlive() bool {
	return m.DeathDate == nil
}

// FullName 返回成员全名
func (m *Member) FullName() string {
	if m.LastName == "" {
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}

// SiblingLinkTo 查找指向指定成员的显式兄弟姐妹链接
func (m *Member) SiblingLinkTo(id uint) (SiblingLink, bool) {
	for _, link := range m.Siblings {
		if link.ID == id {
			return link, true
		}
	}
	return SiblingLink{}, false
}

// RelativeIDs 返回结构字段中引用的全部成员ID（去重）
func (m *Member) RelativeIDs() IDList {
	ids := IDList{}
	for _, id := range m.Parents {
		ids = ids.Add(id)
	}
	for _, id := range m.Spouses {
		ids = ids.Add(id)
	}
	for _, id := range m.Children {
		ids = ids.Add(id)
	}
	for _, link := range m.Siblings {
		ids = ids.Add(link.ID)
	}
	return ids
}

// IDList 成员ID集合，按JSON数组持久化，保持插入顺序且不含重复项
type IDList []uint

// Contains 判断集合是否包含指定ID
func (l IDList) Contains(id uint) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Add 添加ID，已存在时保持不变
func (l IDList) Add(id uint) IDList {
	if l.Contains(id) {
		return l
	}
	return append(l, id)
}

// Remove 移除ID，不存在时保持不变
func (l IDList) Remove(id uint) IDList {
	for i, v := range l {
		if v == id {
			return append(l[:i:i], l[i+1:]...)
		}
	}
	return l
}

// Value 实现driver.Valuer接口
func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		l = IDList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal id list: %v", err)
	}
	return string(data), nil
}

// Scan 实现sql.Scanner接口
func (l *IDList) Scan(value interface{}) error {
	data, err := columnBytes(value)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		*l = IDList{}
		return nil
	}
	return json.Unmarshal(data, l)
}

// SiblingLink 显式兄弟姐妹链接
type SiblingLink struct {
	ID   uint        `json:"id"`
	Type SiblingType `json:"type"`
}

// SiblingLinks 显式兄弟姐妹链接集合，按JSON数组持久化。
// 读取时兼容旧格式（纯ID数组），旧条目归一化为类型未知的链接；
// 写入时只持久化带类型的形式。
type SiblingLinks []SiblingLink

// Contains 判断集合是否包含指向指定成员的链接
func (s SiblingLinks) Contains(id uint) bool {
	for _, link := range s {
		if link.ID == id {
			return true
		}
	}
	return false
}

// Add 添加链接，目标已存在时保持不变
func (s SiblingLinks) Add(link SiblingLink) SiblingLinks {
	if s.Contains(link.ID) {
		return s
	}
	return append(s, link)
}

// Remove 移除指向指定成员的链接，不存在时保持不变
func (s SiblingLinks) Remove(id uint) SiblingLinks {
	for i, link := range s {
		if link.ID == id {
			return append(s[:i:i], s[i+1:]...)
		}
	}
	return s
}

// IDs 返回全部链接目标的ID
func (s SiblingLinks) IDs() IDList {
	ids := IDList{}
	for _, link := range s {
		ids = ids.Add(link.ID)
	}
	return ids
}

// Value 实现driver.Valuer接口
func (s SiblingLinks) Value() (driver.Value, error) {
	if s == nil {
		s = SiblingLinks{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sibling links: %v", err)
	}
	return string(data), nil
}

// Scan 实现sql.Scanner接口，兼容旧的纯ID数组格式
func (s *SiblingLinks) Scan(value interface{}) error {
	data, err := columnBytes(value)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		*s = SiblingLinks{}
		return nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to unmarshal sibling links: %v", err)
	}

	links := make(SiblingLinks, 0, len(entries))
	for _, entry := range entries {
		var link SiblingLink
		if err := json.Unmarshal(entry, &link); err == nil {
			links = links.Add(link)
			continue
		}

		// 旧格式：裸ID，类型留空待推断
		var id uint
		if err := json.Unmarshal(entry, &id); err != nil {
			return fmt.Errorf("invalid sibling entry %s: %v", entry, err)
		}
		links = links.Add(SiblingLink{ID: id, Type: SiblingTypeNone})
	}

	*s = links
	return nil
}

// columnBytes 把数据库列值转为字节切片
func columnBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported column type %T", value)
	}
}
