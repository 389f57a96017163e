package model

import (
	"time"

	"gorm.io/gorm"
)

// ActivityRecord 动态记录模型，关系变更时由事件订阅者写入
type ActivityRecord struct {
	gorm.Model
	EventID    string    `gorm:"size:36;uniqueIndex" json:"event_id"`
	MemberID   uint      `gorm:"index" json:"member_id"`
	RelativeID uint      `json:"relative_id,omitempty"`
	Action     string    `gorm:"size:50;not null" json:"action"` // 如：member.created、relationship.linked
	Detail     string    `gorm:"size:500" json:"detail"`
	OccurredAt time.Time `json:"occurred_at"`
}

// TableName 指定表名
func (ActivityRecord) TableName() string {
	return "activity_records"
}
