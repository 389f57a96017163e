package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"familygraph_go/internal/model"
	"familygraph_go/internal/repository"
)

// Event 领域事件：成员或关系发生变更时发布
type Event struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"` // 如：member.created、relationship.linked
	MemberID   uint      `json:"member_id"`
	RelativeID uint      `json:"relative_id,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// EventHandler 事件处理器
type EventHandler func(ctx context.Context, event *Event)

// EventConfig 事件服务配置
type EventConfig struct {
	QueueSize int // 队列大小，0表示同步分发
}

// EventService 进程内事件总线。
// 订阅者按动作名匹配（"*"匹配全部），分发在单独的goroutine里进行，
// 发布方不会被慢订阅者阻塞。
type EventService struct {
	config   *EventConfig
	logger   *Logger
	mu       sync.RWMutex
	handlers map[string][]EventHandler
	queue    chan *Event
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewEventService 创建事件服务实例
func NewEventService(config *EventConfig, logger *Logger) *EventService {
	s := &EventService{
		config:   config,
		logger:   logger,
		handlers: make(map[string][]EventHandler),
		stopCh:   make(chan struct{}),
	}

	if config.QueueSize > 0 {
		s.queue = make(chan *Event, config.QueueSize)
		s.wg.Add(1)
		go s.process()
	}
	return s
}

// Subscribe 注册事件处理器，action为"*"时接收全部事件
func (s *EventService) Subscribe(action string, handler EventHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[action] = append(s.handlers[action], handler)
}

// Publish 发布事件。队列满时降级为同步分发，事件不丢失。
func (s *EventService) Publish(ctx context.Context, action string, memberID, relativeID uint, detail string) {
	event := &Event{
		ID:         uuid.NewString(),
		Action:     action,
		MemberID:   memberID,
		RelativeID: relativeID,
		Detail:     detail,
		CreatedAt:  time.Now(),
	}

	if s.queue == nil {
		s.dispatch(context.WithoutCancel(ctx), event)
		return
	}

	select {
	case s.queue <- event:
	default:
		s.logger.Warn("Event queue full, dispatching %s synchronously", action)
		s.dispatch(context.WithoutCancel(ctx), event)
	}
}

// process 队列消费循环
func (s *EventService) process() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopCh:
			// 排空剩余事件后退出
			for {
				select {
				case event := <-s.queue:
					s.dispatch(context.Background(), event)
				default:
					return
				}
			}
		case event := <-s.queue:
			s.dispatch(context.Background(), event)
		}
	}
}

// dispatch 把事件交给匹配的处理器
func (s *EventService) dispatch(ctx context.Context, event *Event) {
	s.mu.RLock()
	handlers := append([]EventHandler{}, s.handlers[event.Action]...)
	handlers = append(handlers, s.handlers["*"]...)
	s.mu.RUnlock()

	for _, handler := range handlers {
		handler(ctx, event)
	}
}

// Stop 停止事件服务并等待队列排空
func (s *EventService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

// ActivityRecorder 动态记录订阅者：把事件落盘为ActivityRecord
type ActivityRecorder struct {
	db     *repository.DB
	logger *Logger
}

// NewActivityRecorder 创建动态记录订阅者实例
func NewActivityRecorder(db *repository.DB, logger *Logger) *ActivityRecorder {
	return &ActivityRecorder{
		db:     db,
		logger: logger,
	}
}

// Handle 把事件写入动态记录表
func (r *ActivityRecorder) Handle(ctx context.Context, event *Event) {
	record := &model.ActivityRecord{
		EventID:    event.ID,
		MemberID:   event.MemberID,
		RelativeID: event.RelativeID,
		Action:     event.Action,
		Detail:     event.Detail,
		OccurredAt: event.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		r.logger.Error("Failed to record activity %s: %v", event.ID, err)
	}
}

// Recent 查询指定成员最近的动态记录
func (r *ActivityRecorder) Recent(ctx context.Context, memberID uint, limit int) ([]*model.ActivityRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []*model.ActivityRecord
	err := r.db.WithContext(ctx).
		Where("member_id = ? OR relative_id = ?", memberID, memberID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load activity records: %v", err)
	}
	return records, nil
}
