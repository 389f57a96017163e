package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// CacheService 基于Redis的缓存服务，组装好的家庭/族谱视图按键缓存
type CacheService struct {
	client *redis.Client
}

// NewCacheService 创建缓存服务实例
func NewCacheService(addr, password string, db int) *CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &CacheService{
		client: client,
	}
}

// FamilyViewKey 一跳家庭视图的缓存键
func FamilyViewKey(memberID uint) string {
	return fmt.Sprintf("view:family:%d", memberID)
}

// AncestorViewKey 祖先树的缓存键
func AncestorViewKey(memberID uint) string {
	return fmt.Sprintf("view:ancestors:%d", memberID)
}

// DescendantViewKey 后代树的缓存键
func DescendantViewKey(memberID uint) string {
	return fmt.Sprintf("view:descendants:%d", memberID)
}

// Set 设置缓存
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %v", err)
	}

	return s.client.Set(ctx, key, data, expiration).Err()
}

// Get 获取缓存，命中时反序列化到value并返回true
func (s *CacheService) Get(ctx context.Context, key string, value interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get value: %v", err)
	}

	if err := json.Unmarshal(data, value); err != nil {
		return false, fmt.Errorf("failed to unmarshal value: %v", err)
	}
	return true, nil
}

// Delete 删除缓存
func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// InvalidateMember 清除与指定成员相关的全部视图缓存
func (s *CacheService) InvalidateMember(ctx context.Context, memberIDs ...uint) error {
	keys := make([]string, 0, len(memberIDs)*3)
	for _, id := range memberIDs {
		keys = append(keys, FamilyViewKey(id), AncestorViewKey(id), DescendantViewKey(id))
	}
	return s.Delete(ctx, keys...)
}

// Clear 清除所有缓存
func (s *CacheService) Clear(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

// Close 关闭连接
func (s *CacheService) Close() error {
	return s.client.Close()
}
