/*
 * @Description: PhotoTagRepository 的内存实现。标签名不区分大小写去重。
 * @Author: 安知鱼
 * @Date: 2025-08-10 15:47:52
 * @LastEditTime: 2025-08-25 10:53:02
 * @LastEditors: 安知鱼
 */
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/anzhiyu-c/photasm/pkg/domain/model"
	"github.com/anzhiyu-c/photasm/pkg/domain/repository"
)

type photoTagRepository struct {
	mu     sync.Mutex
	tags   map[string]*model.PhotoTag
	nextID uint
}

// NewPhotoTagRepository 创建一个内存标签仓储。
func NewPhotoTagRepository() repository.PhotoTagRepository {
	return &photoTagRepository{tags: make(map[string]*model.PhotoTag)}
}

// FindOrCreate 按名字逐个查找标签，不存在时创建。
// 查找不区分大小写，已有标签保留首次创建时的大小写。
func (r *photoTagRepository) FindOrCreate(ctx context.Context, names []string) ([]*model.PhotoTag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*model.PhotoTag, 0, len(names))
	for _, name := range names {
		folded := strings.ToLower(name)
		tag, ok := r.tags[folded]
		if !ok {
			r.nextID++
			tag = &model.PhotoTag{ID: r.nextID, Name: name}
			r.tags[folded] = tag
		}
		result = append(result, tag)
	}
	return result, nil
}
