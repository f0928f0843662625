/*
 * @Description: PhotoRepository 的内存实现，供 CLI 和测试使用。
 * @Author: 安知鱼
 * @Date: 2025-08-10 15:33:08
 * @LastEditTime: 2025-08-25 10:41:16
 * @LastEditors: 安知鱼
 */
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/anzhiyu-c/photasm/pkg/constant"
	"github.com/anzhiyu-c/photasm/pkg/domain/model"
	"github.com/anzhiyu-c/photasm/pkg/domain/repository"
)

type photoRepository struct {
	mu     sync.RWMutex
	photos map[uint]*model.Photo
	nextID uint
}

// NewPhotoRepository 创建一个内存照片仓储。
func NewPhotoRepository() repository.PhotoRepository {
	return &photoRepository{photos: make(map[uint]*model.Photo)}
}

func (r *photoRepository) FindByID(ctx context.Context, id uint) (*model.Photo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	photo, ok := r.photos[id]
	if !ok {
		return nil, constant.ErrPhotoNotFound
	}
	copied := *photo
	return &copied, nil
}

func (r *photoRepository) Save(ctx context.Context, photo *model.Photo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if photo.ID == 0 {
		r.nextID++
		photo.ID = r.nextID
		photo.CreatedAt = now
	}
	photo.UpdatedAt = now

	copied := *photo
	r.photos[photo.ID] = &copied
	return nil
}
