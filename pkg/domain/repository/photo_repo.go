/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-02 11:47:12
 * @LastEditTime: 2025-08-19 17:30:06
 * @LastEditors: 安知鱼
 */
package repository

import (
	"context"

	"github.com/anzhiyu-c/photasm/pkg/domain/model"
)

// PhotoRepository 定义了照片记录持久化的契约。
// 同步引擎只依赖这个最小接口：字段变化（包括熔断开关翻转）通过 Save 落库。
type PhotoRepository interface {
	// FindByID 按 ID 查找照片记录
	FindByID(ctx context.Context, id uint) (*model.Photo, error)

	// Save 持久化照片记录的全部字段；ID 为零时创建新记录
	Save(ctx context.Context, photo *model.Photo) error
}
