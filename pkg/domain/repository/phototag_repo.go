/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-02 11:47:12
 * @LastEditTime: 2025-08-12 09:31:20
 * @LastEditors: 安知鱼
 */
package repository

import (
	"context"

	"github.com/anzhiyu-c/photasm/pkg/domain/model"
)

// PhotoTagRepository 定义了照片关键字标签数据操作的契约
type PhotoTagRepository interface {
	// 根据一组标签名，查找已存在的标签，或创建新标签。
	// 名字匹配不区分大小写；返回的标签顺序与入参一致。
	FindOrCreate(ctx context.Context, names []string) ([]*model.PhotoTag, error)
}
