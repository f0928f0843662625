/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-10 16:02:19
 * @LastEditTime: 2025-08-25 11:08:40
 * @LastEditors: 安知鱼
 */
package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/anzhiyu-c/photasm/pkg/constant"
	"github.com/anzhiyu-c/photasm/pkg/domain/model"
)

func TestPhotoRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPhotoRepository()

	t.Run("保存时分配自增ID", func(t *testing.T) {
		photo := &model.Photo{FilePath: "/photos/a.jpg"}
		if err := repo.Save(ctx, photo); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if photo.ID == 0 {
			t.Fatal("保存后应当分配 ID")
		}
		if photo.CreatedAt.IsZero() || photo.UpdatedAt.IsZero() {
			t.Error("保存后应当填充时间戳")
		}
	})

	t.Run("查找返回副本而非内部指针", func(t *testing.T) {
		photo := &model.Photo{FilePath: "/photos/b.jpg", Description: "原始描述"}
		if err := repo.Save(ctx, photo); err != nil {
			t.Fatalf("Save: %v", err)
		}

		found, err := repo.FindByID(ctx, photo.ID)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		found.Description = "外部修改"

		again, err := repo.FindByID(ctx, photo.ID)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if again.Description != "原始描述" {
			t.Error("仓储内部状态不应被返回值的修改污染")
		}
	})

	t.Run("不存在的ID返回哨兵错误", func(t *testing.T) {
		if _, err := repo.FindByID(ctx, 9999); !errors.Is(err, constant.ErrPhotoNotFound) {
			t.Errorf("err = %v, want ErrPhotoNotFound", err)
		}
	})

	t.Run("再次保存是更新而不是新建", func(t *testing.T) {
		photo := &model.Photo{FilePath: "/photos/c.jpg"}
		if err := repo.Save(ctx, photo); err != nil {
			t.Fatalf("Save: %v", err)
		}
		id := photo.ID
		photo.Description = "更新后的描述"
		if err := repo.Save(ctx, photo); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if photo.ID != id {
			t.Errorf("更新不应改变 ID: %d -> %d", id, photo.ID)
		}
		found, _ := repo.FindByID(ctx, id)
		if found.Description != "更新后的描述" {
			t.Error("更新没有生效")
		}
	})
}

func TestPhotoTagRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPhotoTagRepository()

	t.Run("不存在的标签被创建", func(t *testing.T) {
		tags, err := repo.FindOrCreate(ctx, []string{"travel", "sunset"})
		if err != nil {
			t.Fatalf("FindOrCreate: %v", err)
		}
		if len(tags) != 2 {
			t.Fatalf("len(tags) = %d, want 2", len(tags))
		}
		if tags[0].ID == tags[1].ID {
			t.Error("不同标签应当有不同 ID")
		}
	})

	t.Run("查找不区分大小写", func(t *testing.T) {
		first, err := repo.FindOrCreate(ctx, []string{"Beach"})
		if err != nil {
			t.Fatalf("FindOrCreate: %v", err)
		}
		second, err := repo.FindOrCreate(ctx, []string{"BEACH"})
		if err != nil {
			t.Fatalf("FindOrCreate: %v", err)
		}
		if first[0].ID != second[0].ID {
			t.Error("大小写不同的同名标签应当命中同一条记录")
		}
		if second[0].Name != "Beach" {
			t.Errorf("标签名 = %q, 应当保留首次创建时的大小写", second[0].Name)
		}
	})
}
