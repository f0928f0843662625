/*
 * @Description: 照片记录与图片文件元数据的双向同步服务。
 *               逐字段驱动 metadata 包的同步引擎，维护记录级的熔断开关：
 *               任何一次读取或落盘失败都会永久禁用该照片的同步并持久化标志，
 *               之后的调用全部快速返回，损坏文件的代价只付一次。
 * @Author: 安知鱼
 * @Date: 2025-08-04 09:31:26
 * @LastEditTime: 2025-08-24 16:47:55
 * @LastEditors: 安知鱼
 */
package photosync

import (
	"context"
	"log"
	"time"

	"github.com/anzhiyu-c/photasm/pkg/domain/model"
	"github.com/anzhiyu-c/photasm/pkg/domain/repository"
	"github.com/anzhiyu-c/photasm/pkg/service/metadata"
)

// Service 负责照片记录与文件元数据的双向同步
type Service struct {
	codec     metadata.Codec
	photoRepo repository.PhotoRepository
	tagRepo   repository.PhotoTagRepository
}

// NewService 构造函数
func NewService(
	codec metadata.Codec,
	photoRepo repository.PhotoRepository,
	tagRepo repository.PhotoTagRepository,
) *Service {
	return &Service{
		codec:     codec,
		photoRepo: photoRepo,
		tagRepo:   tagRepo,
	}
}

// timeCreatedValue 把可空的拍摄时间转成引擎的统一值表示
func timeCreatedValue(t *time.Time) metadata.Value {
	if t == nil {
		return metadata.Absent
	}
	return metadata.DateTime(*t)
}

// disableSync 触发熔断：关闭同步开关并持久化。
// 这是永久性禁用，不做自动重试；恢复需要人工介入。
func (s *Service) disableSync(ctx context.Context, photo *model.Photo, cause error) {
	log.Printf("[PhotoSync] 照片 %d 的元数据读写失败，已禁用同步: %v", photo.ID, cause)
	photo.MetadataSyncEnabled = false
	if err := s.photoRepo.Save(ctx, photo); err != nil {
		log.Printf("[PhotoSync] 警告：持久化照片 %d 的同步开关失败: %v", photo.ID, err)
	}
}

// SyncToFile 把照片记录的字段写入文件元数据（库 → 文件）。
// 只有和文件不一致的字段才会触碰文件；没有任何字段需要写时不落盘。
// 返回文件是否被实际修改；读取或落盘失败时触发熔断并返回 false。
func (s *Service) SyncToFile(ctx context.Context, photo *model.Photo) bool {
	if !photo.MetadataSyncEnabled {
		return false
	}

	c, err := s.codec.Open(photo.FilePath)
	if err != nil {
		s.disableSync(ctx, photo, err)
		return false
	}

	mod := false

	mod = metadata.SyncValueToExifAndIptc(metadata.Text(photo.Description), c,
		metadata.KeyExifImageDescription, metadata.KeyIptcCaption) || mod

	mod = metadata.SyncValueToExifAndIptc(metadata.Text(photo.Artist), c,
		metadata.KeyExifArtist, metadata.KeyIptcByline) || mod

	mod = metadata.SyncValueToIptc(metadata.Text(photo.Country), c,
		metadata.KeyIptcCountryName) || mod

	mod = metadata.SyncValueToIptc(metadata.Text(photo.ProvinceState), c,
		metadata.KeyIptcProvinceState) || mod

	mod = metadata.SyncValueToIptc(metadata.Text(photo.City), c,
		metadata.KeyIptcCity) || mod

	mod = metadata.SyncValueToIptc(metadata.Text(photo.Location), c,
		metadata.KeyIptcSubLocation) || mod

	mod = metadata.SyncDateTimeToExifAndIptc(timeCreatedValue(photo.TimeCreated), c,
		metadata.KeyExifDateTimeOriginal,
		metadata.KeyIptcDateCreated, metadata.KeyIptcTimeCreated) || mod

	mod = metadata.SyncValueToIptc(metadata.TextList(photo.KeywordNames()), c,
		metadata.KeyIptcKeywords) || mod

	mod = metadata.SyncValueToExif(metadata.Integer(photo.ImageWidth), c,
		metadata.ImageWidthKey(photo.IsJPEG)) || mod

	mod = metadata.SyncValueToExif(metadata.Integer(photo.ImageHeight), c,
		metadata.ImageHeightKey(photo.IsJPEG)) || mod

	if mod {
		if err := c.Flush(); err != nil {
			// 内存中已同步但没有任何东西真正落盘，对外仍然报告失败
			s.disableSync(ctx, photo, err)
			return false
		}
	}
	return mod
}

// SyncFromFile 把文件元数据读入照片记录的字段（文件 → 库）。
// 全部字段先更新到记录的草稿副本上，结束时一次性应用，
// 避免中途失败时出现半更新的记录。commit 为 true 且有修改时持久化。
// 返回记录是否被修改；读取失败时触发熔断并返回 false。
func (s *Service) SyncFromFile(ctx context.Context, photo *model.Photo, commit bool) bool {
	if !photo.MetadataSyncEnabled {
		return false
	}

	c, err := s.codec.Open(photo.FilePath)
	if err != nil {
		s.disableSync(ctx, photo, err)
		return false
	}

	draft := *photo
	mod := false

	// 描述（Exif/IPTC 双标签，Exif 优先；文本字段不可为空，缺失时置空串）
	if !metadata.ValueSyncedWithExifAndIptc(metadata.Text(draft.Description), c,
		metadata.KeyExifImageDescription, metadata.KeyIptcCaption) {
		mod = true
		draft.Description = metadata.ReadValueFromExifAndIptc(c,
			metadata.KeyExifImageDescription, metadata.KeyIptcCaption).Text()
	}

	// 作者
	if !metadata.ValueSyncedWithExifAndIptc(metadata.Text(draft.Artist), c,
		metadata.KeyExifArtist, metadata.KeyIptcByline) {
		mod = true
		draft.Artist = metadata.ReadValueFromExifAndIptc(c,
			metadata.KeyExifArtist, metadata.KeyIptcByline).Text()
	}

	// IPTC 独有的四个地理字段
	mod = s.pullIptcText(c, metadata.KeyIptcCountryName, &draft.Country) || mod
	mod = s.pullIptcText(c, metadata.KeyIptcProvinceState, &draft.ProvinceState) || mod
	mod = s.pullIptcText(c, metadata.KeyIptcCity, &draft.City) || mod
	mod = s.pullIptcText(c, metadata.KeyIptcSubLocation, &draft.Location) || mod

	// 拍摄时间
	if !metadata.DateTimeSyncedWithExifAndIptc(timeCreatedValue(draft.TimeCreated), c,
		metadata.KeyExifDateTimeOriginal,
		metadata.KeyIptcDateCreated, metadata.KeyIptcTimeCreated) {
		mod = true
		v := metadata.ReadDateTimeFromExifAndIptc(c,
			metadata.KeyExifDateTimeOriginal,
			metadata.KeyIptcDateCreated, metadata.KeyIptcTimeCreated)
		if v.IsAbsent() {
			draft.TimeCreated = nil
		} else {
			moment := v.Time()
			draft.TimeCreated = &moment
		}
	}

	// 关键字：读回时必须走标签仓储的不区分大小写查找或创建，而不是直接赋值。
	// 与文本字段一样只有键在场才覆盖，文件没有关键字时不清空记录已有的。
	if !metadata.ValueSyncedWithIptc(metadata.TextList(draft.KeywordNames()), c,
		metadata.KeyIptcKeywords) {
		mod = true
		if containsIptcKey(c, metadata.KeyIptcKeywords) {
			names := c.Get(metadata.KeyIptcKeywords).List()
			tags, err := s.tagRepo.FindOrCreate(ctx, names)
			if err != nil {
				log.Printf("[PhotoSync] 警告：照片 %d 的关键字标签入库失败: %v", photo.ID, err)
			} else {
				draft.Keywords = tags
			}
		}
	}

	// 像素尺寸（仅 Exif，键取决于是否为 JPEG）
	widthKey := metadata.ImageWidthKey(draft.IsJPEG)
	if !metadata.ValueSyncedWithExif(metadata.Integer(draft.ImageWidth), c, widthKey) {
		mod = true
		if v := c.Get(widthKey); !v.IsAbsent() {
			draft.ImageWidth = v.Integer()
		}
	}
	heightKey := metadata.ImageHeightKey(draft.IsJPEG)
	if !metadata.ValueSyncedWithExif(metadata.Integer(draft.ImageHeight), c, heightKey) {
		mod = true
		if v := c.Get(heightKey); !v.IsAbsent() {
			draft.ImageHeight = v.Integer()
		}
	}

	if mod {
		*photo = draft
		if commit {
			if err := s.photoRepo.Save(ctx, photo); err != nil {
				log.Printf("[PhotoSync] 警告：持久化照片 %d 失败: %v", photo.ID, err)
			}
		}
	}
	return mod
}

// pullIptcText 把单个 IPTC 文本标签读入字段。
// 与历史行为保持一致：不同步即报告修改，但只有键在场时才覆盖字段值。
func (s *Service) pullIptcText(c metadata.Container, key string, field *string) bool {
	if metadata.ValueSyncedWithIptc(metadata.Text(*field), c, key) {
		return false
	}
	if containsIptcKey(c, key) {
		*field = c.Get(key).Text()
	}
	return true
}

func containsIptcKey(c metadata.Container, key string) bool {
	for _, k := range c.IptcKeys() {
		if k == key {
			return true
		}
	}
	return false
}
