/*
 * @Description: 照片核心业务模型，数据库字段与图片内嵌元数据双向同步
 * @Author: 安知鱼
 * @Date: 2025-08-02 11:40:55
 * @LastEditTime: 2025-08-21 10:12:30
 * @LastEditors: 安知鱼
 */
package model

import "time"

// Photo 是核心业务模型。
// 其中 Description、Artist、Country 等字段与图片文件内嵌的
// Exif/IPTC 元数据保持双向同步，对应的标签键见 metadata 包的键表。
type Photo struct {
	ID        uint      `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OwnerID uint `json:"owner_id"`

	// FilePath 是图片文件在本地文件系统中的路径
	FilePath string `json:"file_path"`
	// ThumbnailPath 是缩略图文件的路径，由缩略图服务生成并维护
	ThumbnailPath string `json:"thumbnail_path"`

	// Description 对应 Exif.Image.ImageDescription / Iptc.Application2.Caption
	Description string `json:"description"`
	// Artist 对应 Exif.Image.Artist / Iptc.Application2.Byline
	Artist string `json:"artist"`
	// Country 对应 Iptc.Application2.CountryName
	Country string `json:"country"`
	// ProvinceState 对应 Iptc.Application2.ProvinceState
	ProvinceState string `json:"province_state"`
	// City 对应 Iptc.Application2.City
	City string `json:"city"`
	// Location 对应 Iptc.Application2.SubLocation，表示城市内的具体位置
	Location string `json:"location"`
	// TimeCreated 是拍摄时间，对应 Exif.Photo.DateTimeOriginal 以及
	// Iptc.Application2.DateCreated + TimeCreated；为 nil 表示未知
	TimeCreated *time.Time `json:"time_created"`
	// Keywords 对应 Iptc.Application2.Keywords（可重复标签）
	Keywords []*PhotoTag `json:"keywords"`

	// ImageWidth / ImageHeight 对应的 Exif 键取决于文件是否为 JPEG，
	// 见 metadata.ImageWidthKey / metadata.ImageHeightKey
	ImageWidth  int `json:"image_width"`
	ImageHeight int `json:"image_height"`

	IsJPEG bool `json:"is_jpeg"`

	// MetadataSyncEnabled 是元数据同步的熔断开关：一旦对该照片文件的
	// 读取或写入发生 I/O 失败，此标志被永久置为 false 并持久化，
	// 之后的同步调用全部快速返回，直到人工介入恢复。
	MetadataSyncEnabled bool `json:"metadata_sync_enabled"`
}

// KeywordNames 返回照片全部关键字标签的名称列表，顺序与 Keywords 一致。
func (p *Photo) KeywordNames() []string {
	names := make([]string, 0, len(p.Keywords))
	for _, tag := range p.Keywords {
		names = append(names, tag.Name)
	}
	return names
}
