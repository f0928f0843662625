/*
 * @Description: Photo 字段与 Exif/IPTC 标签键的固定映射。
 *               这张表是对外互操作的"线格式"，键名必须与其它 Exif/IPTC 工具一致。
 * @Author: 安知鱼
 * @Date: 2025-08-02 14:21:08
 * @LastEditTime: 2025-08-19 16:40:27
 * @LastEditors: 安知鱼
 */
package metadata

const (
	// KeyExifImageDescription / KeyIptcCaption 对应照片描述
	KeyExifImageDescription = "Exif.Image.ImageDescription"
	KeyIptcCaption          = "Iptc.Application2.Caption"

	// KeyExifArtist / KeyIptcByline 对应作者
	KeyExifArtist = "Exif.Image.Artist"
	KeyIptcByline = "Iptc.Application2.Byline"

	// 以下四个是 IPTC 独有的地理字段
	KeyIptcCountryName   = "Iptc.Application2.CountryName"
	KeyIptcProvinceState = "Iptc.Application2.ProvinceState"
	KeyIptcCity          = "Iptc.Application2.City"
	KeyIptcSubLocation   = "Iptc.Application2.SubLocation"

	// 拍摄时间：Exif 用单个标签存完整日期时间，IPTC 拆成日期、时间两个标签
	KeyExifDateTimeOriginal = "Exif.Photo.DateTimeOriginal"
	KeyIptcDateCreated      = "Iptc.Application2.DateCreated"
	KeyIptcTimeCreated      = "Iptc.Application2.TimeCreated"

	// 关键字是 IPTC 的可重复标签
	KeyIptcKeywords = "Iptc.Application2.Keywords"

	// 像素尺寸。JPEG 与非 JPEG 使用不同的 Exif 标签，
	// 取键时必须经过 ImageWidthKey / ImageHeightKey。
	KeyExifImageWidth      = "Exif.Image.ImageWidth"
	KeyExifImageLength     = "Exif.Image.ImageLength"
	KeyExifPixelXDimension = "Exif.Photo.PixelXDimension"
	KeyExifPixelYDimension = "Exif.Photo.PixelYDimension"
)

// ImageWidthKey 返回图片宽度对应的 Exif 键。
// JPEG 的尺寸记录在 Photo.PixelXDimension，其它栅格格式在 Image.ImageWidth。
func ImageWidthKey(isJPEG bool) string {
	if isJPEG {
		return KeyExifPixelXDimension
	}
	return KeyExifImageWidth
}

// ImageHeightKey 返回图片高度对应的 Exif 键
func ImageHeightKey(isJPEG bool) string {
	if isJPEG {
		return KeyExifPixelYDimension
	}
	return KeyExifImageLength
}
