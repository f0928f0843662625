/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-02 11:32:18
 * @LastEditTime: 2025-08-19 16:08:41
 * @LastEditors: 安知鱼
 */
package constant

import "errors"

// 定义元数据同步相关的标准错误
var (
	// ErrMetadataRead 表示图片元数据无法打开或解析（格式不支持或文件损坏）
	ErrMetadataRead = errors.New("无法读取图片元数据")

	// ErrMetadataWrite 表示图片元数据无法写回文件（格式不支持写入或介质只读）
	ErrMetadataWrite = errors.New("无法写入图片元数据")

	// ErrNoThumbnail 表示图片中没有内嵌缩略图
	ErrNoThumbnail = errors.New("图片中没有内嵌缩略图")

	// ErrTagNotFound 表示容器中不存在指定的元数据标签
	ErrTagNotFound = errors.New("元数据标签不存在")

	// ErrPhotoNotFound 表示照片记录未找到
	ErrPhotoNotFound = errors.New("照片记录未找到")
)
