/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-05 09:12:30
 * @LastEditTime: 2025-08-19 21:04:18
 * @LastEditors: 安知鱼
 */
package thumbnail

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// GenerateCacheName 根据照片 ID 和输出格式生成一个唯一的、可预测的缓存文件名。
func GenerateCacheName(photoID uint, ext string) string {
	// 格式: {photo_id}.thumb.{ext}
	return fmt.Sprintf("%d.thumb.%s", photoID, strings.TrimPrefix(ext, "."))
}

// GetCachePath 根据缓存根目录、拍摄日期子目录和缓存文件名，
// 构建出完整的缓存文件绝对路径。它会自动创建不存在的子目录。
func GetCachePath(cacheRootDir, dateSubDir, cacheFileName string) (string, error) {
	relativePath := strings.TrimPrefix(dateSubDir, "/")
	targetDir := filepath.Join(cacheRootDir, relativePath)
	if err := os.MkdirAll(targetDir, os.ModePerm); err != nil {
		log.Printf("[ERROR] Failed to create thumbnail directory '%s': %v", targetDir, err)
		return "", fmt.Errorf("无法创建缩略图子目录 '%s': %w", targetDir, err)
	}
	return filepath.Join(targetDir, cacheFileName), nil
}
