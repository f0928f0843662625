/*
 * @Description: 使用 Go 原生库为照片生成缩略图。
 *               对 JPEG 优先复用文件内嵌的缩略图，并把新生成的缩略图回写进文件。
 * @Author: 安知鱼
 * @Date: 2025-08-05 09:12:30
 * @LastEditTime: 2025-08-26 15:47:03
 * @LastEditors: 安知鱼
 */
package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/anzhiyu-c/photasm/pkg/domain/model"
	"github.com/anzhiyu-c/photasm/pkg/domain/repository"
	"github.com/anzhiyu-c/photasm/pkg/service/metadata"
)

// DefaultPixelBudget 是缩略图允许的最大总像素数。
const DefaultPixelBudget = 19200

// Service 负责生成缩略图并把结果路径挂到照片记录上。
type Service struct {
	codec       metadata.Codec
	photoRepo   repository.PhotoRepository
	cachePath   string
	pixelBudget int
	jpegQuality int
}

// NewService 是 thumbnail.Service 的构造函数。
func NewService(codec metadata.Codec, photoRepo repository.PhotoRepository, cachePath string, pixelBudget, jpegQuality int) *Service {
	if pixelBudget <= 0 {
		pixelBudget = DefaultPixelBudget
	}
	if jpegQuality <= 0 {
		jpegQuality = 80
	}
	return &Service{
		codec:       codec,
		photoRepo:   photoRepo,
		cachePath:   cachePath,
		pixelBudget: pixelBudget,
		jpegQuality: jpegQuality,
	}
}

// dateSubDir 按拍摄时间划分缓存子目录，没有拍摄时间的照片放在根目录。
func dateSubDir(photo *model.Photo) string {
	if photo.TimeCreated == nil {
		return ""
	}
	return photo.TimeCreated.Format("2006/01")
}

// CreateThumbnail 为照片生成缩略图文件并持久化其路径。
// JPEG 文件里已内嵌的缩略图原样落盘，其他情况按像素预算缩放后编码。
func (s *Service) CreateThumbnail(ctx context.Context, photo *model.Photo) error {
	if photo.IsJPEG {
		done, err := s.extractEmbedded(ctx, photo)
		if done || err != nil {
			return err
		}
	}
	return s.synthesize(ctx, photo)
}

// extractEmbedded 尝试把 JPEG 内嵌缩略图的原始字节直接写入缓存。
// 文件没有内嵌缩略图或读取失败时返回 done=false，由调用方降级到缩放路径。
func (s *Service) extractEmbedded(ctx context.Context, photo *model.Photo) (done bool, err error) {
	container, err := s.codec.Open(photo.FilePath)
	if err != nil {
		log.Printf("[Thumbnail] 读取照片 %d 的元数据失败，降级为缩放生成: %v", photo.ID, err)
		return false, nil
	}

	data, err := container.Thumbnail()
	if err != nil || len(data) == 0 {
		return false, nil
	}

	cacheFileName := GenerateCacheName(photo.ID, "jpg")
	cacheFullPath, err := GetCachePath(s.cachePath, dateSubDir(photo), cacheFileName)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(cacheFullPath, data, 0o644); err != nil {
		return false, fmt.Errorf("写入内嵌缩略图 '%s' 失败: %w", cacheFullPath, err)
	}

	log.Printf("[Thumbnail] 照片 %d 复用了文件内嵌的缩略图。", photo.ID)
	photo.ThumbnailPath = cacheFullPath
	return true, s.photoRepo.Save(ctx, photo)
}

// synthesize 解码原图，按像素预算缩放后以原格式编码到缓存。
func (s *Service) synthesize(ctx context.Context, photo *model.Photo) error {
	srcImage, err := imaging.Open(photo.FilePath)
	if err != nil {
		return fmt.Errorf("使用imaging库打开或解码图片 '%s' 失败: %w", photo.FilePath, err)
	}

	bounds := srcImage.Bounds()
	thumb := srcImage
	if newW, newH, ok := scaledSize(bounds.Dx(), bounds.Dy(), s.pixelBudget); ok {
		thumb = imaging.Resize(srcImage, newW, newH, imaging.Lanczos)
	}

	// 缩略图保持原图格式，imaging 编码不了的格式（如 webp）降级为 JPEG
	outputExt := strings.TrimPrefix(strings.ToLower(filepath.Ext(photo.FilePath)), ".")
	if _, err := imaging.FormatFromFilename(photo.FilePath); err != nil {
		outputExt = "jpg"
	}

	cacheFileName := GenerateCacheName(photo.ID, outputExt)
	cacheFullPath, err := GetCachePath(s.cachePath, dateSubDir(photo), cacheFileName)
	if err != nil {
		return err
	}
	if err := imaging.Save(thumb, cacheFullPath, imaging.JPEGQuality(s.jpegQuality)); err != nil {
		return fmt.Errorf("使用imaging库保存缩略图失败: %w", err)
	}

	if photo.IsJPEG {
		s.embedIntoFile(photo, thumb)
	}

	photo.ThumbnailPath = cacheFullPath
	return s.photoRepo.Save(ctx, photo)
}

// embedIntoFile 把缩放结果编码为 JPEG 字节并回写进原文件的元数据。
// 回写失败只记录日志，磁盘上的缩略图文件已经可用。
func (s *Service) embedIntoFile(photo *model.Photo, thumb image.Image) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(s.jpegQuality)); err != nil {
		log.Printf("[Thumbnail] 编码照片 %d 的内嵌缩略图失败: %v", photo.ID, err)
		return
	}

	container, err := s.codec.Open(photo.FilePath)
	if err != nil {
		log.Printf("[Thumbnail] 打开照片 %d 回写缩略图失败: %v", photo.ID, err)
		return
	}
	container.SetThumbnail(buf.Bytes())
	if err := container.Flush(); err != nil {
		log.Printf("[Thumbnail] 回写照片 %d 的内嵌缩略图失败: %v", photo.ID, err)
	}
}

// scaledSize 计算不超过像素预算的等比缩放尺寸。
// 原图已在预算内时返回 ok=false，绝不放大。
func scaledSize(width, height, budget int) (newWidth, newHeight int, ok bool) {
	if width <= 0 || height <= 0 || width*height <= budget {
		return width, height, false
	}
	scale := math.Sqrt(float64(budget) / float64(width*height))
	newWidth = int(float64(width) * scale)
	newHeight = int(float64(height) * scale)
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}
	return newWidth, newHeight, true
}
