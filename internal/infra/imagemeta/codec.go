/*
 * @Description: 按扩展名选择解析器，打开图片并装配元数据容器。
 * @Author: 安知鱼
 * @Date: 2025-08-08 09:21:47
 * @LastEditTime: 2025-08-28 11:09:32
 * @LastEditors: 安知鱼
 */
package imagemeta

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
	heicexif "github.com/dsoprea/go-heic-exif-extractor"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure"
	pngstructure "github.com/dsoprea/go-png-image-structure"
	tiffstructure "github.com/dsoprea/go-tiff-image-structure"
	riimage "github.com/dsoprea/go-utility/image"

	"github.com/anzhiyu-c/photasm/pkg/constant"
	"github.com/anzhiyu-c/photasm/pkg/service/metadata"
)

type exifParser interface {
	Parse(rs io.ReadSeeker, size int) (ec riimage.MediaContext, err error)
}

func getExifParser(ext string) exifParser {
	switch ext {
	case ".jpg", ".jpeg":
		return jpegstructure.NewJpegMediaParser()
	case ".png":
		return pngstructure.NewPngMediaParser()
	case ".tif", ".tiff":
		return tiffstructure.NewTiffMediaParser()
	case ".heic", ".heif", ".avif":
		return heicexif.NewHeicExifMediaParser()
	}
	return nil
}

func formatForExt(ext string) fileFormat {
	switch ext {
	case ".jpg", ".jpeg":
		return formatJPEG
	case ".png":
		return formatPNG
	case ".tif", ".tiff":
		return formatTIFF
	case ".heic", ".heif", ".avif":
		return formatHEIC
	}
	return formatOther
}

// Codec 打开图片文件并解析出元数据容器。
// bruteForce 控制结构化解析失败后是否全文件搜索 Exif 数据块。
type Codec struct {
	bruteForce bool
}

func NewCodec(bruteForce bool) *Codec {
	return &Codec{bruteForce: bruteForce}
}

var _ metadata.Codec = (*Codec)(nil)

func (c *Codec) Open(path string) (metadata.Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", constant.ErrMetadataRead, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	fc := newFileContainer(path, formatForExt(ext))

	var rawExif []byte
	parser := getExifParser(ext)

	// 1. 尝试结构化解析
	if parser != nil {
		res, pErr := parser.Parse(bytes.NewReader(data), len(data))
		if pErr != nil {
			if !c.bruteForce {
				return nil, fmt.Errorf("%w: 结构化解析 %s 失败: %v", constant.ErrMetadataRead, path, pErr)
			}
			log.Printf("[ImageMeta] 信息: 结构化解析 %s 失败: %v。将尝试蛮力搜索。", path, pErr)
		} else {
			_, rawExif, _ = res.Exif()
			if sl, ok := res.(*jpegstructure.SegmentList); ok {
				if tags, iErr := sl.Iptc(); iErr == nil {
					loadIptcValues(tags, fc.iptcVals)
				}
			}
		}
	}

	// 2. 如果失败，并且配置允许，则进行蛮力搜索
	if c.bruteForce && len(rawExif) == 0 {
		found, sErr := exif.SearchAndExtractExifWithReader(bytes.NewReader(data))
		if sErr != nil && !errors.Is(sErr, exif.ErrNoExif) {
			log.Printf("[ImageMeta] 警告: 为 %s 进行蛮力搜索时出错: %v", path, sErr)
		}
		rawExif = found
	}

	// 3. 解析提取到的 Exif 数据块
	if len(rawExif) > 0 {
		if err := loadExifValues(rawExif, fc.exifVals, fc.preserved); err != nil {
			log.Printf("[ImageMeta] 警告: 解析 %s 的Exif条目失败: %v", path, err)
		}
		fc.thumb = extractExifThumbnail(rawExif)
	}
	return fc, nil
}
