/*
 * @Description: metadata.Container 的文件实现。修改全部缓存在内存，
 *               Flush 时按格式重建文件里的元数据段。
 * @Author: 安知鱼
 * @Date: 2025-08-08 09:40:15
 * @LastEditTime: 2025-08-28 10:26:54
 * @LastEditors: 安知鱼
 */
package imagemeta

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/anzhiyu-c/photasm/pkg/constant"
	"github.com/anzhiyu-c/photasm/pkg/service/metadata"
)

type fileFormat int

const (
	formatOther fileFormat = iota
	formatJPEG
	formatPNG
	formatTIFF
	formatHEIC
)

type fileContainer struct {
	path   string
	format fileFormat

	exifVals  map[string]metadata.Value
	iptcVals  map[string]metadata.Value
	preserved map[uint16]string
	thumb     []byte
}

var _ metadata.Container = (*fileContainer)(nil)

func newFileContainer(path string, format fileFormat) *fileContainer {
	return &fileContainer{
		path:      path,
		format:    format,
		exifVals:  make(map[string]metadata.Value),
		iptcVals:  make(map[string]metadata.Value),
		preserved: make(map[uint16]string),
	}
}

func (fc *fileContainer) bucket(key string) map[string]metadata.Value {
	if strings.HasPrefix(key, "Exif.") {
		return fc.exifVals
	}
	return fc.iptcVals
}

func (fc *fileContainer) Get(key string) metadata.Value {
	if v, ok := fc.bucket(key)[key]; ok {
		return v
	}
	return metadata.Absent
}

func (fc *fileContainer) Set(key string, value metadata.Value) {
	fc.bucket(key)[key] = value
}

func (fc *fileContainer) Delete(key string) error {
	delete(fc.bucket(key), key)
	return nil
}

func sortedValueKeys(m map[string]metadata.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (fc *fileContainer) ExifKeys() []string { return sortedValueKeys(fc.exifVals) }
func (fc *fileContainer) IptcKeys() []string { return sortedValueKeys(fc.iptcVals) }

func (fc *fileContainer) Thumbnail() ([]byte, error) {
	if len(fc.thumb) == 0 {
		return nil, constant.ErrNoThumbnail
	}
	return fc.thumb, nil
}

func (fc *fileContainer) SetThumbnail(data []byte) {
	fc.thumb = data
}

func (fc *fileContainer) Flush() error {
	switch fc.format {
	case formatJPEG:
		return fc.flushJpeg()
	case formatPNG:
		return fc.flushPng()
	default:
		return fmt.Errorf("%w: 该格式不支持写回", constant.ErrMetadataWrite)
	}
}

func (fc *fileContainer) flushJpeg() error {
	data, err := os.ReadFile(fc.path)
	if err != nil {
		return fmt.Errorf("%w: %v", constant.ErrMetadataWrite, err)
	}
	segs, err := parseJpegSegments(data)
	if err != nil {
		return fmt.Errorf("%w: %v", constant.ErrMetadataWrite, err)
	}

	var exifPayload []byte
	if block := buildExifBlock(fc.exifVals, fc.preserved, fc.thumb); block != nil {
		exifPayload = append(append([]byte{}, exifPrefix...), block...)
	}
	iptcPayload := buildIptcBlock(fc.iptcVals)

	out := encodeJpegSegments(replaceMetaSegments(segs, exifPayload, iptcPayload))
	if err := os.WriteFile(fc.path, out, 0o644); err != nil {
		return fmt.Errorf("%w: %v", constant.ErrMetadataWrite, err)
	}
	return nil
}

func (fc *fileContainer) flushPng() error {
	data, err := os.ReadFile(fc.path)
	if err != nil {
		return fmt.Errorf("%w: %v", constant.ErrMetadataWrite, err)
	}
	chunks, err := parsePngChunks(data)
	if err != nil {
		return fmt.Errorf("%w: %v", constant.ErrMetadataWrite, err)
	}
	if len(fc.iptcVals) > 0 {
		log.Printf("[ImageMeta] PNG 不承载 IPTC，文件 %s 丢弃 %d 个 IPTC 键。", fc.path, len(fc.iptcVals))
	}

	block := buildExifBlock(fc.exifVals, fc.preserved, fc.thumb)
	out := encodePngChunks(replaceExifChunk(chunks, block))
	if err := os.WriteFile(fc.path, out, 0o644); err != nil {
		return fmt.Errorf("%w: %v", constant.ErrMetadataWrite, err)
	}
	return nil
}
