/*
 * @Description: Exif 的读取与重建。读取走 go-exif 的扁平化接口，
 *               写回时按 TIFF 结构重建 IFD0 / Exif IFD / IFD1。
 * @Author: 安知鱼
 * @Date: 2025-08-08 11:05:33
 * @LastEditTime: 2025-08-27 16:44:50
 * @LastEditors: 安知鱼
 */
package imagemeta

import (
	"bytes"
	"encoding/binary"
	"sort"
	"strconv"
	"strings"
	"time"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/anzhiyu-c/photasm/pkg/service/metadata"
)

// exifTimeLayout 是 Exif 日期时间标签的固定格式
const exifTimeLayout = "2006:01:02 15:04:05"

const (
	tiffTypeAscii = 2
	tiffTypeShort = 3
	tiffTypeLong  = 4
)

// 受管标签的 TIFF 标签号
const (
	tagImageWidth       = 0x0100
	tagImageLength      = 0x0101
	tagImageDescription = 0x010E
	tagArtist           = 0x013B
	tagExifIfdPointer   = 0x8769
	tagDateTimeOriginal = 0x9003
	tagPixelXDimension  = 0xA002
	tagPixelYDimension  = 0xA003

	tagThumbCompression = 0x0103
	tagThumbOffset      = 0x0201
	tagThumbLength      = 0x0202
)

// 重建时原样保留的 IFD0 文本标签（相机厂商、机型等与同步无关的信息）
var preservedTagIDs = map[string]uint16{
	"Make":      0x010F,
	"Model":     0x0110,
	"Software":  0x0131,
	"DateTime":  0x0132,
	"Copyright": 0x8298,
}

// loadExifValues 把原始 Exif 块扁平化后装进容器的键值表。
// 未识别的标签里，白名单内的文本标签被留存，重建时写回。
func loadExifValues(raw []byte, vals map[string]metadata.Value, preserved map[uint16]string) error {
	entries, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return err
	}

	for _, tag := range entries {
		if tag.TagName == "" {
			continue
		}
		cleaned := strings.ReplaceAll(tag.FormattedFirst, "\x00", "")
		if cleaned == "" {
			continue
		}

		switch tag.TagName {
		case "ImageDescription":
			setOnce(vals, metadata.KeyExifImageDescription, metadata.Text(cleaned))
		case "Artist":
			setOnce(vals, metadata.KeyExifArtist, metadata.Text(cleaned))
		case "DateTimeOriginal":
			if t, err := time.Parse(exifTimeLayout, cleaned); err == nil {
				setOnce(vals, metadata.KeyExifDateTimeOriginal, metadata.DateTime(t))
			}
		case "ImageWidth":
			setIntOnce(vals, metadata.KeyExifImageWidth, cleaned)
		case "ImageLength":
			setIntOnce(vals, metadata.KeyExifImageLength, cleaned)
		case "PixelXDimension":
			setIntOnce(vals, metadata.KeyExifPixelXDimension, cleaned)
		case "PixelYDimension":
			setIntOnce(vals, metadata.KeyExifPixelYDimension, cleaned)
		default:
			if id, ok := preservedTagIDs[tag.TagName]; ok {
				if _, exists := preserved[id]; !exists {
					preserved[id] = cleaned
				}
			}
		}
	}
	return nil
}

// setOnce 只接受每个标签的第一次出现，缩略图 IFD 里的同名标签不覆盖主图
func setOnce(vals map[string]metadata.Value, key string, v metadata.Value) {
	if _, ok := vals[key]; !ok {
		vals[key] = v
	}
}

func setIntOnce(vals map[string]metadata.Value, key, formatted string) {
	if n, err := strconv.Atoi(formatted); err == nil {
		setOnce(vals, key, metadata.Integer(n))
	}
}

// ---- TIFF 重建 ----

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

func asciiEntry(tag uint16, s string) ifdEntry {
	data := append([]byte(s), 0)
	return ifdEntry{tag: tag, typ: tiffTypeAscii, count: uint32(len(data)), data: data}
}

func longEntry(tag uint16, v uint32) ifdEntry {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, v)
	return ifdEntry{tag: tag, typ: tiffTypeLong, count: 1, data: data}
}

func shortEntry(tag uint16, v uint16) ifdEntry {
	data := make([]byte, 2)
	binary.LittleEndian.PutUint16(data, v)
	return ifdEntry{tag: tag, typ: tiffTypeShort, count: 1, data: data}
}

// buildExifBlock 根据容器里的 Exif 键值重建整个 TIFF 块（不含 APP1 的 Exif 前缀）。
// 没有任何内容可写时返回 nil，表示 Exif 段整体省略。
func buildExifBlock(vals map[string]metadata.Value, preserved map[uint16]string, thumb []byte) []byte {
	var ifd0, exifIfd []ifdEntry

	if v, ok := vals[metadata.KeyExifImageDescription]; ok {
		ifd0 = append(ifd0, asciiEntry(tagImageDescription, v.Text()))
	}
	if v, ok := vals[metadata.KeyExifArtist]; ok {
		ifd0 = append(ifd0, asciiEntry(tagArtist, v.Text()))
	}
	if v, ok := vals[metadata.KeyExifImageWidth]; ok {
		ifd0 = append(ifd0, longEntry(tagImageWidth, uint32(v.Integer())))
	}
	if v, ok := vals[metadata.KeyExifImageLength]; ok {
		ifd0 = append(ifd0, longEntry(tagImageLength, uint32(v.Integer())))
	}
	for id, text := range preserved {
		ifd0 = append(ifd0, asciiEntry(id, text))
	}

	if v, ok := vals[metadata.KeyExifDateTimeOriginal]; ok {
		exifIfd = append(exifIfd, asciiEntry(tagDateTimeOriginal, v.Time().Format(exifTimeLayout)))
	}
	if v, ok := vals[metadata.KeyExifPixelXDimension]; ok {
		exifIfd = append(exifIfd, longEntry(tagPixelXDimension, uint32(v.Integer())))
	}
	if v, ok := vals[metadata.KeyExifPixelYDimension]; ok {
		exifIfd = append(exifIfd, longEntry(tagPixelYDimension, uint32(v.Integer())))
	}

	if len(ifd0) == 0 && len(exifIfd) == 0 && len(thumb) == 0 {
		return nil
	}
	return encodeTiffBlock(ifd0, exifIfd, thumb)
}

// encodeTiffBlock 按小端序排布 [头部][IFD0][Exif IFD][IFD1][越界值区][缩略图]。
// TIFF 要求 IFD 内条目按标签号升序。
func encodeTiffBlock(ifd0, exifIfd []ifdEntry, thumb []byte) []byte {
	le := binary.LittleEndian

	sizeOf := func(n int) int {
		if n == 0 {
			return 0
		}
		return 2 + n*12 + 4
	}

	if len(exifIfd) > 0 {
		// 指针条目的值在偏移确定后回填
		ifd0 = append(ifd0, longEntry(tagExifIfdPointer, 0))
	}
	sortEntries(ifd0)
	sortEntries(exifIfd)

	ifd1Count := 0
	if len(thumb) > 0 {
		ifd1Count = 3
	}

	const headerSize = 8
	ifd0Start := headerSize
	exifStart := ifd0Start + sizeOf(len(ifd0))
	ifd1Start := exifStart + sizeOf(len(exifIfd))
	valueStart := ifd1Start + sizeOf(ifd1Count)

	var valueArea bytes.Buffer
	writeIfd := func(entries []ifdEntry, next uint32) []byte {
		var b bytes.Buffer
		var tmp [4]byte
		le.PutUint16(tmp[:2], uint16(len(entries)))
		b.Write(tmp[:2])
		for _, e := range entries {
			le.PutUint16(tmp[:2], e.tag)
			b.Write(tmp[:2])
			le.PutUint16(tmp[:2], e.typ)
			b.Write(tmp[:2])
			le.PutUint32(tmp[:4], e.count)
			b.Write(tmp[:4])
			if len(e.data) <= 4 {
				var inline [4]byte
				copy(inline[:], e.data)
				b.Write(inline[:])
			} else {
				le.PutUint32(tmp[:4], uint32(valueStart+valueArea.Len()))
				b.Write(tmp[:4])
				valueArea.Write(e.data)
			}
		}
		le.PutUint32(tmp[:4], next)
		b.Write(tmp[:4])
		return b.Bytes()
	}

	if len(exifIfd) > 0 {
		for i := range ifd0 {
			if ifd0[i].tag == tagExifIfdPointer {
				le.PutUint32(ifd0[i].data, uint32(exifStart))
			}
		}
	}

	nextAfterIfd0 := uint32(0)
	if ifd1Count > 0 {
		nextAfterIfd0 = uint32(ifd1Start)
	}
	ifd0Bytes := writeIfd(ifd0, nextAfterIfd0)

	var exifBytes []byte
	if len(exifIfd) > 0 {
		exifBytes = writeIfd(exifIfd, 0)
	}

	// IFD0 与 Exif IFD 写完后越界值区长度才确定，缩略图紧随其后
	var ifd1Bytes []byte
	if ifd1Count > 0 {
		thumbStart := uint32(valueStart + valueArea.Len())
		ifd1 := []ifdEntry{
			shortEntry(tagThumbCompression, 6),
			longEntry(tagThumbOffset, thumbStart),
			longEntry(tagThumbLength, uint32(len(thumb))),
		}
		ifd1Bytes = writeIfd(ifd1, 0)
	}

	var out bytes.Buffer
	out.WriteString("II")
	var tmp [4]byte
	le.PutUint16(tmp[:2], 0x002A)
	out.Write(tmp[:2])
	le.PutUint32(tmp[:4], uint32(ifd0Start))
	out.Write(tmp[:4])
	out.Write(ifd0Bytes)
	out.Write(exifBytes)
	out.Write(ifd1Bytes)
	out.Write(valueArea.Bytes())
	out.Write(thumb)
	return out.Bytes()
}

func sortEntries(entries []ifdEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })
}

// ---- 内嵌缩略图提取 ----

// walkIfd 返回指定偏移处 IFD 的条目切片和下一个 IFD 的偏移，越界时返回空。
func walkIfd(raw []byte, bo binary.ByteOrder, offset uint32) ([][]byte, uint32) {
	o := int(offset)
	if o <= 0 || o+2 > len(raw) {
		return nil, 0
	}
	count := int(bo.Uint16(raw[o : o+2]))
	end := o + 2 + count*12
	if end+4 > len(raw) {
		return nil, 0
	}
	entries := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		entries = append(entries, raw[o+2+i*12:o+2+(i+1)*12])
	}
	return entries, bo.Uint32(raw[end : end+4])
}

// extractExifThumbnail 从原始 Exif 块里取出 IFD1 指向的内嵌 JPEG 缩略图。
func extractExifThumbnail(raw []byte) []byte {
	if len(raw) < 8 {
		return nil
	}
	var bo binary.ByteOrder
	switch {
	case raw[0] == 'I' && raw[1] == 'I':
		bo = binary.LittleEndian
	case raw[0] == 'M' && raw[1] == 'M':
		bo = binary.BigEndian
	default:
		return nil
	}

	_, next := walkIfd(raw, bo, bo.Uint32(raw[4:8]))
	if next == 0 {
		return nil
	}
	entries, _ := walkIfd(raw, bo, next)

	var off, size uint32
	for _, e := range entries {
		tag := bo.Uint16(e[0:2])
		var v uint32
		switch bo.Uint16(e[2:4]) {
		case tiffTypeShort:
			v = uint32(bo.Uint16(e[8:10]))
		case tiffTypeLong:
			v = bo.Uint32(e[8:12])
		default:
			continue
		}
		switch tag {
		case tagThumbOffset:
			off = v
		case tagThumbLength:
			size = v
		}
	}
	if off == 0 || size == 0 || int(off)+int(size) > len(raw) {
		return nil
	}
	return append([]byte{}, raw[off:off+size]...)
}
