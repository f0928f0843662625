/*
 * @Description: JPEG 文件的段级读写。重建文件时保留压缩数据，
 *               只替换承载元数据的 APP 段。
 * @Author: 安知鱼
 * @Date: 2025-08-08 10:22:40
 * @LastEditTime: 2025-08-27 11:02:19
 * @LastEditors: 安知鱼
 */
package imagemeta

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	markerSOI   = 0xD8
	markerEOI   = 0xD9
	markerAPP0  = 0xE0
	markerAPP1  = 0xE1
	markerAPP13 = 0xED
	markerSOS   = 0xDA
)

var (
	exifPrefix      = []byte("Exif\x00\x00")
	photoshopPrefix = []byte("Photoshop 3.0\x00")
)

// jpegSegment 是一个带长度前缀的 JPEG 段。marker 为 0 表示 SOS 之后的原始扫描数据。
type jpegSegment struct {
	marker byte
	data   []byte
}

// parseJpegSegments 把 JPEG 文件拆成段的列表，SOI/EOI 作为空段保留。
func parseJpegSegments(data []byte) ([]jpegSegment, error) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != markerSOI {
		return nil, fmt.Errorf("不是合法的 JPEG 文件")
	}
	segs := []jpegSegment{{marker: markerSOI}}

	i := 2
	for i < len(data) {
		if data[i] != 0xFF {
			// SOS 之后的压缩数据，原样保留
			segs = append(segs, jpegSegment{marker: 0x00, data: data[i:]})
			break
		}
		i++
		if i >= len(data) {
			break
		}
		marker := data[i]
		i++

		if marker == markerSOI || marker == markerEOI {
			segs = append(segs, jpegSegment{marker: marker})
			if marker == markerEOI {
				break
			}
			continue
		}

		if i+2 > len(data) {
			break
		}
		segLen := int(binary.BigEndian.Uint16(data[i:i+2])) - 2
		i += 2
		if segLen < 0 || i+segLen > len(data) {
			break
		}
		segs = append(segs, jpegSegment{marker: marker, data: append([]byte{}, data[i:i+segLen]...)})
		i += segLen
	}
	return segs, nil
}

// encodeJpegSegments 把段列表重新编码成完整的 JPEG 字节流。
func encodeJpegSegments(segs []jpegSegment) []byte {
	var buf bytes.Buffer
	for _, seg := range segs {
		switch seg.marker {
		case markerSOI:
			buf.Write([]byte{0xFF, markerSOI})
		case markerEOI:
			buf.Write([]byte{0xFF, markerEOI})
		case 0x00:
			buf.Write(seg.data)
		default:
			buf.WriteByte(0xFF)
			buf.WriteByte(seg.marker)
			length := uint16(len(seg.data) + 2)
			buf.WriteByte(byte(length >> 8))
			buf.WriteByte(byte(length))
			buf.Write(seg.data)
		}
	}
	return buf.Bytes()
}

func isExifSegment(seg jpegSegment) bool {
	return seg.marker == markerAPP1 && bytes.HasPrefix(seg.data, exifPrefix)
}

func isIptcSegment(seg jpegSegment) bool {
	return seg.marker == markerAPP13 && bytes.HasPrefix(seg.data, photoshopPrefix)
}

// replaceMetaSegments 去掉原有的 Exif APP1 与 Photoshop APP13 段，
// 在 SOI（以及可能存在的 APP0）之后插入新的元数据段。payload 为空表示该段被删除。
func replaceMetaSegments(segs []jpegSegment, exifPayload, iptcPayload []byte) []jpegSegment {
	kept := make([]jpegSegment, 0, len(segs)+2)
	for _, seg := range segs {
		if isExifSegment(seg) || isIptcSegment(seg) {
			continue
		}
		kept = append(kept, seg)
	}

	// 元数据段紧跟 SOI，如有 JFIF 的 APP0 则排在它后面
	insertAt := 1
	if len(kept) > 1 && kept[1].marker == markerAPP0 {
		insertAt = 2
	}

	var inserted []jpegSegment
	if len(exifPayload) > 0 {
		inserted = append(inserted, jpegSegment{marker: markerAPP1, data: exifPayload})
	}
	if len(iptcPayload) > 0 {
		inserted = append(inserted, jpegSegment{marker: markerAPP13, data: iptcPayload})
	}
	if len(inserted) == 0 {
		return kept
	}

	result := make([]jpegSegment, 0, len(kept)+len(inserted))
	result = append(result, kept[:insertAt]...)
	result = append(result, inserted...)
	result = append(result, kept[insertAt:]...)
	return result
}
