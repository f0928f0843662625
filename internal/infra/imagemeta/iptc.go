/*
 * @Description: IPTC IIM 记录与容器键值的互转。读取复用 go-jpeg-image-structure
 *               解析出的数据集，写回时手工构造 Photoshop APP13 资源段。
 * @Author: 安知鱼
 * @Date: 2025-08-08 14:37:02
 * @LastEditTime: 2025-08-27 17:21:35
 * @LastEditors: 安知鱼
 */
package imagemeta

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"github.com/dsoprea/go-iptc"

	"github.com/anzhiyu-c/photasm/pkg/service/metadata"
)

// IIM 第 2 记录的数据集编号
const (
	dsRecordVersion = 0x00
	dsKeywords      = 0x19
	dsDateCreated   = 0x37
	dsTimeCreated   = 0x3C
	dsByline        = 0x50
	dsCity          = 0x5A
	dsSubLocation   = 0x5C
	dsProvinceState = 0x5F
	dsCountryName   = 0x65
	dsCaption       = 0x78
)

var datasetToKey = map[uint8]string{
	dsKeywords:      metadata.KeyIptcKeywords,
	dsDateCreated:   metadata.KeyIptcDateCreated,
	dsTimeCreated:   metadata.KeyIptcTimeCreated,
	dsByline:        metadata.KeyIptcByline,
	dsCity:          metadata.KeyIptcCity,
	dsSubLocation:   metadata.KeyIptcSubLocation,
	dsProvinceState: metadata.KeyIptcProvinceState,
	dsCountryName:   metadata.KeyIptcCountryName,
	dsCaption:       metadata.KeyIptcCaption,
}

var keyToDataset = map[string]uint8{
	metadata.KeyIptcKeywords:      dsKeywords,
	metadata.KeyIptcDateCreated:   dsDateCreated,
	metadata.KeyIptcTimeCreated:   dsTimeCreated,
	metadata.KeyIptcByline:        dsByline,
	metadata.KeyIptcCity:          dsCity,
	metadata.KeyIptcSubLocation:   dsSubLocation,
	metadata.KeyIptcProvinceState: dsProvinceState,
	metadata.KeyIptcCountryName:   dsCountryName,
	metadata.KeyIptcCaption:       dsCaption,
}

// loadIptcValues 把解析好的 IIM 数据集装进容器的键值表。
// 日期和时间统一转成容器使用的文本形式，关键字聚合成列表。
func loadIptcValues(tags map[iptc.StreamTagKey][]iptc.TagData, vals map[string]metadata.Value) {
	for streamKey, data := range tags {
		if streamKey.RecordNumber != 2 || len(data) == 0 {
			continue
		}
		key, ok := datasetToKey[streamKey.DatasetNumber]
		if !ok {
			continue
		}

		switch key {
		case metadata.KeyIptcKeywords:
			items := make([]string, 0, len(data))
			for _, d := range data {
				if s := string(d); s != "" {
					items = append(items, s)
				}
			}
			if len(items) > 0 {
				vals[key] = metadata.TextList(items)
			}
		case metadata.KeyIptcDateCreated:
			if s := iptcDateToText(string(data[0])); s != "" {
				vals[key] = metadata.Text(s)
			}
		case metadata.KeyIptcTimeCreated:
			if s := iptcTimeToText(string(data[0])); s != "" {
				vals[key] = metadata.Text(s)
			}
		default:
			if s := string(data[0]); s != "" {
				vals[key] = metadata.Text(s)
			}
		}
	}
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// iptcDateToText 把 IIM 的 CCYYMMDD 原始日期转成容器内的 "2006-01-02" 文本
func iptcDateToText(raw string) string {
	d := digitsOf(raw)
	if len(d) < 8 {
		return ""
	}
	return fmt.Sprintf("%s-%s-%s", d[0:4], d[4:6], d[6:8])
}

// iptcTimeToText 把 IIM 的 HHMMSS±HHMM 原始时间转成容器内的 "15:04:05" 文本。
// 时区后缀直接丢弃，比较语义是本地朴素时间。
func iptcTimeToText(raw string) string {
	d := digitsOf(strings.SplitN(strings.SplitN(raw, "+", 2)[0], "-", 2)[0])
	if len(d) < 6 {
		return ""
	}
	return fmt.Sprintf("%s:%s:%s", d[0:2], d[2:4], d[4:6])
}

// ---- APP13 重建 ----

// buildIptcBlock 把容器里的 IPTC 键值编码成完整的 APP13 负载。
// 没有任何值时返回 nil，表示 APP13 段整体省略。
func buildIptcBlock(vals map[string]metadata.Value) []byte {
	type iimRecord struct {
		dataset uint8
		data    []byte
	}
	var records []iimRecord

	for key, v := range vals {
		dataset, ok := keyToDataset[key]
		if !ok {
			continue
		}
		switch key {
		case metadata.KeyIptcKeywords:
			for _, item := range v.List() {
				if item != "" {
					records = append(records, iimRecord{dsKeywords, []byte(item)})
				}
			}
		case metadata.KeyIptcDateCreated:
			if d := digitsOf(v.Text()); len(d) >= 8 {
				records = append(records, iimRecord{dataset, []byte(d[:8])})
			}
		case metadata.KeyIptcTimeCreated:
			if d := digitsOf(v.Text()); len(d) >= 6 {
				records = append(records, iimRecord{dataset, []byte(d[:6])})
			}
		default:
			if s := v.Text(); s != "" {
				records = append(records, iimRecord{dataset, []byte(s)})
			}
		}
	}
	if len(records) == 0 {
		return nil
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].dataset < records[j].dataset })

	var iim bytes.Buffer
	writeRecord := func(dataset uint8, data []byte) {
		iim.WriteByte(0x1C)
		iim.WriteByte(0x02)
		iim.WriteByte(dataset)
		var lenBuf [2]byte
		binary.BigEndian.PutUint16(lenBuf[:], uint16(len(data)))
		iim.Write(lenBuf[:])
		iim.Write(data)
	}
	writeRecord(dsRecordVersion, []byte{0x00, 0x04})
	for _, r := range records {
		writeRecord(r.dataset, r.data)
	}

	// Photoshop 8BIM 资源块包装，资源号 0x0404 为 IPTC
	var out bytes.Buffer
	out.Write(photoshopPrefix)
	out.WriteString("8BIM")
	out.Write([]byte{0x04, 0x04})
	out.Write([]byte{0x00, 0x00})
	var sizeBuf [4]byte
	binary.BigEndian.PutUint32(sizeBuf[:], uint32(iim.Len()))
	out.Write(sizeBuf[:])
	out.Write(iim.Bytes())
	if iim.Len()%2 != 0 {
		out.WriteByte(0x00)
	}
	return out.Bytes()
}
