/*
 * @Description: 拍摄时间的专用同步引擎。
 *               Exif 用单个标签存完整日期时间，IPTC 拆成独立的日期、时间两个标签，
 *               这里负责两边的拆合；元数据没有亚秒精度，比较一律截断到整秒，
 *               且不建模时区（朴素本地时间）。
 * @Author: 安知鱼
 * @Date: 2025-08-02 15:10:40
 * @LastEditTime: 2025-08-23 10:19:31
 * @LastEditors: 安知鱼
 */
package metadata

import (
	"strings"
	"time"
)

var iptcDateLayouts = []string{"2006-01-02", "20060102"}
var iptcTimeLayouts = []string{"15:04:05", "150405"}

// naiveSecond 把时间截断到整秒并抹掉时区偏移，得到可以互相比较的朴素时间
func naiveSecond(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// truncateDateTime 对日期时间值做比较前的规整；非时间值原样返回
func truncateDateTime(v Value) Value {
	if v.Kind() != KindDateTime {
		return v
	}
	return DateTime(naiveSecond(v.Time()))
}

// stripTimeZone 去掉 IPTC 时间文本可能携带的时区后缀（如 "03:00:00+00:00"）
func stripTimeZone(s string) string {
	if len(s) <= 8 {
		return s
	}
	if idx := strings.IndexAny(s[1:], "+-"); idx >= 0 {
		return s[:idx+1]
	}
	return s
}

// parseIptcDate 解析 IPTC 日期标签的文本形式
func parseIptcDate(v Value) (time.Time, bool) {
	if v.Kind() != KindText {
		return time.Time{}, false
	}
	for _, layout := range iptcDateLayouts {
		if t, err := time.Parse(layout, v.Text()); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseIptcTime 解析 IPTC 时间标签的文本形式，时区偏移直接丢弃
func parseIptcTime(v Value) (time.Time, bool) {
	if v.Kind() != KindText {
		return time.Time{}, false
	}
	text := stripTimeZone(v.Text())
	for _, layout := range iptcTimeLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// combinedIptcDateTime 把 IPTC 的日期、时间两个标签合成一个完整时间值。
// 只有一半（孤立的日期或孤立的时间）不可用，返回 Absent。
func combinedIptcDateTime(c Container, iptcDateKey, iptcTimeKey string) Value {
	dateValue := readIfPresent(c, iptcDateKey, c.IptcKeys())
	timeValue := readIfPresent(c, iptcTimeKey, c.IptcKeys())

	date, dateOK := parseIptcDate(dateValue)
	clock, clockOK := parseIptcTime(timeValue)
	if !dateOK || !clockOK {
		return Absent
	}
	return DateTime(time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, time.UTC))
}

// exifDateTime 读取 Exif 的完整日期时间标签
func exifDateTime(c Container, exifKey string) Value {
	v := readIfPresent(c, exifKey, c.ExifKeys())
	if v.Kind() != KindDateTime {
		return Absent
	}
	return v
}

// DateTimeSyncedWithExifAndIptc 判断一个日期时间值是否与文件元数据同步。
// 合并读出 Exif 组合值与 IPTC 日期+时间对，套用和普通双标签字段相同的
// "Exif 在场以 Exif 为准，否则比对存在的一方"规则。
func DateTimeSyncedWithExifAndIptc(value Value, c Container, exifKey, iptcDateKey, iptcTimeKey string) bool {
	want := truncateDateTime(value)
	exifValue := truncateDateTime(exifDateTime(c, exifKey))
	iptcValue := combinedIptcDateTime(c, iptcDateKey, iptcTimeKey)

	if exifValue.IsAbsent() {
		return want.equal(iptcValue)
	}
	if iptcValue.IsAbsent() {
		return want.equal(exifValue)
	}
	return want.equal(exifValue) && want.equal(iptcValue)
}

// SyncDateTimeToExifAndIptc 把日期时间值按需写入文件。
// 需要写入时只更新 Exif 组合标签（值缺失则删除），并无条件删除 IPTC 的
// 日期、时间两个键，迁移理由同 SyncValueToExifAndIptc。
func SyncDateTimeToExifAndIptc(value Value, c Container, exifKey, iptcDateKey, iptcTimeKey string) bool {
	if DateTimeSyncedWithExifAndIptc(value, c, exifKey, iptcDateKey, iptcTimeKey) {
		return false
	}

	if value.normalize().IsAbsent() {
		deleteTolerant(c, exifKey)
	} else {
		c.Set(exifKey, value)
	}

	if containsKey(c.IptcKeys(), iptcDateKey) {
		deleteTolerant(c, iptcDateKey)
	}
	if containsKey(c.IptcKeys(), iptcTimeKey) {
		deleteTolerant(c, iptcTimeKey)
	}
	return true
}

// ReadDateTimeFromExifAndIptc 读取拍摄时间的合并视图。
// Exif 组合标签在场时以它为准；否则尝试合成 IPTC 日期+时间对，
// 不完整的一对不可用，返回 Absent。
func ReadDateTimeFromExifAndIptc(c Container, exifKey, iptcDateKey, iptcTimeKey string) Value {
	if v := exifDateTime(c, exifKey); !v.IsAbsent() {
		return truncateDateTime(v)
	}
	return combinedIptcDateTime(c, iptcDateKey, iptcTimeKey)
}
