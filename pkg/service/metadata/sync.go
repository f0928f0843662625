/*
 * @Description: 同步状态判定与按需写入引擎。
 *               判定半边回答"库里的值和文件里的标签是否一致"；
 *               写入半边只在不一致时才动文件，避免无谓的整文件重写。
 * @Author: 安知鱼
 * @Date: 2025-08-02 14:52:17
 * @LastEditTime: 2025-08-23 10:18:52
 * @LastEditors: 安知鱼
 */
package metadata

// readIfPresent 在键存在于给定键集时读取值，否则返回 Absent
func readIfPresent(c Container, key string, keys []string) Value {
	if containsKey(keys, key) {
		return c.Get(key)
	}
	return Absent
}

// ValueSyncedWithExif 判断一个值是否与文件中的 Exif 标签同步。
// 双方比较前都会规整：空文本/空列表折叠为 Absent，列表按无序集合比较。
func ValueSyncedWithExif(value Value, c Container, key string) bool {
	stored := readIfPresent(c, key, c.ExifKeys())
	return value.equal(stored)
}

// ValueSyncedWithIptc 判断一个值是否与文件中的 IPTC 标签同步
func ValueSyncedWithIptc(value Value, c Container, key string) bool {
	stored := readIfPresent(c, key, c.IptcKeys())
	return value.equal(stored)
}

// ValueSyncedWithExifAndIptc 判断一个值是否与 Exif、IPTC 两个标签都同步。
// Exif 缺失时只和 IPTC 比；IPTC 缺失时只和 Exif 比；
// 两者都在时要求三方完全一致（写入侧保证 Exif 优先收敛，见 SyncValueToExifAndIptc）。
func ValueSyncedWithExifAndIptc(value Value, c Container, exifKey, iptcKey string) bool {
	exifValue := readIfPresent(c, exifKey, c.ExifKeys())
	iptcValue := readIfPresent(c, iptcKey, c.IptcKeys())

	if exifValue.IsAbsent() {
		return value.equal(iptcValue)
	}
	if iptcValue.IsAbsent() {
		return value.equal(exifValue)
	}
	return value.equal(exifValue) && value.equal(iptcValue)
}

// writeOrDelete 把值落到指定键：规整后为 Absent 则删除键，否则按原始形式写入
func writeOrDelete(value Value, c Container, key string) {
	if value.normalize().IsAbsent() {
		deleteTolerant(c, key)
		return
	}
	c.Set(key, value)
}

// SyncValueToExif 把值按需写入 Exif 标签。
// 已同步时不动文件，返回 false；否则执行写入或删除，返回 true。
func SyncValueToExif(value Value, c Container, key string) bool {
	if ValueSyncedWithExif(value, c, key) {
		return false
	}
	writeOrDelete(value, c, key)
	return true
}

// SyncValueToIptc 把值按需写入 IPTC 标签
func SyncValueToIptc(value Value, c Container, key string) bool {
	if ValueSyncedWithIptc(value, c, key) {
		return false
	}
	writeOrDelete(value, c, key)
	return true
}

// SyncValueToExifAndIptc 把值按需写入 Exif/IPTC 双标签字段。
// 一旦需要写入，数据只进 Exif；IPTC 键若存在则无条件删除，
// 这样历史遗留的 IPTC 副本会在每次写入时逐步迁移为 Exif 单份存储。
func SyncValueToExifAndIptc(value Value, c Container, exifKey, iptcKey string) bool {
	if ValueSyncedWithExifAndIptc(value, c, exifKey, iptcKey) {
		return false
	}
	writeOrDelete(value, c, exifKey)
	if containsKey(c.IptcKeys(), iptcKey) {
		deleteTolerant(c, iptcKey)
	}
	return true
}

// ReadValueFromExifAndIptc 读取 Exif/IPTC 双标签字段的合并视图。
// 按元数据工作组的建议，Exif 存在时以 Exif 为准，否则取 IPTC；都没有返回 Absent。
func ReadValueFromExifAndIptc(c Container, exifKey, iptcKey string) Value {
	if containsKey(c.ExifKeys(), exifKey) {
		return c.Get(exifKey)
	}
	if containsKey(c.IptcKeys(), iptcKey) {
		return c.Get(iptcKey)
	}
	return Absent
}
