/*
 * @Description: 图片元数据容器的能力契约。同步引擎只依赖这个接口，
 *               具体的编解码实现（dsoprea 系列库）在 internal/infra/imagemeta 注入。
 * @Author: 安知鱼
 * @Date: 2025-08-02 14:30:51
 * @LastEditTime: 2025-08-22 15:02:13
 * @LastEditors: 安知鱼
 */
package metadata

// Container 表示一个已打开并完整解析的图片元数据字典。
// 所有读写都经过按键的 Get/Set/Delete 和键枚举；修改缓存在内存中，
// 直到 Flush 显式落盘。Flush 失败（写错误）与打开失败（读错误）是
// 两类独立的 I/O 故障，由 Codec.Open 和 Flush 分别报告。
type Container interface {
	// Get 返回指定键的值；键不存在时返回 Absent
	Get(key string) Value

	// Set 写入指定键的值（缓存在内存，Flush 时落盘）
	Set(key string, value Value)

	// Delete 删除指定键。键不存在视为成功。
	// 某些底层实现对个别键类型的删除会误报类型错误，
	// 引擎一律通过 deleteTolerant 吞掉这类错误。
	Delete(key string) error

	// ExifKeys 枚举当前存在的全部 Exif 键
	ExifKeys() []string

	// IptcKeys 枚举当前存在的全部 IPTC 键
	IptcKeys() []string

	// Flush 把缓存的修改写回文件
	Flush() error

	// Thumbnail 返回内嵌缩略图的 JPEG 字节；
	// 没有内嵌缩略图时返回 constant.ErrNoThumbnail
	Thumbnail() ([]byte, error)

	// SetThumbnail 设置内嵌缩略图（缓存在内存，Flush 时落盘）
	SetThumbnail(data []byte)
}

// Codec 负责打开图片文件并解析出元数据容器。
// 文件无法解析时返回读错误（constant.ErrMetadataRead 包装）。
type Codec interface {
	Open(path string) (Container, error)
}

// deleteTolerant 删除一个键并吞掉所有错误。
// 底层库对部分键类型的删除会抛出伪类型错误，语义上等价于删除成功；
// 这个变通集中在这一处，调用方一律视作成功。
func deleteTolerant(c Container, key string) {
	_ = c.Delete(key)
}

// containsKey 报告键列表中是否含有指定键
func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
