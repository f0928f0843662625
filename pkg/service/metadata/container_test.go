/*
 * @Description: 测试用的内存元数据容器
 * @Author: 安知鱼
 * @Date: 2025-08-03 09:12:27
 * @LastEditTime: 2025-08-23 10:40:18
 * @LastEditors: 安知鱼
 */
package metadata

import (
	"errors"
	"sort"
	"strings"

	"github.com/anzhiyu-c/photasm/pkg/constant"
)

// fakeContainer 是 Container 的内存实现，供引擎测试使用。
// 可以按键模拟底层库删除时误报的类型错误（删除实际生效但返回错误）。
type fakeContainer struct {
	exif map[string]Value
	iptc map[string]Value

	deleteQuirkKeys map[string]bool
	deletedKeys     []string

	flushErr   error
	flushCount int

	thumb []byte
}

func newFakeContainer() *fakeContainer {
	return &fakeContainer{
		exif:            make(map[string]Value),
		iptc:            make(map[string]Value),
		deleteQuirkKeys: make(map[string]bool),
	}
}

func (c *fakeContainer) isExifKey(key string) bool {
	return strings.HasPrefix(key, "Exif.")
}

func (c *fakeContainer) Get(key string) Value {
	if c.isExifKey(key) {
		if v, ok := c.exif[key]; ok {
			return v
		}
		return Absent
	}
	if v, ok := c.iptc[key]; ok {
		return v
	}
	return Absent
}

func (c *fakeContainer) Set(key string, value Value) {
	if c.isExifKey(key) {
		c.exif[key] = value
		return
	}
	c.iptc[key] = value
}

func (c *fakeContainer) Delete(key string) error {
	c.deletedKeys = append(c.deletedKeys, key)
	if c.isExifKey(key) {
		delete(c.exif, key)
	} else {
		delete(c.iptc, key)
	}
	if c.deleteQuirkKeys[key] {
		return errors.New("invalid type: cannot delete this key")
	}
	return nil
}

func (c *fakeContainer) ExifKeys() []string {
	keys := make([]string, 0, len(c.exif))
	for k := range c.exif {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *fakeContainer) IptcKeys() []string {
	keys := make([]string, 0, len(c.iptc))
	for k := range c.iptc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *fakeContainer) Flush() error {
	c.flushCount++
	return c.flushErr
}

func (c *fakeContainer) Thumbnail() ([]byte, error) {
	if c.thumb == nil {
		return nil, constant.ErrNoThumbnail
	}
	return c.thumb, nil
}

func (c *fakeContainer) SetThumbnail(data []byte) {
	c.thumb = data
}

var _ Container = (*fakeContainer)(nil)
