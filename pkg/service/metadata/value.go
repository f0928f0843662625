/*
 * @Description: 元数据值的统一表示。同步引擎的所有比较和写入都以 Value 为通货，
 *               避免在引擎内部对字符串、整数、时间、列表做运行时类型探测。
 * @Author: 安知鱼
 * @Date: 2025-08-02 14:05:33
 * @LastEditTime: 2025-08-22 11:44:09
 * @LastEditors: 安知鱼
 */
package metadata

import (
	"fmt"
	"strings"
	"time"
)

// Kind 标识 Value 持有的值类型
type Kind int

const (
	// KindAbsent 表示值不存在（字段为空、标签缺失）
	KindAbsent Kind = iota
	// KindText 表示单个文本值
	KindText
	// KindInteger 表示整数值（如像素尺寸）
	KindInteger
	// KindDateTime 表示日期时间值（本地朴素时间，无时区语义）
	KindDateTime
	// KindTextList 表示文本列表（如关键字集合），比较时不关心顺序
	KindTextList
)

// Value 是元数据值的带标签联合体。零值即 Absent。
type Value struct {
	kind   Kind
	text   string
	number int
	moment time.Time
	items  []string
}

// Absent 是"值不存在"的哨兵
var Absent = Value{}

// Text 构造一个文本值
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Integer 构造一个整数值
func Integer(n int) Value {
	return Value{kind: KindInteger, number: n}
}

// DateTime 构造一个日期时间值
func DateTime(t time.Time) Value {
	return Value{kind: KindDateTime, moment: t}
}

// TextList 构造一个文本列表值
func TextList(items []string) Value {
	return Value{kind: KindTextList, items: items}
}

// Kind 返回值的类型标签
func (v Value) Kind() Kind {
	return v.kind
}

// IsAbsent 报告值是否不存在
func (v Value) IsAbsent() bool {
	return v.kind == KindAbsent
}

// Text 返回文本值；非文本类型返回空字符串
func (v Value) Text() string {
	if v.kind != KindText {
		return ""
	}
	return v.text
}

// Integer 返回整数值；非整数类型返回 0
func (v Value) Integer() int {
	if v.kind != KindInteger {
		return 0
	}
	return v.number
}

// Time 返回日期时间值；非时间类型返回零值
func (v Value) Time() time.Time {
	if v.kind != KindDateTime {
		return time.Time{}
	}
	return v.moment
}

// List 返回文本列表；非列表类型返回 nil
func (v Value) List() []string {
	if v.kind != KindTextList {
		return nil
	}
	return v.items
}

// normalize 在比较前规整一个值：
// 零长度的文本或列表折叠为 Absent，其余保持原样。
// 写入文件时用的仍是原始形式，规整只作用于比较。
func (v Value) normalize() Value {
	switch v.kind {
	case KindText:
		if v.text == "" {
			return Absent
		}
	case KindTextList:
		if len(v.items) == 0 {
			return Absent
		}
	}
	return v
}

// equal 比较两个值是否同步。
// 双方先各自规整；列表按无序集合比较，单值按类型逐一比较。
func (v Value) equal(other Value) bool {
	a := v.normalize()
	b := other.normalize()
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindAbsent:
		return true
	case KindText:
		return a.text == b.text
	case KindInteger:
		return a.number == b.number
	case KindDateTime:
		return a.moment.Equal(b.moment)
	case KindTextList:
		return sameSet(a.items, b.items)
	}
	return false
}

// sameSet 判断两个列表是否包含同一组元素（忽略顺序和重复）
func sameSet(a, b []string) bool {
	setA := make(map[string]struct{}, len(a))
	for _, item := range a {
		setA[item] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, item := range b {
		setB[item] = struct{}{}
	}
	if len(setA) != len(setB) {
		return false
	}
	for item := range setA {
		if _, ok := setB[item]; !ok {
			return false
		}
	}
	return true
}

// String 方便日志输出
func (v Value) String() string {
	switch v.kind {
	case KindAbsent:
		return "<absent>"
	case KindText:
		return v.text
	case KindInteger:
		return fmt.Sprintf("%d", v.number)
	case KindDateTime:
		return v.moment.Format("2006-01-02 15:04:05")
	case KindTextList:
		return "[" + strings.Join(v.items, ", ") + "]"
	}
	return "<unknown>"
}
