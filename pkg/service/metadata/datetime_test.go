/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-03 10:55:09
 * @LastEditTime: 2025-08-23 11:20:46
 * @LastEditors: 安知鱼
 */
package metadata

import (
	"testing"
	"time"
)

var taken = time.Date(2007, 9, 28, 3, 0, 0, 0, time.UTC)

func TestDateTimeSyncedWithExifAndIptc(t *testing.T) {
	tests := []struct {
		name     string
		exif     Value
		iptcDate string
		iptcTime string
		value    Value
		want     bool
	}{
		{
			name:  "仅Exif在场且一致",
			exif:  DateTime(taken),
			value: DateTime(taken),
			want:  true,
		},
		{
			name:     "仅IPTC日期时间对在场且一致",
			iptcDate: "2007-09-28",
			iptcTime: "03:00:00",
			value:    DateTime(taken),
			want:     true,
		},
		{
			name:     "孤立的IPTC日期不可用",
			iptcDate: "2007-09-28",
			value:    DateTime(taken),
			want:     false,
		},
		{
			name:     "孤立的IPTC时间不可用",
			iptcTime: "03:00:00",
			value:    DateTime(taken),
			want:     false,
		},
		{
			name:     "孤立的IPTC日期且值为空视为同步",
			iptcDate: "2007-09-28",
			value:    Absent,
			want:     true,
		},
		{
			name:  "亚秒精度被忽略",
			exif:  DateTime(taken),
			value: DateTime(taken.Add(500 * time.Millisecond)),
			want:  true,
		},
		{
			name:  "时区偏移被剥除后按墙上时间比较",
			exif:  DateTime(taken),
			value: DateTime(time.Date(2007, 9, 28, 3, 0, 0, 0, time.FixedZone("CST", 8*3600))),
			want:  true,
		},
		{
			name:     "双方在场但IPTC不一致",
			exif:     DateTime(taken),
			iptcDate: "2007-09-28",
			iptcTime: "04:00:00",
			value:    DateTime(taken),
			want:     false,
		},
		{
			name:  "双方缺失且值为空",
			value: Absent,
			want:  true,
		},
		{
			name:  "文件有值但字段为空",
			exif:  DateTime(taken),
			value: Absent,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newFakeContainer()
			if !tt.exif.IsAbsent() {
				c.Set(KeyExifDateTimeOriginal, tt.exif)
			}
			if tt.iptcDate != "" {
				c.Set(KeyIptcDateCreated, Text(tt.iptcDate))
			}
			if tt.iptcTime != "" {
				c.Set(KeyIptcTimeCreated, Text(tt.iptcTime))
			}
			got := DateTimeSyncedWithExifAndIptc(tt.value, c,
				KeyExifDateTimeOriginal, KeyIptcDateCreated, KeyIptcTimeCreated)
			if got != tt.want {
				t.Errorf("DateTimeSyncedWithExifAndIptc() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSyncDateTimeToExifAndIptc(t *testing.T) {
	t.Run("写入Exif并迁移删除IPTC", func(t *testing.T) {
		c := newFakeContainer()
		c.Set(KeyIptcDateCreated, Text("2001-01-01"))
		c.Set(KeyIptcTimeCreated, Text("12:00:00"))

		if !SyncDateTimeToExifAndIptc(DateTime(taken), c,
			KeyExifDateTimeOriginal, KeyIptcDateCreated, KeyIptcTimeCreated) {
			t.Fatal("不一致时应当报告修改")
		}
		if got := c.Get(KeyExifDateTimeOriginal); !got.Time().Equal(taken) {
			t.Errorf("Exif 时间 = %v, want %v", got.Time(), taken)
		}
		if containsKey(c.IptcKeys(), KeyIptcDateCreated) || containsKey(c.IptcKeys(), KeyIptcTimeCreated) {
			t.Error("IPTC 日期时间键应当已被删除")
		}
	})

	t.Run("空值删除Exif组合标签", func(t *testing.T) {
		c := newFakeContainer()
		c.Set(KeyExifDateTimeOriginal, DateTime(taken))
		if !SyncDateTimeToExifAndIptc(Absent, c,
			KeyExifDateTimeOriginal, KeyIptcDateCreated, KeyIptcTimeCreated) {
			t.Fatal("字段为空而文件有值，应当报告修改")
		}
		if containsKey(c.ExifKeys(), KeyExifDateTimeOriginal) {
			t.Error("Exif 标签应当已被删除")
		}
	})

	t.Run("已同步时是无操作", func(t *testing.T) {
		c := newFakeContainer()
		c.Set(KeyExifDateTimeOriginal, DateTime(taken))
		if SyncDateTimeToExifAndIptc(DateTime(taken), c,
			KeyExifDateTimeOriginal, KeyIptcDateCreated, KeyIptcTimeCreated) {
			t.Error("已同步时不应报告修改")
		}
	})
}

func TestReadDateTimeFromExifAndIptc(t *testing.T) {
	t.Run("IPTC日期时间对合并读取", func(t *testing.T) {
		c := newFakeContainer()
		c.Set(KeyIptcDateCreated, Text("2007-09-28"))
		c.Set(KeyIptcTimeCreated, Text("03:00:00"))
		got := ReadDateTimeFromExifAndIptc(c,
			KeyExifDateTimeOriginal, KeyIptcDateCreated, KeyIptcTimeCreated)
		if !got.Time().Equal(taken) {
			t.Errorf("合并读取 = %v, want %v", got.Time(), taken)
		}
	})

	t.Run("孤立的IPTC日期返回缺失", func(t *testing.T) {
		c := newFakeContainer()
		c.Set(KeyIptcDateCreated, Text("2007-09-28"))
		got := ReadDateTimeFromExifAndIptc(c,
			KeyExifDateTimeOriginal, KeyIptcDateCreated, KeyIptcTimeCreated)
		if !got.IsAbsent() {
			t.Errorf("孤立日期应当返回缺失，实际 %v", got)
		}
	})

	t.Run("Exif优先于IPTC", func(t *testing.T) {
		c := newFakeContainer()
		c.Set(KeyExifDateTimeOriginal, DateTime(taken))
		c.Set(KeyIptcDateCreated, Text("2001-01-01"))
		c.Set(KeyIptcTimeCreated, Text("12:00:00"))
		got := ReadDateTimeFromExifAndIptc(c,
			KeyExifDateTimeOriginal, KeyIptcDateCreated, KeyIptcTimeCreated)
		if !got.Time().Equal(taken) {
			t.Errorf("合并读取 = %v, want %v", got.Time(), taken)
		}
	})

	t.Run("IPTC时间携带时区偏移被剥除", func(t *testing.T) {
		c := newFakeContainer()
		c.Set(KeyIptcDateCreated, Text("2007-09-28"))
		c.Set(KeyIptcTimeCreated, Text("03:00:00+08:00"))
		got := ReadDateTimeFromExifAndIptc(c,
			KeyExifDateTimeOriginal, KeyIptcDateCreated, KeyIptcTimeCreated)
		if !got.Time().Equal(taken) {
			t.Errorf("合并读取 = %v, want %v", got.Time(), taken)
		}
	})
}
