// Package datekey 提供日历日标识（YYYY-MM-DD）的生成与解析。
//
// 存在两种语义不同的日期键：
//   - LocalDayKey 使用 t 自身所在时区的年月日，用于周/日分组与持久化；
//   - ISODayKey 先转换到 UTC 再取日期，用于"是否今天"的判断。
//
// 东八区等 UTC 以东的时区在午夜附近两者结果不同，调用方需按用途选择，不要混用。
package datekey

import (
	"fmt"
	"strings"
	"time"
)

// Layout 为日期键格式
const Layout = "2006-01-02"

// LocalDayKey 返回 t 所在时区的日历日
func LocalDayKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// ISODayKey 返回 t 对应 UTC 时间的日历日
func ISODayKey(t time.Time) string {
	return t.UTC().Format(Layout)
}

// LocalMidnight 将 t 归一化到所在时区的零点
func LocalMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseLocalDayKey 在 loc 时区内解析日期键，返回当天零点
func ParseLocalDayKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(Layout, strings.TrimSpace(key), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day key %q: %w", key, err)
	}
	return t, nil
}
