package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// 单号前缀
const (
	PrefixManufacturingOrder = "MO"
	PrefixWorkOrder          = "WO"
)

const orderDateLayout = "20060102"

// OrderNumberPattern 同一天同一前缀的单号 LIKE 模板（"MO-20240101-%"）
func OrderNumberPattern(prefix string, today time.Time) string {
	return fmt.Sprintf("%s-%s-%%", prefix, today.Format(orderDateLayout))
}

// NextOrderNumber 生成日内递增单号，格式 {PREFIX}-{YYYYMMDD}-{NNNN}
//
// last 为当天该前缀下已存在的最大单号，空串表示当天首单，从 0001 开始。
// 日期变更即重置计数。读最大值再加一的模式在并发创建下有竞态，
// 调用方必须在同一事务内对 (前缀, 日期) 作用域加锁后再调用（见 OrderRepository）
func NextOrderNumber(prefix string, today time.Time, last string) (string, error) {
	seq := 1
	if last != "" {
		parts := strings.Split(last, "-")
		n, err := strconv.Atoi(parts[len(parts)-1])
		if err != nil {
			return "", fmt.Errorf("parse order number %q: %w", last, err)
		}
		seq = n + 1
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, today.Format(orderDateLayout), seq), nil
}
