package entity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// 订单状态
const (
	OrderStatusPending   = "pending"
	OrderStatusPartial   = "partial"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// 单号前缀
const (
	PurchaseOrderPrefix = "PO"
	SalesOrderPrefix    = "SO"
)

const maxOrderSeq = 9999

// ErrOrderSeqExhausted 当日单号用尽
var ErrOrderSeqExhausted = errors.New("daily order number sequence exhausted")

// OrderNumberPrefix 返回 {PO|SO}{YYYYMMDD}
func OrderNumberPrefix(kind string, day time.Time) string {
	return kind + day.Format("20060102")
}

// NextOrderNumber 根据当日最大单号生成下一个单号，last 为空时从 0001 开始
func NextOrderNumber(prefix, last string) (string, error) {
	seq := 0
	if last != "" {
		n, err := ParseOrderSeq(prefix, last)
		if err != nil {
			return "", err
		}
		seq = n
	}
	seq++
	if seq > maxOrderSeq {
		return "", ErrOrderSeqExhausted
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

// ParseOrderSeq 解析单号末尾的四位流水号
func ParseOrderSeq(prefix, number string) (int, error) {
	if !strings.HasPrefix(number, prefix) || len(number) != len(prefix)+4 {
		return 0, fmt.Errorf("order number %q does not match prefix %q", number, prefix)
	}
	seq, err := strconv.Atoi(number[len(prefix):])
	if err != nil {
		return 0, fmt.Errorf("order number %q: %w", number, err)
	}
	return seq, nil
}

// FulfilmentStatus 按明细的订购数量与已履约数量推导订单状态
// 全部履约为 completed，否则为 partial
func FulfilmentStatus(ordered, fulfilled []int) string {
	for i := range ordered {
		if fulfilled[i] < ordered[i] {
			return OrderStatusPartial
		}
	}
	return OrderStatusCompleted
}

// CanFulfil 待处理或部分履约的订单才能继续收发货
func CanFulfil(status string) bool {
	return status == OrderStatusPending || status == OrderStatusPartial
}

// CanCancel 只有未开始履约的订单可以取消
func CanCancel(status string) bool {
	return status == OrderStatusPending
}
