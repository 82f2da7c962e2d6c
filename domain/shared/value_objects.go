package shared

import (
	"fmt"
	"strings"
)

// Money 值对象 - 表示金额
// 以最小货币单位（分）存储，避免浮点误差
type Money struct {
	amount   int64
	currency string
}

// NewMoney 创建新的Money值对象
func NewMoney(amount int64, currency string) (Money, error) {
	if amount < 0 {
		return Money{}, NewInvalidArgumentError("Money", "amount", "amount cannot be negative")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return Money{}, NewInvalidArgumentError("Money", "currency", fmt.Sprintf("invalid currency code %q", currency))
	}
	return Money{amount: amount, currency: currency}, nil
}

// Amount 获取金额数量
func (m Money) Amount() int64 { return m.amount }

// Currency 获取货币类型
func (m Money) Currency() string { return m.currency }

// IsZero 未初始化的 Money
func (m Money) IsZero() bool { return m.currency == "" }

// Add 金额相加，返回新的Money值对象
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, NewInvalidArgumentError("Money", "currency", "cannot add money with different currencies")
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

// Multiply 金额乘以数量
func (m Money) Multiply(quantity int) Money {
	return Money{amount: m.amount * int64(quantity), currency: m.currency}
}

// IsGreaterThanOrEqual 比较金额是否大于或等于另一个金额
func (m Money) IsGreaterThanOrEqual(other Money) bool {
	return m.amount >= other.amount
}

// Equals 比较两个Money值对象是否相等
func (m Money) Equals(other any) bool {
	that, ok := other.(Money)
	return ok && m == that
}

func (m Money) String() string {
	return fmt.Sprintf("%d.%02d %s", m.amount/100, m.amount%100, m.currency)
}
