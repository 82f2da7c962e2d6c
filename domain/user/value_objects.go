package user

import (
	"regexp"
	"strings"

	"hexagonal/domain/shared"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// Kind 用户标识符的标记类型
type Kind struct{}

func (Kind) IDKind() string { return "UserID" }

// ID 用户标识符：数值型，由存储侧序列在首次保存时分配
type ID = shared.NumericID[Kind]

// NewID 从原始整数创建用户标识符
func NewID(v int64) ID { return shared.NewNumericID[Kind](v) }

// ParseID 从十进制文本创建用户标识符
func ParseID(s string) (ID, error) { return shared.ParseNumericID[Kind](s) }

// Email 值对象 - 邮箱地址（已规范化为小写）
type Email struct {
	shared.SimpleValueObject[string]
}

// NewEmail 创建Email值对象
func NewEmail(email string) (Email, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegex.MatchString(email) {
		return Email{}, NewInvalidEmailError(email)
	}
	v, err := shared.NewSimpleValueObject(email)
	if err != nil {
		return Email{}, err
	}
	return Email{v}, nil
}

// Value 获取邮箱文本
func (e Email) Value() string { return e.Unwrap() }

// Equals 只与另一个 Email 比较
func (e Email) Equals(other any) bool { return shared.ValueEquals(e, other) }
