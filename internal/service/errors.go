package service

import (
	"errors"
	"fmt"
)

// ValidationError 用户输入校验失败：提示给用户，操作中止，不产生部分写入
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation 判断是否为输入校验错误
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrGenerationInProgress 同类生成请求已在执行中（单槽防抖）
var ErrGenerationInProgress = errors.New("generation already in progress")
