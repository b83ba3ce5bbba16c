package document

import (
	"errors"
	"fmt"
)

// 预定义错误，可用 errors.Is 与 *Error 比较
var (
	ErrNotFound          = errors.New("file not found")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrParse             = errors.New("parse failed")
	ErrPagePartial       = errors.New("page extraction failed")
	ErrWrite             = errors.New("write failed")
)

// ErrorKind 文档错误分类
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindUnsupportedFormat
	KindParse
	KindPagePartial
	KindWrite
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindUnsupportedFormat:
		return ErrUnsupportedFormat
	case KindParse:
		return ErrParse
	case KindPagePartial:
		return ErrPagePartial
	case KindWrite:
		return ErrWrite
	default:
		return nil
	}
}

// Error 读取或写入文档时的错误
type Error struct {
	Kind ErrorKind
	Path string
	Page int // 仅 KindPagePartial 使用
	Err  error
}

func (e *Error) Error() string {
	msg := "document error"
	if s := e.Kind.sentinel(); s != nil {
		msg = s.Error()
	}
	if e.Page > 0 {
		msg = fmt.Sprintf("%s (page %d)", msg, e.Page)
	}
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap 返回底层错误
func (e *Error) Unwrap() error {
	return e.Err
}

// Is 让 errors.Is 能够匹配对应的预定义错误
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// ParseError 包装格式库的解析错误
func ParseError(path string, err error) error {
	return &Error{Kind: KindParse, Path: path, Err: err}
}

// WriteError 包装输出时的错误
func WriteError(path string, err error) error {
	return &Error{Kind: KindWrite, Path: path, Err: err}
}
