/**
 * 工具类:请求校验
 * @author: sun977
 * @date: 2025.12.06
 * @description: 基于 validator/v10 的结构体校验，字段名取 json 标签
 *   校验失败统一转换为 *system.ValidationError，由处理器映射为 400
 */
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"neomonitor/internal/model/system"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return instance
}

// Struct 校验结构体，返回第一条字段错误
func Struct(v interface{}) error {
	err := get().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return toValidationError(fieldErrs[0])
	}
	return system.NewValidationError(err.Error())
}

// Details 把全部字段错误转换为错误明细
func Details(err error) []system.ErrorDetail {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}
	out := make([]system.ErrorDetail, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		ve := toValidationError(fe)
		out = append(out, system.ErrorDetail{Field: ve.Field, Message: ve.Message})
	}
	return out
}

// Raw 返回未转换的校验结果
func Raw(v interface{}) error {
	return get().Struct(v)
}

func toValidationError(fe validator.FieldError) *system.ValidationError {
	field := fieldPath(fe)
	var msg string
	switch fe.Tag() {
	case "required", "required_if", "required_without":
		msg = "不能为空"
	case "min", "gte":
		msg = fmt.Sprintf("不能小于 %s", fe.Param())
	case "max", "lte":
		msg = fmt.Sprintf("不能大于 %s", fe.Param())
	case "gt":
		msg = fmt.Sprintf("必须大于 %s", fe.Param())
	case "oneof":
		msg = fmt.Sprintf("必须是 [%s] 之一", fe.Param())
	case "len":
		msg = fmt.Sprintf("长度必须为 %s", fe.Param())
	default:
		msg = fmt.Sprintf("校验规则 %s 未通过", fe.Tag())
	}
	return system.NewFieldValidationError(field, msg)
}

// fieldPath 去掉顶层结构体名，如 ActionRequest.conditions[0].operator -> conditions[0].operator
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
