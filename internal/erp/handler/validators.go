package handler

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/newNamejj/mobile-inventory-system/internal/erp/entity"
)

// RegisterValidators 在 gin 的校验引擎上注册业务校验规则
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
	}
	return registerRules(v)
}

func registerRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"order_status":   oneOf(entity.OrderStatusPending, entity.OrderStatusPartial, entity.OrderStatusCompleted, entity.OrderStatusCancelled),
		"payment_method": paymentMethod,
		"rebate_status":  oneOf(entity.RebateStatusPending, entity.RebateStatusConfirmed, entity.RebateStatusRedeemed, entity.RebateStatusCancelled),
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

// paymentMethod 付款方式为自由文本，非空且不超过 20 个字符
func paymentMethod(fl validator.FieldLevel) bool {
	v := strings.TrimSpace(fl.Field().String())
	return v != "" && utf8.RuneCountInString(v) <= entity.PaymentMethodMaxLen
}

func oneOf(values ...string) validator.Func {
	allowed := make(map[string]bool, len(values))
	for _, v := range values {
		allowed[v] = true
	}
	return func(fl validator.FieldLevel) bool {
		return allowed[fl.Field().String()]
	}
}
