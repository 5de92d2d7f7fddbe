package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// BindJSON разбирает тело запроса и проверяет теги validate
func BindJSON(c fiber.Ctx, dst any) error {
	if err := c.Bind().Body(dst); err != nil {
		return apperr.InvalidInput("Datos de solicitud inválidos")
	}
	return ValidateStruct(dst)
}

// ValidateStruct проверяет структуру и переводит первую ошибку в InvalidInput
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			return apperr.InvalidInput(fmt.Sprintf("El campo %s es requerido", field))
		case "min", "max", "gte", "lte", "gt":
			return apperr.InvalidInput(fmt.Sprintf("El campo %s está fuera de rango", field))
		case "oneof":
			return apperr.InvalidInput(fmt.Sprintf("Valor inválido para %s", field))
		default:
			return apperr.InvalidInput(fmt.Sprintf("El campo %s es inválido", field))
		}
	}
	return apperr.InvalidInput("Datos de solicitud inválidos")
}

// ParamID читает положительный числовой параметр маршрута
func ParamID(c fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.InvalidInput("ID inválido")
	}
	return id, nil
}

// QueryInt читает числовой query-параметр; при ошибке возвращает значение по умолчанию
func QueryInt(c fiber.Ctx, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 0 {
		return def
	}
	return v
}
