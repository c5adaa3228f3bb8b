package common

import (
	"net/http"
	"reflect"

	"condo-notify-api/src/infrastructure/helper"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// CommonService groups cross-cutting request helpers shared by controllers.
type CommonService interface {
	AppendValidationErrors(ctx *gin.Context, ve validator.ValidationErrors, intr interface{})
}

type commonService struct {
	validator helper.Validator
}

func NewCommonService(validator helper.Validator) CommonService {
	return &commonService{
		validator: validator,
	}
}

func (service *commonService) AppendValidationErrors(ctx *gin.Context, ve validator.ValidationErrors, intr interface{}) {
	type ErrorMsg struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}
	out := make([]ErrorMsg, len(ve))

	for i, fe := range ve {
		name, _ := jsonTag(intr, fe.Field())
		out[i] = ErrorMsg{name, service.validator.GetErrorMsg(fe)}
	}
	ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errors": out})
}

func jsonTag(v interface{}, fieldName string) (string, bool) {
	t := reflect.TypeOf(v)
	sf, ok := t.FieldByName(fieldName)
	if !ok {
		return "", false
	}
	return sf.Tag.Lookup("json")
}
