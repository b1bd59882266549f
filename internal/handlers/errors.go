package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"io.winapps.babytracker/internal/domain"
)

const (
	actionSave = "保存失败"
	actionLoad = "加载失败"
)

// errorStatus translates err into a status code and the message shown to the user.
func errorStatus(err error, action string) (int, string) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.Is(err, domain.ErrIncorrectPassword):
		return http.StatusUnauthorized, "密码错误，请重试"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "请先输入密码"
	case errors.Is(err, domain.ErrInFlight):
		return http.StatusConflict, "操作进行中，请稍候"
	case errors.Is(err, domain.ErrUpload):
		return http.StatusBadGateway, "上传失败，请重试"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "记录不存在"
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, action + ": 记录已存在"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, action + ": 数据无效"
	}
	return http.StatusInternalServerError, action + ": " + err.Error()
}

func respondError(c *gin.Context, err error, action string) {
	status, msg := errorStatus(err, action)
	c.JSON(status, gin.H{"error": msg})
}
