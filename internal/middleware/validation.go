package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/pkg/logger"
	"github.com/promptmaster/api/pkg/validation"
	"go.uber.org/zap"
)

const validatedBodyKey = "validated_body"

// maxBodyBytes caps request bodies read for validation.
const maxBodyBytes = 1 << 20

// ValidateRequestBody decodes the JSON body into a new T and validates it.
// Handlers read the result with Body. The raw body is restored for later readers.
func ValidateRequestBody[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		var bodyBytes []byte
		if c.Request.Body != nil {
			var err error
			bodyBytes, err = io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
			if err != nil {
				logger.GetLogger().Warn("Failed to read request body",
					zap.String("client_ip", c.ClientIP()),
					zap.String("path", c.Request.URL.Path),
					zap.Error(err),
				)
				c.AbortWithStatusJSON(http.StatusBadRequest,
					constants.BuildErrorResponse(constants.MsgBadRequest, nil))
				return
			}
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

		req := new(T)
		if len(bytes.TrimSpace(bodyBytes)) == 0 {
			bodyBytes = []byte("{}")
		}
		if err := json.Unmarshal(bodyBytes, req); err != nil {
			logger.GetLogger().Debug("Request body is not valid JSON",
				zap.String("path", c.Request.URL.Path),
				zap.Int("body_size", len(bodyBytes)),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusBadRequest,
				constants.BuildErrorResponse(constants.MsgBadRequest, "request body must be a JSON object"))
			return
		}

		if err := validation.Validator().Struct(req); err != nil {
			messages := validation.Messages(err)
			logger.GetLogger().Debug("Request validation failed",
				zap.String("client_ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
				zap.Strings("validation_errors", messages),
			)
			c.AbortWithStatusJSON(http.StatusBadRequest,
				constants.BuildErrorResponse(constants.MsgValidationFailed, messages))
			return
		}

		c.Set(validatedBodyKey, req)
		c.Next()
	}
}

// Body returns the request stored by ValidateRequestBody.
func Body[T any](c *gin.Context) (*T, bool) {
	v, ok := c.Get(validatedBodyKey)
	if !ok {
		return nil, false
	}
	req, ok := v.(*T)
	return req, ok
}
