// Package controllers handles HTTP request handling
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yigit/internflow/internal/app/models/dto"
	"github.com/yigit/internflow/internal/middleware"
	"github.com/yigit/internflow/internal/pkg/validation"
)

var errInvalidID = errors.New("invalid id")

// parseIDParam parses an ID parameter from the request path
func parseIDParam(ctx *gin.Context, paramName string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(paramName), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// requireID parses a path ID and writes a 400 when it is malformed
func requireID(ctx *gin.Context, paramName, what string) (int64, bool) {
	id, err := parseIDParam(ctx, paramName)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeResourceInvalid, "Invalid "+what+" ID").WithField(paramName),
		})
		return 0, false
	}
	return id, true
}

// actorID returns the authenticated caller or writes a 401
func actorID(ctx *gin.Context) (int64, bool) {
	id, ok := middleware.UserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required"),
		})
		return 0, false
	}
	return id, true
}

// normalizer is implemented by requests that clean their input before validation
type normalizer interface {
	Normalize()
}

// bindJSON decodes and validates the request body, writing a 400 on failure
func bindJSON(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeResourceInvalid, "Invalid request format").WithDetails(err.Error()),
		})
		return false
	}
	if n, ok := req.(normalizer); ok {
		n.Normalize()
	}
	if err := validation.Struct(req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return false
	}
	return true
}

// bindQuery decodes query parameters, writing a 400 on failure
func bindQuery(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindQuery(req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeResourceInvalid, "Invalid query parameters").WithDetails(err.Error()),
		})
		return false
	}
	return true
}
