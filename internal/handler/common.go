package handler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"OnDuty/internal/middleware"
	"OnDuty/internal/model"
	"OnDuty/internal/service"
	"OnDuty/pkg/errors"
	"OnDuty/pkg/response"
)

// currentUser 根据 JWT 中的 public_id 加载当前用户
func currentUser(ctx context.Context, c *app.RequestContext) (*model.User, error) {
	publicID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		return nil, fmt.Errorf("user ID not found in context")
	}

	return service.Auth().UserByPublicID(ctx, publicID)
}

// requireAdmin 加载当前用户并校验管理员身份
func requireAdmin(ctx context.Context, c *app.RequestContext) (*model.User, error) {
	user, err := currentUser(ctx, c)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin {
		return nil, errors.Unauthorized
	}
	return user, nil
}

// pathID 解析路径中的数字 ID 参数
func pathID(c *app.RequestContext, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return id, nil
}

// abortUnauthenticated 用于 currentUser 失败时的统一出口
func abortUnauthenticated(ctx context.Context, c *app.RequestContext) {
	response.Error(ctx, c, errors.Unauthorized)
}
