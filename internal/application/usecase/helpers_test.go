package usecase_test

import (
	"context"

	"github.com/jhoicas/custodia-api/internal/application/authz"
	"github.com/jhoicas/custodia-api/internal/domain/entity"
	"github.com/jhoicas/custodia-api/internal/domain/permission"
)

func adminCtx() context.Context {
	return authz.WithPrincipal(context.Background(), &authz.Principal{
		User: &entity.User{ID: "admin-1", Role: entity.RoleAdmin, Active: true},
	})
}

func userCtx(user *entity.User, set permission.Set) context.Context {
	return authz.WithPrincipal(context.Background(), &authz.Principal{User: user, Permissions: set})
}
