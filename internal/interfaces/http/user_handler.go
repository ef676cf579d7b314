package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/custodia-api/internal/application/authz"
	"github.com/jhoicas/custodia-api/internal/application/dto"
	"github.com/jhoicas/custodia-api/internal/application/usecase"
	"github.com/jhoicas/custodia-api/internal/domain/permission"
)

// UserHandler administración de usuarios y de su matriz de permisos.
type UserHandler struct {
	uc    *usecase.UserUseCase
	perms *authz.PermissionUseCase
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *usecase.UserUseCase, perms *authz.PermissionUseCase) *UserHandler {
	return &UserHandler{uc: uc, perms: perms}
}

// Create godoc
// @Summary      Crear usuario con los permisos por defecto de su rol
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateUserRequest  true  "Datos del usuario"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.Email == "" || in.Password == "" || in.Name == "" || in.Role == "" {
		return validation(c, "email, password, name y role son requeridos")
	}
	if !permission.ValidRole(in.Role) {
		return validation(c, "role debe ser admin, usuario o visitante")
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar usuarios
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.UserResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener usuario con sus permisos
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del usuario"
// @Success      200  {object}  dto.UserResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/{id} [get]
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar nombre, rol o estado (el rol no modifica permisos)
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del usuario"
// @Param        body  body  dto.UpdateUserRequest  true  "Cambios"
// @Success      200   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Desactivar usuario y cerrar sus sesiones
// @Tags         users
// @Security     Bearer
// @Param        id   path  string  true  "ID del usuario"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.uc.Deactivate(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Activate godoc
// @Summary      Reactivar usuario
// @Tags         users
// @Security     Bearer
// @Param        id   path  string  true  "ID del usuario"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/{id}/activate [put]
func (h *UserHandler) Activate(c *fiber.Ctx) error {
	if err := h.uc.Activate(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetPassword godoc
// @Summary      Fijar contraseña de un usuario (cierra sus sesiones)
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Param        id    path  string  true  "ID del usuario"
// @Param        body  body  dto.SetPasswordRequest  true  "Contraseña nueva"
// @Success      204
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/users/{id}/password [put]
func (h *UserHandler) SetPassword(c *fiber.Ctx) error {
	var in dto.SetPasswordRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.uc.SetPassword(c.UserContext(), c.Params("id"), in); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Roles godoc
// @Summary      Roles disponibles con sus permisos por defecto
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.RoleResponse
// @Router       /api/users/roles [get]
func (h *UserHandler) Roles(c *fiber.Ctx) error {
	out, err := h.uc.Roles(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetPermissions godoc
// @Summary      Permisos de un usuario
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del usuario"
// @Success      200  {object}  dto.PermissionsResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/{id}/permissions [get]
func (h *UserHandler) GetPermissions(c *fiber.Ctx) error {
	id := c.Params("id")
	set, err := h.perms.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.PermissionsResponse{UserID: id, Permissions: set.ToMap()})
}

// ReplacePermissions godoc
// @Summary      Reemplazar el conjunto completo de permisos
// @Description  Las acciones ausentes quedan en false. Un nombre desconocido devuelve 400.
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del usuario"
// @Param        body  body  dto.PermissionsRequest  true  "Mapa acción -> permitido"
// @Success      200   {object}  dto.PermissionsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/users/{id}/permissions [put]
func (h *UserHandler) ReplacePermissions(c *fiber.Ctx) error {
	var in dto.PermissionsRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.Permissions == nil {
		return validation(c, "permissions es requerido")
	}
	id := c.Params("id")
	set, err := h.perms.Replace(c.UserContext(), id, in.Permissions)
	if err != nil {
		return err
	}
	return c.JSON(dto.PermissionsResponse{UserID: id, Permissions: set.ToMap()})
}

// ResetPermissions godoc
// @Summary      Restablecer los permisos por defecto del rol actual
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del usuario"
// @Success      200  {object}  dto.PermissionsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/{id}/permissions/reset [post]
func (h *UserHandler) ResetPermissions(c *fiber.Ctx) error {
	id := c.Params("id")
	set, err := h.perms.Reset(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.PermissionsResponse{UserID: id, Permissions: set.ToMap()})
}
