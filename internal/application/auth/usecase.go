package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"

	"github.com/jhoicas/custodia-api/internal/application/authz"
	"github.com/jhoicas/custodia-api/internal/application/dto"
	"github.com/jhoicas/custodia-api/internal/domain"
	"github.com/jhoicas/custodia-api/internal/domain/entity"
	"github.com/jhoicas/custodia-api/internal/domain/permission"
	"github.com/jhoicas/custodia-api/internal/domain/repository"
	"github.com/jhoicas/custodia-api/pkg/jwt"
	"github.com/jhoicas/custodia-api/pkg/logger"
)

// DefaultSessionTTL vigencia de una sesión desde el login.
const DefaultSessionTTL = 24 * time.Hour

// MinPasswordLength longitud mínima de una contraseña.
const MinPasswordLength = 6

// dummyHash se compara cuando el email no existe para que el tiempo de respuesta no lo delate.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("custodia-dummy-password"), bcrypt.DefaultCost)

// JWTConfig configuración para generación de tokens y sesiones.
type JWTConfig struct {
	Secret     string
	Issuer     string
	SessionTTL time.Duration
}

// AuthUseCase identidad y sesiones: login, validación de token, logout e invalidación forzada.
// El token es un JWT cuyo jti apunta a una fila de sesión; borrar la fila revoca el token.
type AuthUseCase struct {
	userRepo    repository.UserRepository
	permRepo    repository.PermissionRepository
	sessionRepo repository.SessionRepository
	jwtCfg      JWTConfig
	log         *logger.Logger
	now         func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	userRepo repository.UserRepository,
	permRepo repository.PermissionRepository,
	sessionRepo repository.SessionRepository,
	jwtCfg JWTConfig,
	log *logger.Logger,
) *AuthUseCase {
	if jwtCfg.SessionTTL <= 0 {
		jwtCfg.SessionTTL = DefaultSessionTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AuthUseCase{
		userRepo:    userRepo,
		permRepo:    permRepo,
		sessionRepo: sessionRepo,
		jwtCfg:      jwtCfg,
		log:         log,
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *AuthUseCase) WithClock(now func() time.Time) *AuthUseCase {
	uc.now = now
	return uc
}

// NormalizeEmail recorta y aplica case folding al email.
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

// HashPassword valida la longitud mínima y devuelve el hash bcrypt.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", domain.ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// LoginResult token emitido junto con la sesión, el usuario y sus permisos.
type LoginResult struct {
	Token       string
	Session     *entity.Session
	User        *entity.User
	Permissions permission.Set
}

// Login verifica email/password, crea la sesión (24h por defecto) y firma el token.
// Email desconocido o password incorrecta -> ErrInvalidCredentials.
// Password correcta de un usuario desactivado -> ErrForbidden y no se crea sesión.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest, ip, userAgent string) (*LoginResult, error) {
	email := NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(in.Password))
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, domain.ErrForbidden
	}

	// Los permisos se leen antes de crear la sesión para no dejar una sesión huérfana.
	perms, err := uc.permRepo.Get(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load permissions: %w", err)
	}

	now := uc.now()
	session := &entity.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		IP:        ip,
		UserAgent: userAgent,
		ExpiresAt: now.Add(uc.jwtCfg.SessionTTL),
		CreatedAt: now,
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, uc.jwtCfg.Issuer, user.ID, user.Role, session.ID, now, session.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	if err := uc.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := uc.userRepo.TouchLastAccess(ctx, user.ID, now); err != nil {
		uc.log.Warn().Err(err).Str("user_id", user.ID).Msg("no se pudo registrar último acceso")
	} else {
		user.LastAccessAt = &now
	}
	return &LoginResult{Token: token, Session: session, User: user, Permissions: perms.Complete()}, nil
}

// Validate resuelve el token a un Principal. Firma inválida, token expirado, sesión inexistente
// o vencida, y usuario inexistente o desactivado devuelven ErrUnauthenticated.
// Los permisos se leen en cada llamada: un cambio de permisos aplica en la siguiente petición.
func (uc *AuthUseCase) Validate(ctx context.Context, token string) (*authz.Principal, error) {
	now := uc.now()
	claims, err := jwt.Parse(uc.jwtCfg.Secret, token, now)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	session, err := uc.sessionRepo.GetByID(ctx, claims.SessionID())
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserID != claims.UserID {
		return nil, domain.ErrUnauthenticated
	}
	if session.Expired(now) {
		if err := uc.sessionRepo.Delete(ctx, session.ID); err != nil {
			uc.log.Warn().Err(err).Str("session_id", session.ID).Msg("no se pudo borrar sesión expirada")
		}
		return nil, domain.ErrUnauthenticated
	}
	user, err := uc.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active {
		return nil, domain.ErrUnauthenticated
	}
	perms, err := uc.permRepo.Get(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load permissions: %w", err)
	}
	return &authz.Principal{User: user, Permissions: perms, SessionID: session.ID}, nil
}

// Logout borra la sesión del token. Un token válido cuya sesión ya no existe no es error.
func (uc *AuthUseCase) Logout(ctx context.Context, token string) error {
	claims, err := jwt.Parse(uc.jwtCfg.Secret, token, uc.now())
	if err != nil {
		return domain.ErrUnauthenticated
	}
	return uc.sessionRepo.Delete(ctx, claims.SessionID())
}

// ForceInvalidateAll borra todas las sesiones del usuario; sus tokens dejan de validar.
func (uc *AuthUseCase) ForceInvalidateAll(ctx context.Context, userID string) (int64, error) {
	n, err := uc.sessionRepo.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("delete sessions: %w", err)
	}
	uc.log.Info().Str("user_id", userID).Int64("sessions", n).Msg("sesiones invalidadas")
	return n, nil
}

// ChangeOwnPassword cambia la contraseña del usuario autenticado tras verificar la actual.
func (uc *AuthUseCase) ChangeOwnPassword(ctx context.Context, in dto.ChangePasswordRequest) error {
	p, err := authz.Authenticated(ctx)
	if err != nil {
		return err
	}
	user, err := uc.userRepo.GetByID(ctx, p.UserID())
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return domain.ErrInvalidCredentials
	}
	hash, err := HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	return uc.userRepo.UpdatePassword(ctx, user.ID, hash, uc.now())
}

// PurgeExpired borra las sesiones vencidas. Lo llama un barrido periódico.
func (uc *AuthUseCase) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := uc.sessionRepo.DeleteExpired(ctx, uc.now())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return n, nil
}
