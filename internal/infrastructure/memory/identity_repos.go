package memory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/custodia-api/internal/domain"
	"github.com/jhoicas/custodia-api/internal/domain/entity"
	"github.com/jhoicas/custodia-api/internal/domain/permission"
	"github.com/jhoicas/custodia-api/internal/domain/repository"
)

// Users repositorio de usuarios.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Permissions repositorio de la matriz de permisos.
func (s *Store) Permissions() repository.PermissionRepository { return permissionRepo{s} }

// Sessions repositorio de sesiones.
func (s *Store) Sessions() repository.SessionRepository { return sessionRepo{s} }

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.users[u.ID] = *u
	r.s.userOrder = append(r.s.userOrder, u.ID)
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

func (r userRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[u.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Name = u.Name
	cur.Role = u.Role
	cur.Active = u.Active
	cur.UpdatedAt = u.UpdatedAt
	r.s.users[u.ID] = cur
	return nil
}

func (r userRepo) UpdatePassword(_ context.Context, id, hash string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	cur.PasswordHash = hash
	cur.UpdatedAt = at
	r.s.users[id] = cur
	return nil
}

func (r userRepo) TouchLastAccess(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	cur.LastAccessAt = &at
	r.s.users[id] = cur
	return nil
}

func (r userRepo) List(_ context.Context) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.User, 0, len(r.s.userOrder))
	for _, id := range r.s.userOrder {
		u := r.s.users[id]
		out = append(out, &u)
	}
	return out, nil
}

func (r userRepo) Count(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.users), nil
}

type permissionRepo struct{ s *Store }

func (r permissionRepo) Get(_ context.Context, userID string) (permission.Set, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailPermissionRead != nil {
		return nil, r.s.FailPermissionRead
	}
	return copySet(r.s.permissions[userID]), nil
}

func (r permissionRepo) Replace(_ context.Context, userID string, set permission.Set) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailPermissionWrite != nil {
		return r.s.FailPermissionWrite
	}
	// la key puede venir de un buffer de la petición que se reutiliza
	r.s.permissions[strings.Clone(userID)] = copySet(set)
	return nil
}

type sessionRepo struct{ s *Store }

func (r sessionRepo) Create(_ context.Context, sess *entity.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sessions[sess.ID] = *sess
	return nil
}

func (r sessionRepo) GetByID(_ context.Context, id string) (*entity.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (r sessionRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sessions, id)
	return nil
}

func (r sessionRepo) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, sess := range r.s.sessions {
		if sess.UserID == userID {
			delete(r.s.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r sessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, sess := range r.s.sessions {
		if sess.Expired(now) {
			delete(r.s.sessions, id)
			n++
		}
	}
	return n, nil
}
