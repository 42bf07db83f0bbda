package session

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/Gatu-1548/plagio-ia/internal/entity"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/logger"
	"github.com/Gatu-1548/plagio-ia/internal/storage"
)

const module = "Session"

// Identity is the display identity decoded from the bearer token. Zero
// fields mean "unknown".
type Identity struct {
	UserID  int64
	Subject string
	Role    entity.UserRole
}

func (i Identity) complete() bool {
	return i.UserID != 0 && i.Subject != "" && i.Role.Valid()
}

// Session is an immutable snapshot of the tab's authentication state.
type Session struct {
	Token   string
	UserID  int64
	Subject string
	Role    entity.UserRole
}

func (s Session) Authenticated() bool { return s.Token != "" }

// Identity reports the decoded identity only when every field is known.
func (s Session) Identity() (Identity, bool) {
	id := Identity{UserID: s.UserID, Subject: s.Subject, Role: s.Role}
	if !id.complete() {
		return Identity{}, false
	}
	return id, true
}

// Store holds one tab's session. Reads are served from memory; writes go to
// durable storage before they become visible.
type Store struct {
	mu      sync.RWMutex
	current Session
	storage storage.Store
	logger  logger.ILogger
}

// NewStore hydrates from storage. Missing keys are fine; a corrupt identity
// field drops the whole identity but keeps the token.
func NewStore(ctx context.Context, st storage.Store, log logger.ILogger) *Store {
	s := &Store{storage: st, logger: log}
	s.current = s.hydrate(ctx)
	return s
}

func (s *Store) hydrate(ctx context.Context) Session {
	read := func(key string) string {
		v, ok, err := s.storage.Get(ctx, key)
		if err != nil {
			s.logger.Warn(module, "Failed to read persisted session key", map[string]interface{}{"key": key, "error": err.Error()})
			return ""
		}
		if !ok {
			return ""
		}
		return v
	}

	sess := Session{
		Token:   read(storage.KeyToken),
		Subject: read(storage.KeySubject),
	}

	corrupt := false
	if raw := read(storage.KeyUserID); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			corrupt = true
		} else {
			sess.UserID = id
		}
	}
	if raw := read(storage.KeyRole); raw != "" {
		role := entity.UserRole(raw)
		if !role.Valid() {
			corrupt = true
		} else {
			sess.Role = role
		}
	}

	if corrupt {
		s.logger.Warn(module, "Discarding corrupt persisted identity", nil)
		sess = Session{Token: sess.Token}
	}
	return sess
}

// Login stores the token unconditionally and each identity field only when it
// is non-zero; fields left out keep their stored value. Everything is written
// in one batch.
func (s *Store) Login(ctx context.Context, token string, id Identity) error {
	return s.login(ctx, token, id, false)
}

// LoginWithToken decodes the display identity from token and logs in. A token
// whose payload cannot be decoded is still stored. When the token differs
// from the stored one, identity fields the new token does not carry are
// cleared so two users never mix.
func (s *Store) LoginWithToken(ctx context.Context, token string) (Session, error) {
	id, err := DecodeIdentity(token)
	if err != nil {
		s.logger.Warn(module, "Token payload could not be decoded", map[string]interface{}{"error": err.Error()})
		id = Identity{}
	}
	replace := s.Current().Token != token
	if err := s.login(ctx, token, id, replace); err != nil {
		return Session{}, err
	}
	return s.Current(), nil
}

func (s *Store) login(ctx context.Context, token string, id Identity, replace bool) error {
	if token == "" {
		return fmt.Errorf("login: empty token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	if replace {
		next = Session{}
	}
	next.Token = token
	values := map[string]string{storage.KeyToken: token}
	var stale []string

	if id.UserID > 0 {
		next.UserID = id.UserID
		values[storage.KeyUserID] = strconv.FormatInt(id.UserID, 10)
	} else if replace {
		stale = append(stale, storage.KeyUserID)
	}
	if id.Subject != "" {
		next.Subject = id.Subject
		values[storage.KeySubject] = id.Subject
	} else if replace {
		stale = append(stale, storage.KeySubject)
	}
	if id.Role.Valid() {
		next.Role = id.Role
		values[storage.KeyRole] = string(id.Role)
	} else if replace {
		stale = append(stale, storage.KeyRole)
	}

	if err := s.storage.Apply(ctx, storage.Batch{Put: values, Remove: stale}); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	s.current = next

	s.logger.Info(module, "Session started", map[string]interface{}{
		"user_id":  next.UserID,
		"subject":  next.Subject,
		"role":     next.Role,
		"identity": id.complete(),
	})
	return nil
}

// Logout clears every session key. The in-memory state is cleared even when
// storage fails.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.current = Session{}
	s.mu.Unlock()

	if err := storage.Delete(ctx, s.storage, storage.KeyToken, storage.KeyUserID, storage.KeySubject, storage.KeyRole); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.logger.Info(module, "Session cleared", nil)
	return nil
}

func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
