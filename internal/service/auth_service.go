// FILE: internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gatu-1548/plagio-ia/internal/dto"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/logger"
	"github.com/Gatu-1548/plagio-ia/internal/workspace"
	"github.com/Gatu-1548/plagio-ia/pkg/events"
	"github.com/Gatu-1548/plagio-ia/pkg/gateway"
)

type AuthGateway interface {
	Login(ctx context.Context, creds gateway.Credentials) (string, error)
	Register(ctx context.Context, creds gateway.Credentials) (string, error)
}

type IAuthService interface {
	Login(ctx context.Context, ws *workspace.Workspace, req *dto.LoginRequest) (*dto.SessionResponse, error)
	Register(ctx context.Context, ws *workspace.Workspace, req *dto.RegisterRequest) (*dto.SessionResponse, error)
	Logout(ctx context.Context, ws *workspace.Workspace) error
	Session(ws *workspace.Workspace) *dto.SessionResponse
}

type authService struct {
	gateway AuthGateway
	emitter *events.Emitter
	logger  logger.ILogger
}

func NewAuthService(gw AuthGateway, emitter *events.Emitter, log logger.ILogger) IAuthService {
	return &authService{gateway: gw, emitter: emitter, logger: log}
}

func (s *authService) Login(ctx context.Context, ws *workspace.Workspace, req *dto.LoginRequest) (*dto.SessionResponse, error) {
	token, err := s.gateway.Login(ctx, gateway.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, ws, token)
}

// Register creates the account and signs the tab in with the issued token.
func (s *authService) Register(ctx context.Context, ws *workspace.Workspace, req *dto.RegisterRequest) (*dto.SessionResponse, error) {
	token, err := s.gateway.Register(ctx, gateway.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, ws, token)
}

func (s *authService) startSession(ctx context.Context, ws *workspace.Workspace, token string) (*dto.SessionResponse, error) {
	// A new identity must not inherit the previous user's tracking.
	ws.Lifecycle.StopTracking()

	sess, err := ws.Session.LoginWithToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	s.emitter.Login(ctx, ws.ID, sess.UserID, sess.Subject, string(sess.Role))
	return s.Session(ws), nil
}

// Logout clears the session and the active organization. Both stores are
// cleared even if one of them fails to persist.
func (s *authService) Logout(ctx context.Context, ws *workspace.Workspace) error {
	userID := ws.Session.Current().UserID
	ws.Lifecycle.StopTracking()

	sessErr := ws.Session.Logout(ctx)
	orgErr := ws.Organization.SetCurrent(ctx, nil)
	if err := errors.Join(sessErr, orgErr); err != nil {
		s.logger.Warn("AuthService", "Logout could not clear storage", map[string]interface{}{"tab_id": ws.ID, "error": err.Error()})
		return err
	}

	s.emitter.Logout(ctx, ws.ID, userID)
	return nil
}

func (s *authService) Session(ws *workspace.Workspace) *dto.SessionResponse {
	sess := ws.Session.Current()
	return &dto.SessionResponse{
		Authenticated: sess.Authenticated(),
		UserId:        sess.UserID,
		Subject:       sess.Subject,
		Role:          sess.Role,
		Organization:  ws.Organization.Current(),
	}
}
