package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
	"github.com/sweetshop/sweetshop-api/internal/metrics"
)

// Guard derives the calling principal from a bearer token. Tokens only name
// the user; the role always comes from the user record as it is right now.
type Guard struct {
	tokens  ports.TokenService
	users   ports.UserRepository
	revoker ports.TokenRevoker
	log     zerolog.Logger
}

func NewGuard(tokens ports.TokenService, users ports.UserRepository, revoker ports.TokenRevoker, log zerolog.Logger) *Guard {
	if revoker == nil {
		revoker = noopRevoker{}
	}
	return &Guard{tokens: tokens, users: users, revoker: revoker, log: log}
}

// Authenticate returns the principal for rawToken or domain.ErrUnauthenticated.
func (g *Guard) Authenticate(ctx context.Context, rawToken string) (*domain.Principal, error) {
	if strings.TrimSpace(rawToken) == "" {
		metrics.AuthRejectionsTotal.WithLabelValues("missing_token").Inc()
		return nil, domain.ErrUnauthenticated
	}

	claims, err := g.tokens.Verify(rawToken)
	if err != nil {
		metrics.AuthRejectionsTotal.WithLabelValues("invalid_token").Inc()
		g.log.Debug().Err(err).Msg("token rejected")
		return nil, domain.ErrUnauthenticated
	}

	revoked, err := g.revoker.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		g.log.Warn().Err(err).Str("token_id", claims.TokenID).Msg("revocation check failed, accepting token")
	} else if revoked {
		metrics.AuthRejectionsTotal.WithLabelValues("revoked").Inc()
		return nil, domain.ErrUnauthenticated
	}

	user, err := g.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.AuthRejectionsTotal.WithLabelValues("unknown_user").Inc()
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	return domain.PrincipalOf(user), nil
}

// RequireAdmin is a pure role check; any admin may act on any sweet.
func (g *Guard) RequireAdmin(p *domain.Principal) error {
	return requireAdmin(p)
}

func requireUser(p *domain.Principal) error {
	if p == nil || p.UserID == "" {
		return domain.ErrUnauthenticated
	}
	return nil
}

func requireAdmin(p *domain.Principal) error {
	if err := requireUser(p); err != nil {
		return err
	}
	if !p.IsAdmin {
		metrics.AuthRejectionsTotal.WithLabelValues("forbidden").Inc()
		return domain.ErrForbidden
	}
	return nil
}
