package service

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/config"
	"github.com/FilipposDe/shopify-fields-app/internal/domain"
	"github.com/FilipposDe/shopify-fields-app/internal/repository"
	"github.com/FilipposDe/shopify-fields-app/internal/shopify"
	"github.com/FilipposDe/shopify-fields-app/pkg/errors"
)

// TokenExchanger trades an OAuth code for an access token
type TokenExchanger interface {
	AuthorizeURL(shop, redirectURI, state string) string
	ExchangeCodeForToken(ctx context.Context, shop, code string) (*shopify.AccessToken, error)
}

type authService struct {
	cfg    *config.Config
	repos  *repository.Repositories
	oauth  TokenExchanger
	admin  AdminAPIFactory
	logger *zap.Logger
}

// NewAuthService creates the install, session and uninstall service
func NewAuthService(cfg *config.Config, repos *repository.Repositories, oauth TokenExchanger, admin AdminAPIFactory, logger *zap.Logger) *authService {
	return &authService{
		cfg:    cfg,
		repos:  repos,
		oauth:  oauth,
		admin:  admin,
		logger: logger,
	}
}

// CallbackURL is where Shopify redirects after consent
func (s *authService) CallbackURL() string {
	return s.cfg.Host + "/auth/callback"
}

// WebhookURL receives app webhooks
func (s *authService) WebhookURL() string {
	return s.cfg.Host + "/webhooks"
}

// BeginAuth returns the consent URL and the state nonce to remember for the callback
func (s *authService) BeginAuth(shop string) (string, string, error) {
	shop = shopify.NormalizeShopDomain(shop)
	if !shopify.IsValidShopDomain(shop) {
		return "", "", &errors.ErrValidation{Message: "invalid shop domain"}
	}
	state := uuid.NewString()
	return s.oauth.AuthorizeURL(shop, s.CallbackURL(), state), state, nil
}

// CompleteAuth verifies the OAuth redirect, stores the offline session, activates
// the shop and registers the uninstall webhook. It returns the shop domain.
func (s *authService) CompleteAuth(ctx context.Context, query url.Values, expectedState string) (string, error) {
	if !shopify.VerifyQueryHMAC(query, s.cfg.Shopify.APISecret) {
		return "", &errors.ErrUnauthorized{Message: "invalid hmac"}
	}
	shop := shopify.NormalizeShopDomain(query.Get("shop"))
	if !shopify.IsValidShopDomain(shop) {
		return "", &errors.ErrValidation{Message: "invalid shop domain"}
	}
	if expectedState == "" || query.Get("state") != expectedState {
		return "", &errors.ErrUnauthorized{Message: "state mismatch"}
	}
	code := query.Get("code")
	if code == "" {
		return "", &errors.ErrValidation{Message: "missing code"}
	}

	token, err := s.oauth.ExchangeCodeForToken(ctx, shop, code)
	if err != nil {
		return "", &errors.ErrRemote{Op: "oauth", Err: err}
	}

	session := &domain.Session{
		ID:          domain.OfflineSessionID(shop),
		Shop:        shop,
		State:       expectedState,
		Scope:       token.Scope,
		AccessToken: token.AccessToken,
		IsOnline:    false,
	}
	if err := s.repos.Session.Store(ctx, session); err != nil {
		s.logger.Error("Failed to store session", zap.String("shop", shop), zap.Error(err))
		return "", err
	}
	if err := s.repos.Shop.SetActive(ctx, shop, true); err != nil {
		s.logger.Error("Failed to activate shop", zap.String("shop", shop), zap.Error(err))
		return "", err
	}

	if id, err := s.admin(session).RegisterWebhook(ctx, shopify.TopicAppUninstalled, s.WebhookURL()); err != nil {
		s.logger.Warn("Failed to register uninstall webhook", zap.String("shop", shop), zap.Error(err))
	} else {
		s.logger.Info("Uninstall webhook registered", zap.String("shop", shop), zap.String("webhook_id", id))
	}

	s.logger.Info("Shop installed", zap.String("shop", shop))
	return shop, nil
}

// IsInstalled reports whether the shop has an active installation
func (s *authService) IsInstalled(ctx context.Context, shop string) (bool, error) {
	record, err := s.repos.Shop.GetByDomain(ctx, shopify.NormalizeShopDomain(shop))
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); ok {
			return false, nil
		}
		return false, err
	}
	return record.IsActive, nil
}

// OfflineSession returns the usable offline session of an active shop
func (s *authService) OfflineSession(ctx context.Context, shop string) (*domain.Session, error) {
	installed, err := s.IsInstalled(ctx, shop)
	if err != nil {
		return nil, err
	}
	if !installed {
		return nil, &errors.ErrUnauthorized{Message: "shop is not installed"}
	}

	session, err := s.repos.Session.Load(ctx, domain.OfflineSessionID(shop))
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); ok {
			return nil, &errors.ErrUnauthorized{Message: "no session for shop"}
		}
		return nil, err
	}
	if !session.IsActive(time.Now()) {
		return nil, &errors.ErrUnauthorized{Message: "session expired"}
	}
	return session, nil
}

// Uninstall marks the shop inactive and drops its sessions
func (s *authService) Uninstall(ctx context.Context, shop string) error {
	shop = shopify.NormalizeShopDomain(shop)
	if err := s.repos.Shop.SetActive(ctx, shop, false); err != nil {
		if _, ok := err.(*errors.ErrNotFound); !ok {
			return err
		}
	}
	if err := s.repos.Session.DeleteByShop(ctx, shop); err != nil {
		return err
	}
	s.logger.Info("Shop uninstalled", zap.String("shop", shop))
	return nil
}
