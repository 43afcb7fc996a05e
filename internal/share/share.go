package share

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"caterpro-ai/internal/menu"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is how long a share link stays valid.
const DefaultTTL = 30 * 24 * time.Hour

var (
	ErrNotFound = errors.New("share link not found")
	ErrExpired  = errors.New("share link expired")
)

// Link is a shareable reference to a saved menu.
type Link struct {
	Token     string
	MenuID    int64
	URL       string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service creates and resolves signed share links for saved menus.
type Service struct {
	db         *sql.DB
	menus      *menu.Repository
	signingKey []byte
	baseURL    string
	ttl        time.Duration
}

func NewService(db *sql.DB, menus *menu.Repository, signingKey, baseURL string) *Service {
	return &Service{
		db:         db,
		menus:      menus,
		signingKey: []byte(signingKey),
		baseURL:    baseURL,
		ttl:        DefaultTTL,
	}
}

// Create issues a share link for a saved menu. The returned URL embeds a
// signed token so the link cannot be forged or redirected to another menu.
func (s *Service) Create(ctx context.Context, menuID int64) (Link, error) {
	saved, err := s.menus.Get(ctx, menuID)
	if err != nil {
		return Link{}, err
	}
	if saved == nil {
		return Link{}, fmt.Errorf("menu %d: %w", menuID, ErrNotFound)
	}

	now := time.Now().UTC()
	expires := now.Add(s.ttl)
	tokenID := uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"jti":  tokenID,
		"menu": menuID,
		"iat":  now.Unix(),
		"exp":  expires.Unix(),
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return Link{}, fmt.Errorf("failed to sign share token: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO share_links (token, menu_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		tokenID, menuID, now, expires,
	)
	if err != nil {
		return Link{}, fmt.Errorf("failed to store share link: %w", err)
	}

	return Link{
		Token:     signed,
		MenuID:    menuID,
		URL:       fmt.Sprintf("%s/shared/%s", s.baseURL, signed),
		CreatedAt: now,
		ExpiresAt: expires,
	}, nil
}

// Resolve validates a share token and returns the menu it points to.
// A link revoked by deleting its row, or past its expiry, does not resolve.
func (s *Service) Resolve(ctx context.Context, signed string) (*menu.SavedMenu, error) {
	parsed, err := jwt.Parse(signed, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("invalid share token: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid share token claims")
	}
	tokenID, _ := claims["jti"].(string)

	var (
		menuID    int64
		expiresAt time.Time
	)
	row := s.db.QueryRowContext(ctx,
		`SELECT menu_id, expires_at FROM share_links WHERE token = ?`, tokenID)
	if err := row.Scan(&menuID, &expiresAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up share link: %w", err)
	}
	if time.Now().After(expiresAt) {
		return nil, ErrExpired
	}

	saved, err := s.menus.Get(ctx, menuID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, ErrNotFound
	}
	return saved, nil
}

// Revoke deletes a share link by its stored token id.
func (s *Service) Revoke(ctx context.Context, tokenID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM share_links WHERE token = ?`, tokenID)
	if err != nil {
		return fmt.Errorf("failed to revoke share link: %w", err)
	}
	return nil
}

// PurgeExpired deletes all expired share links and returns how many
// were removed.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM share_links WHERE expires_at < ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired share links: %w", err)
	}
	return result.RowsAffected()
}
