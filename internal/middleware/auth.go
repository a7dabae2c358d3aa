package middleware

import (
	"context"
	"strings"

	"github.com/cardcon-lab/backend/internal/model"
	"github.com/cardcon-lab/backend/pkg/authenticator"
	"github.com/cardcon-lab/backend/pkg/errorx"
	"github.com/cardcon-lab/backend/pkg/router"
	"github.com/cardcon-lab/backend/pkg/xcontext"
)

const bearerPrefix = "Bearer "

type AuthVerifier struct {
	tokenEngine authenticator.TokenEngine[model.AccessToken]
	onlyStaff   bool
}

func NewAuthVerifier(tokenEngine authenticator.TokenEngine[model.AccessToken]) *AuthVerifier {
	return &AuthVerifier{tokenEngine: tokenEngine}
}

// WithStaff only accepts tokens issued to staff members.
func (a *AuthVerifier) WithStaff() *AuthVerifier {
	return &AuthVerifier{tokenEngine: a.tokenEngine, onlyStaff: true}
}

func (a *AuthVerifier) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		req := xcontext.HTTPRequest(ctx)
		header := req.Header.Get("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		token, err := a.tokenEngine.Verify(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			xcontext.Logger(ctx).Debugf("Cannot verify access token: %v", err)
			return nil, errorx.New(errorx.Unauthenticated, "Invalid or expired access token")
		}

		if token.ID == "" {
			return nil, errorx.New(errorx.Unauthenticated, "Invalid access token")
		}

		if a.onlyStaff && !token.Staff {
			return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
		}

		ctx = xcontext.WithRequestUserID(ctx, token.ID)
		ctx = xcontext.WithRequestStaff(ctx, token.Staff)
		return ctx, nil
	}
}
