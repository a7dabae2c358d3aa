package testutil

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/cardcon-lab/backend/pkg/authenticator"
	"github.com/stretchr/testify/require"
)

// AuthorizationHeader returns a bearer header for the given token object, signed with the secret of
// MockConfigs.
func AuthorizationHeader[T any](t *testing.T, sub string, token T) http.Header {
	cfg := MockConfigs()
	engine := authenticator.NewTokenEngine[T](cfg.Auth.TokenSecret, cfg.Auth.AccessToken.Expiration)
	signed, err := engine.Generate(sub, token)
	require.NoError(t, err)

	header := http.Header{}
	header.Set("Authorization", fmt.Sprintf("Bearer %s", signed))
	return header
}
