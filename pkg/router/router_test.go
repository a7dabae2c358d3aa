package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cardcon-lab/backend/pkg/errorx"
	"github.com/cardcon-lab/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Name string `json:"name" form:"name"`
}

type echoResponse struct {
	Greeting string `json:"greeting"`
	UserID   string `json:"user_id"`
}

func echo(ctx context.Context, req *echoRequest) (*echoResponse, error) {
	if req.Name == "" {
		return nil, errorx.New(errorx.BadRequest, "Empty name")
	}

	return &echoResponse{Greeting: "hello " + req.Name, UserID: xcontext.RequestUserID(ctx)}, nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response {
	var resp response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRouter_GETAndPOST(t *testing.T) {
	r := New(context.Background())
	GET(r, "/echo", echo)
	POST(r, "/echo", echo)
	h := r.Handler([]string{"*"})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/echo?name=card", nil))
	resp := decode(t, w)
	require.Equal(t, int64(0), resp.Code)
	require.Equal(t, "hello card", resp.Data.(map[string]any)["greeting"])

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":"slab"}`)))
	resp = decode(t, w)
	require.Equal(t, "hello slab", resp.Data.(map[string]any)["greeting"])

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/echo", nil))
	resp = decode(t, w)
	require.Equal(t, int64(errorx.BadRequest), resp.Code)
	require.Equal(t, "Empty name", resp.Error)
}

func TestRouter_BranchMiddleware(t *testing.T) {
	r := New(context.Background())

	authRouter := r.Branch()
	authRouter.Before(func(ctx context.Context) (context.Context, error) {
		if xcontext.HTTPRequest(ctx).Header.Get("Authorization") == "" {
			return nil, errorx.New(errorx.Unauthenticated, "Need authentication")
		}
		return xcontext.WithRequestUserID(ctx, "u1"), nil
	})

	closed := 0
	authRouter.AddCloser(func(ctx context.Context) { closed++ })

	GET(authRouter, "/private", echo)
	GET(r, "/public", echo)
	h := r.Handler([]string{"*"})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private?name=a", nil))
	require.Equal(t, int64(errorx.Unauthenticated), decode(t, w).Code)
	require.Equal(t, 1, closed)

	req := httptest.NewRequest(http.MethodGet, "/private?name=a", nil)
	req.Header.Set("Authorization", "Bearer x")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	resp := decode(t, w)
	require.Equal(t, int64(0), resp.Code)
	require.Equal(t, "u1", resp.Data.(map[string]any)["user_id"])
	require.Equal(t, 2, closed)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public?name=a", nil))
	require.Equal(t, int64(0), decode(t, w).Code)
	require.Equal(t, 2, closed)
}
