package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/fourtogenic/photoshare/internal/errs"
)

func errRateLimitedForTest() error { return fmt.Errorf("login: %w", errs.ErrRateLimited) }

func TestBearerToken(t *testing.T) {
	t.Parallel()

	got, err := bearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", got)

	got, err = bearerToken("bearer xyz")
	require.NoError(t, err)
	require.Equal(t, "xyz", got)

	for _, h := range []string{"", "Basic foo", "Bearer   ", "Bearer"} {
		_, err := bearerToken(h)
		require.Error(t, err, h)
	}
}

func TestUserIDFromCtx(t *testing.T) {
	t.Parallel()

	_, ok := UserIDFromCtx(context.Background())
	require.False(t, ok)

	_, ok = UserIDFromCtx(WithUserID(context.Background(), uuid.Nil))
	require.False(t, ok)

	id := uuid.Must(uuid.NewV4())
	got, ok := UserIDFromCtx(WithUserID(context.Background(), id))
	require.True(t, ok)
	require.Equal(t, id, got)
}

func TestStatusOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("photo: %w", errs.ErrNotFound), http.StatusNotFound},
		{errs.ErrForbidden, http.StatusForbidden},
		{errs.ErrConflict, http.StatusConflict},
		{errs.ErrUnauthorized, http.StatusUnauthorized},
		{errs.ErrValidation, http.StatusBadRequest},
		{errs.ErrRateLimited, http.StatusTooManyRequests},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		got, _ := statusOf(tc.err)
		require.Equal(t, tc.want, got, tc.err.Error())
	}
}

func TestOptionalAuthRejectsBadToken(t *testing.T) {
	h := newHarness(t, Options{})
	id := uuid.Must(uuid.NewV4())

	req, _ := http.NewRequest(http.MethodGet, "/photos/"+id.String(), nil)
	req.Header.Set("Authorization", "Bearer nope")
	require.Equal(t, http.StatusUnauthorized, h.serve(req).Code)

	// anonymous reaches the handler, which reports the missing photo
	require.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/photos/"+id.String(), uuid.Nil, nil).Code)
}
