package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Noctuaa/coach-appointment-manager/internal/auth/domain"
	authhttp "github.com/Noctuaa/coach-appointment-manager/internal/auth/http"
	"github.com/Noctuaa/coach-appointment-manager/internal/auth/service"
	"github.com/Noctuaa/coach-appointment-manager/internal/auth/store/drivers/sqlite"
	"github.com/Noctuaa/coach-appointment-manager/pkg/cryptox"
	"github.com/Noctuaa/coach-appointment-manager/pkg/idx"
	"github.com/Noctuaa/coach-appointment-manager/pkg/jwtx"
	"github.com/Noctuaa/coach-appointment-manager/pkg/slogx"

	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "test-access-secret"
	testRefreshSecret = "test-refresh-secret"
	testAccessTTL     = 15 * time.Minute
	testPassword      = "Str0ngPass!"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "http-test-pepper")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper.key"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type testEnv struct {
	router *authhttp.Router
	store  *sqlite.Store
	tokens *service.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	access, err := jwtx.NewHS256Signer([]byte(testAccessSecret))
	require.NoError(t, err)
	refresh, err := jwtx.NewHS256Signer([]byte(testRefreshSecret))
	require.NoError(t, err)

	tokens := &service.TokenService{
		AccessSigner:  access,
		RefreshSigner: refresh,
		AccessTTL:     testAccessTTL,
		RefreshTTL:    jwtx.DefaultRefreshTokenTTL,
		RememberMeTTL: jwtx.DefaultRememberMeTTL,
	}

	logger := slogx.New(slogx.Config{Service: "auth-test", Level: "error", Format: "text"})
	router := authhttp.NewRouter("test", false, st, logger)
	router.TokenService = tokens
	router.SessionService = &service.SessionService{
		Credentials: &service.CredentialService{Store: st},
		Tokens:      tokens,
	}
	router.SignupService = &service.SignupService{Store: st}
	router.ApplyRoutes()

	return &testEnv{router: router, store: st, tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, m := range mutate {
		m(req)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&m))
	return m
}

func (e *testEnv) signup(t *testing.T, email string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/signup", map[string]any{
		"email":           email,
		"firstname":       "Claire",
		"lastname":        "Dubois",
		"password":        testPassword,
		"confirmPassword": testPassword,
		"role":            "user",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
}

type session struct {
	accessCookie  *http.Cookie
	refreshCookie *http.Cookie
	csrfToken     string
}

func (e *testEnv) login(t *testing.T, email string, rememberMe bool) session {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email":      email,
		"password":   testPassword,
		"rememberMe": rememberMe,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	s := session{csrfToken: body["csrfToken"].(string)}
	for _, c := range rec.Result().Cookies() {
		switch c.Name {
		case authhttp.AccessTokenCookie:
			s.accessCookie = c
		case authhttp.RefreshTokenCookie:
			s.refreshCookie = c
		}
	}
	require.NotNil(t, s.accessCookie)
	require.NotNil(t, s.refreshCookie)
	return s
}

func (s session) apply(req *http.Request) {
	if s.accessCookie != nil {
		req.AddCookie(s.accessCookie)
	}
	if s.refreshCookie != nil {
		req.AddCookie(s.refreshCookie)
	}
	if s.csrfToken != "" {
		req.Header.Set(authhttp.CSRFHeader, s.csrfToken)
	}
}

func TestSignupValidation(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"bad email", map[string]any{
			"email": "not-an-email", "firstname": "Claire", "lastname": "Dubois",
			"password": testPassword, "confirmPassword": testPassword,
		}},
		{"weak password", map[string]any{
			"email": "a@b.fr", "firstname": "Claire", "lastname": "Dubois",
			"password": "short", "confirmPassword": "short",
		}},
		{"mismatched confirmation", map[string]any{
			"email": "a@b.fr", "firstname": "Claire", "lastname": "Dubois",
			"password": testPassword, "confirmPassword": "Different1!",
		}},
		{"missing names", map[string]any{
			"email": "a@b.fr", "password": testPassword, "confirmPassword": testPassword,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, http.MethodPost, "/api/auth/signup", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			body := decodeBody(t, rec)
			require.NotEmpty(t, body["errors"])
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t, "claire@example.com")

	rec := e.do(t, http.MethodPost, "/api/auth/signup", map[string]any{
		"email":           "claire@example.com",
		"firstname":       "Claire",
		"lastname":        "Dubois",
		"password":        testPassword,
		"confirmPassword": testPassword,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Il existe déjà un compte associé à cette adresse e-mail.",
		decodeBody(t, rec)["message"])
}

func TestSignupUnknownRole(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/auth/signup", map[string]any{
		"email":           "ghost@example.com",
		"firstname":       "Claire",
		"lastname":        "Dubois",
		"password":        testPassword,
		"confirmPassword": testPassword,
		"role":            "superhero",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, "Erreur lors de la création de l'utilisateur", body["message"])
	require.Equal(t, "Rôle non trouvé", body["error"])
}

func TestLoginSuccessSetsCookiesAndCSRF(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t, "claire@example.com")

	s := e.login(t, "claire@example.com", false)

	require.Len(t, s.csrfToken, 64)
	require.True(t, s.accessCookie.HttpOnly)
	require.True(t, s.refreshCookie.HttpOnly)
	require.Equal(t, http.SameSiteStrictMode, s.accessCookie.SameSite)
	require.Equal(t, int(testAccessTTL.Seconds()), s.accessCookie.MaxAge)
	require.Equal(t, int(jwtx.DefaultRefreshTokenTTL.Seconds()), s.refreshCookie.MaxAge)

	// The CSRF token in the body matches the claim inside the access cookie.
	claims, err := e.tokens.ValidateAccessToken(s.accessCookie.Value)
	require.NoError(t, err)
	require.Equal(t, s.csrfToken, claims.CSRF)
}

func TestLoginRememberMeExtendsRefreshCookie(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t, "claire@example.com")

	s := e.login(t, "claire@example.com", true)
	require.Equal(t, int(jwtx.DefaultRememberMeTTL.Seconds()), s.refreshCookie.MaxAge)
}

func TestLoginFailureSingleMessage(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t, "claire@example.com")

	unknown := e.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "nobody@example.com", "password": testPassword,
	})
	wrongPass := e.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "claire@example.com", "password": "Wrong1!pass",
	})

	require.Equal(t, http.StatusUnauthorized, unknown.Code)
	require.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	require.Equal(t, "Email ou mot de passe incorrect.", decodeBody(t, unknown)["message"])
	require.Equal(t, "Email ou mot de passe incorrect.", decodeBody(t, wrongPass)["message"])
}

func TestSessionStateMachine(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t, "claire@example.com")
	s := e.login(t, "claire@example.com", false)

	t.Run("no refresh cookie", func(t *testing.T) {
		rec := e.do(t, http.MethodGet, "/api/auth/me", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		body := decodeBody(t, rec)
		require.Equal(t, "Authentification requise", body["message"])
		require.Equal(t, false, body["isAuthenticated"])
	})

	t.Run("refresh cookie but no access cookie", func(t *testing.T) {
		rec := e.do(t, http.MethodGet, "/api/auth/me", nil, func(req *http.Request) {
			req.AddCookie(s.refreshCookie)
			req.Header.Set(authhttp.CSRFHeader, s.csrfToken)
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		body := decodeBody(t, rec)
		require.Equal(t, "Token expiré", body["message"])
		require.Equal(t, true, body["isAuthenticated"])
		require.Equal(t, true, body["refresh"])
	})

	t.Run("missing CSRF header", func(t *testing.T) {
		rec := e.do(t, http.MethodGet, "/api/auth/me", nil, func(req *http.Request) {
			req.AddCookie(s.accessCookie)
			req.AddCookie(s.refreshCookie)
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Token expiré", decodeBody(t, rec)["message"])
	})

	t.Run("null CSRF header counts as absent", func(t *testing.T) {
		rec := e.do(t, http.MethodGet, "/api/auth/me", nil, func(req *http.Request) {
			req.AddCookie(s.accessCookie)
			req.AddCookie(s.refreshCookie)
			req.Header.Set(authhttp.CSRFHeader, "null")
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		body := decodeBody(t, rec)
		require.Equal(t, "Token expiré", body["message"])
		require.Equal(t, true, body["refresh"])
	})

	t.Run("malformed access token", func(t *testing.T) {
		rec := e.do(t, http.MethodGet, "/api/auth/me", nil, func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: authhttp.AccessTokenCookie, Value: "not-a-jwt"})
			req.AddCookie(s.refreshCookie)
			req.Header.Set(authhttp.CSRFHeader, s.csrfToken)
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		body := decodeBody(t, rec)
		require.Equal(t, "Token invalide", body["message"])
		require.NotContains(t, body, "refresh")
	})

	t.Run("expired access token", func(t *testing.T) {
		expiredTokens := *e.tokens
		expiredTokens.Now = func() time.Time { return time.Now().Add(-time.Hour) }
		expired, err := expiredTokens.IssueAccessToken("some-user", s.csrfToken)
		require.NoError(t, err)

		rec := e.do(t, http.MethodGet, "/api/auth/me", nil, func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: authhttp.AccessTokenCookie, Value: expired})
			req.AddCookie(s.refreshCookie)
			req.Header.Set(authhttp.CSRFHeader, s.csrfToken)
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		body := decodeBody(t, rec)
		require.Equal(t, "Token expiré", body["message"])
		require.Equal(t, true, body["isAuthenticated"])
		require.Equal(t, true, body["refresh"])
	})

	t.Run("CSRF mismatch", func(t *testing.T) {
		rec := e.do(t, http.MethodGet, "/api/auth/me", nil, func(req *http.Request) {
			req.AddCookie(s.accessCookie)
			req.AddCookie(s.refreshCookie)
			req.Header.Set(authhttp.CSRFHeader, "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Token expiré", decodeBody(t, rec)["message"])
	})

	t.Run("valid session", func(t *testing.T) {
		rec := e.do(t, http.MethodGet, "/api/auth/me", nil, s.apply)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		require.Equal(t, true, body["isAuthenticated"])
		user := body["user"].(map[string]any)
		require.Equal(t, "claire@example.com", user["email"])
		require.Equal(t, []any{"user"}, user["roles"])
	})

	t.Run("user deleted after token issued", func(t *testing.T) {
		ctx := context.Background()
		u, err := e.store.Users().GetUserByEmail(ctx, "claire@example.com")
		require.NoError(t, err)
		require.NoError(t, e.store.Users().DeleteUser(ctx, u.ID))

		rec := e.do(t, http.MethodGet, "/api/auth/me", nil, s.apply)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Utilisateur non trouvé", decodeBody(t, rec)["message"])
	})
}

func TestRefreshFlow(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t, "claire@example.com")
	s := e.login(t, "claire@example.com", false)

	t.Run("missing cookie", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/api/auth/refresh", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Refresh token manquant", decodeBody(t, rec)["message"])
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/api/auth/refresh", nil, func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: authhttp.RefreshTokenCookie, Value: "not-a-jwt"})
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Refresh token invalide", decodeBody(t, rec)["message"])
	})

	t.Run("success mints new access and CSRF only", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/api/auth/refresh", nil, func(req *http.Request) {
			req.AddCookie(s.refreshCookie)
		})
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		require.Equal(t, "Token rafraîchi avec succès", body["message"])
		newCSRF := body["csrfToken"].(string)
		require.Len(t, newCSRF, 64)
		require.NotEqual(t, s.csrfToken, newCSRF)

		var newAccess *http.Cookie
		for _, c := range rec.Result().Cookies() {
			switch c.Name {
			case authhttp.AccessTokenCookie:
				newAccess = c
			case authhttp.RefreshTokenCookie:
				t.Fatal("refresh must not rotate the refresh cookie")
			}
		}
		require.NotNil(t, newAccess)
		require.Equal(t, int(testAccessTTL.Seconds()), newAccess.MaxAge)

		claims, err := e.tokens.ValidateAccessToken(newAccess.Value)
		require.NoError(t, err)
		require.Equal(t, newCSRF, claims.CSRF)

		// The new session works end to end.
		next := session{accessCookie: newAccess, refreshCookie: s.refreshCookie, csrfToken: newCSRF}
		me := e.do(t, http.MethodGet, "/api/auth/me", nil, next.apply)
		require.Equal(t, http.StatusOK, me.Code)
	})

	t.Run("same refresh token keeps working", func(t *testing.T) {
		first := e.do(t, http.MethodPost, "/api/auth/refresh", nil, func(req *http.Request) {
			req.AddCookie(s.refreshCookie)
		})
		second := e.do(t, http.MethodPost, "/api/auth/refresh", nil, func(req *http.Request) {
			req.AddCookie(s.refreshCookie)
		})
		require.Equal(t, http.StatusOK, first.Code)
		require.Equal(t, http.StatusOK, second.Code)
		require.NotEqual(t,
			decodeBody(t, first)["csrfToken"],
			decodeBody(t, second)["csrfToken"])
	})
}

func TestLogoutClearsCookiesAndIsIdempotent(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t, "claire@example.com")
	s := e.login(t, "claire@example.com", false)

	for i := 0; i < 2; i++ {
		// The client replays the same (still valid) cookies both times;
		// with no server-side token state the answer must not change.
		rec := e.do(t, http.MethodPost, "/api/auth/logout", nil, s.apply)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		require.Equal(t, "Déconnexion réussie", body["message"])
		require.Equal(t, false, body["isAuthenticated"])
		require.Nil(t, body["user"])

		for _, c := range rec.Result().Cookies() {
			require.Equal(t, -1, c.MaxAge)
			require.Empty(t, c.Value)
		}
	}
}

func roleFixture(name string) domain.Role {
	return domain.Role{ID: idx.New().String(), Name: name}
}

func TestRequireRoleForbidsOutsiders(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	// A role outside the allowed set for the protected endpoints.
	require.NoError(t, e.store.Roles().CreateRole(ctx, roleFixture("guest")))

	rec := e.do(t, http.MethodPost, "/api/auth/signup", map[string]any{
		"email":           "guest@example.com",
		"firstname":       "Claire",
		"lastname":        "Dubois",
		"password":        testPassword,
		"confirmPassword": testPassword,
		"role":            "guest",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	s := e.login(t, "guest@example.com", false)
	me := e.do(t, http.MethodGet, "/api/auth/me", nil, s.apply)
	require.Equal(t, http.StatusForbidden, me.Code)
	require.Equal(t, "Accès non autorisé", decodeBody(t, me)["message"])
}

func TestHealthEndpoints(t *testing.T) {
	e := newTestEnv(t)

	livez := e.do(t, http.MethodGet, "/livez", nil)
	require.Equal(t, http.StatusOK, livez.Code)
	require.Equal(t, "ok", decodeBody(t, livez)["status"])

	readyz := e.do(t, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, readyz.Code)
	require.Equal(t, "ok", decodeBody(t, readyz)["status"])
}
