package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/flow-client/apiclient"
	"github.com/jrsteele09/flow-client/authmodel"
	"github.com/jrsteele09/flow-client/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantCode    string
	}{
		{"detail object", 400, `{"detail":{"message":"Email already registered","code":"EMAIL_EXISTS"}}`, "Email already registered", "EMAIL_EXISTS"},
		{"detail string", 404, `{"detail":"Profile not found. Complete onboarding first."}`, "Profile not found. Complete onboarding first.", ""},
		{"flat message", 400, `{"message":"Invalid code","code":"INVALID_OTP"}`, "Invalid code", "INVALID_OTP"},
		{"oauth style", 400, `{"error":"invalid_grant","error_description":"Token expired"}`, "Token expired", "invalid_grant"},
		{"validation list", 422, `{"detail":[{"loc":["body","email"],"msg":"value is not a valid email address","type":"value_error"},{"loc":["body","password"],"msg":"too short","type":"string_too_short"}]}`,
			"email: value is not a valid email address; password: too short", authmodel.CodeValidation},
		{"not json", 502, `<html>bad gateway</html>`, "Bad Gateway", ""},
		{"empty body", 401, ``, "Unauthorized", ""},
		{"unknown status", 599, `{}`, "Request failed with status 599", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := apiclient.ParseError(tt.status, []byte(tt.body))
			require.Equal(t, tt.status, apiErr.Status)
			require.Equal(t, tt.wantMessage, apiErr.Message)
			require.Equal(t, tt.wantCode, apiErr.Code)
		})
	}
}

func TestDo_BearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(users.AuthStatus{User: users.User{Email: "sam@example.com"}, OnboardingCompleted: true})
	}))
	defer srv.Close()

	ctx := context.Background()
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "from-source"})
	client := apiclient.New(srv.URL, apiclient.WithTokenSource(source))

	t.Run("token source", func(t *testing.T) {
		resp := client.Status(ctx)
		require.True(t, resp.OK())
		require.Equal(t, "Bearer from-source", gotAuth)
		require.Equal(t, "sam@example.com", resp.Data.User.Email)
		require.True(t, resp.Data.OnboardingCompleted)
	})

	t.Run("explicit override wins", func(t *testing.T) {
		resp := client.Status(ctx, apiclient.WithToken("explicit"))
		require.True(t, resp.OK())
		require.Equal(t, "Bearer explicit", gotAuth)
	})

	t.Run("no token", func(t *testing.T) {
		resp := apiclient.New(srv.URL).Status(ctx)
		require.True(t, resp.OK())
		require.Empty(t, gotAuth)
	})

	t.Run("unauthenticated endpoints never send one", func(t *testing.T) {
		_ = client.Signin(ctx, authmodel.SigninRequest{Email: "a@b.com", Password: "x"})
		require.Empty(t, gotAuth)
	})
}

func TestDo_ErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":{"message":"Invalid email or password","code":"INVALID_CREDENTIALS"}}`))
	}))
	defer srv.Close()

	resp := apiclient.New(srv.URL).Signin(context.Background(), authmodel.SigninRequest{Email: "a@b.com", Password: "x"})
	require.False(t, resp.OK())
	require.Equal(t, http.StatusUnauthorized, resp.Status)
	require.Equal(t, "INVALID_CREDENTIALS", resp.Error.Code)
	require.True(t, resp.Error.IsAuth())
	require.Empty(t, resp.Data.AccessToken)
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	resp := apiclient.New(url).Status(context.Background())
	require.False(t, resp.OK())
	require.Equal(t, authmodel.CodeNetworkError, resp.Error.Code)
	require.Equal(t, apiclient.NetworkErrorMessage, resp.Error.Message)
	require.True(t, resp.Error.IsNetwork())
	require.False(t, resp.Error.IsAuth())
}

func TestDo_InvalidBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	resp := apiclient.New(srv.URL).GetProfile(context.Background())
	require.False(t, resp.OK())
	require.Equal(t, apiclient.CodeInvalidResponse, resp.Error.Code)
}

func TestListPrograms_Query(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	resp := apiclient.New(srv.URL).FeaturedPrograms(context.Background(), 4)
	require.True(t, resp.OK())
	require.Equal(t, "limit=4", gotQuery)
	require.Empty(t, resp.Data)
}

func TestDeleteAccount_SendsConfirmation(t *testing.T) {
	var gotMethod string
	var gotBody users.DeleteAccountRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"message":"Account deleted successfully. Your data has been anonymized.","deleted_at":"2026-01-02T03:04:05Z"}`))
	}))
	defer srv.Close()

	resp := apiclient.New(srv.URL).DeleteAccount(context.Background(), true, apiclient.WithToken("tok"))
	require.True(t, resp.OK())
	require.Equal(t, http.MethodDelete, gotMethod)
	require.True(t, gotBody.Confirm)
	require.Equal(t, 2026, resp.Data.DeletedAt.Year())
}
