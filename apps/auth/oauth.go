package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/getevo/evo/v2/lib/settings"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"
)

// OAuthUserInfo is the normalized profile returned by either provider.
type OAuthUserInfo struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Provider  string `json:"provider"`
}

func googleOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     settings.Get("OAUTH.GOOGLE_CLIENT_ID").String(),
		ClientSecret: settings.Get("OAUTH.GOOGLE_CLIENT_SECRET").String(),
		RedirectURL:  settings.Get("OAUTH.GOOGLE_REDIRECT_URL").String(),
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

func microsoftOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     settings.Get("OAUTH.MICROSOFT_CLIENT_ID").String(),
		ClientSecret: settings.Get("OAUTH.MICROSOFT_CLIENT_SECRET").String(),
		RedirectURL:  settings.Get("OAUTH.MICROSOFT_REDIRECT_URL").String(),
		Scopes:       []string{"openid", "email", "profile", "User.Read"},
		Endpoint:     microsoft.AzureADEndpoint("common"),
	}
}

func oauthConfig(provider string) (*oauth2.Config, error) {
	switch provider {
	case OAuthProviderGoogle:
		return googleOAuthConfig(), nil
	case OAuthProviderMicrosoft:
		return microsoftOAuthConfig(), nil
	}
	return nil, fmt.Errorf("unsupported oauth provider: %s", provider)
}

// fetchOAuthUserInfo exchanges the authorization code and fetches the user's
// profile from the provider's userinfo endpoint.
func fetchOAuthUserInfo(ctx context.Context, provider, code string) (*OAuthUserInfo, error) {
	config, err := oauthConfig(provider)
	if err != nil {
		return nil, err
	}

	token, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	client := config.Client(ctx, token)

	switch provider {
	case OAuthProviderGoogle:
		return fetchGoogleUserInfo(client)
	case OAuthProviderMicrosoft:
		return fetchMicrosoftUserInfo(client)
	}
	return nil, fmt.Errorf("unsupported oauth provider: %s", provider)
}

func fetchGoogleUserInfo(client *http.Client) (*OAuthUserInfo, error) {
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var data struct {
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, err
	}

	return &OAuthUserInfo{
		Email:     data.Email,
		FirstName: data.GivenName,
		LastName:  data.FamilyName,
		Provider:  OAuthProviderGoogle,
	}, nil
}

func fetchMicrosoftUserInfo(client *http.Client) (*OAuthUserInfo, error) {
	resp, err := client.Get("https://graph.microsoft.com/v1.0/me")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var data struct {
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
		GivenName         string `json:"givenName"`
		Surname           string `json:"surname"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, err
	}

	email := data.Mail
	if email == "" {
		email = data.UserPrincipalName
	}

	return &OAuthUserInfo{
		Email:     email,
		FirstName: data.GivenName,
		LastName:  data.Surname,
		Provider:  OAuthProviderMicrosoft,
	}, nil
}

// OAuthEnabledProviders lists providers that have a client id configured.
func OAuthEnabledProviders() []string {
	var providers []string
	if settings.Get("OAUTH.GOOGLE_CLIENT_ID").String() != "" {
		providers = append(providers, OAuthProviderGoogle)
	}
	if settings.Get("OAUTH.MICROSOFT_CLIENT_ID").String() != "" {
		providers = append(providers, OAuthProviderMicrosoft)
	}
	return providers
}
