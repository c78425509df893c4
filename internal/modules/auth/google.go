package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

type googleProfile struct {
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
	Audience      string `json:"aud"`
}

// googleVerifier resolves a Google ID token into the holder's profile.
// Swappable so tests never reach the network.
type googleVerifier func(ctx context.Context, idToken string) (*googleProfile, error)

func verifyGoogleToken(allowedAudiences []string) googleVerifier {
	client := &http.Client{Timeout: 10 * time.Second}
	return func(ctx context.Context, idToken string) (*googleProfile, error) {
		endpoint := googleTokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errGoogleToken, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, errGoogleToken
		}
		var profile googleProfile
		if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
			return nil, errGoogleToken
		}
		if profile.Email == "" || profile.EmailVerified != "true" {
			return nil, errGoogleToken
		}
		for _, aud := range allowedAudiences {
			if profile.Audience == aud {
				return &profile, nil
			}
		}
		return nil, errGoogleToken
	}
}
