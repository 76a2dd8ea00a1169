package domain

// SessionTokens bundles the credentials minted by a login or a refresh.
//
// Login fills all three fields. Refresh only fills AccessToken and CSRFToken:
// the refresh token presented by the client stays untouched until its natural
// expiry, it is never rotated.
type SessionTokens struct {
	AccessToken  string
	RefreshToken string
	CSRFToken    string
}
