package services

import "context"

// Notifier shows transient notices to the user.
type Notifier interface {
	Success(ctx context.Context, msg string)
	Error(ctx context.Context, msg string)
}

type nopNotifier struct{}

func (nopNotifier) Success(context.Context, string) {}
func (nopNotifier) Error(context.Context, string)   {}

// User-visible notices.
const (
	NoticeAuthURLFailed       = "Failed to get Google authentication URL. Please try again."
	NoticeGoogleAuthFailed    = "Google authentication failed. Please try again."
	NoticeDecodeFailed        = "Failed to decode user information from token. Please try again."
	NoticeUserFetchFailed     = "Failed to fetch user details. Please try again."
	NoticeSignInFailed        = "Failed to sign in with Google. Please try again."
	NoticeSignedIn            = "Signed in with Google successfully!"
	NoticeRefreshFailed       = "Failed to refresh access token. Please sign in again."
	NoticeRefreshDecodeFailed = "Failed to decode user information from refreshed token. Please sign in again."
	NoticeRefreshUserFailed   = "Failed to fetch user details. Please sign in again."
	NoticeLoggedOut           = "Successfully logged out."
	NoticeUpdateProfileFailed = "Failed to update user description. Please try again."
)
