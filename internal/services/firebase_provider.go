package services

import (
	"context"
	"errors"
	"fmt"

	"circuitweb/internal/common"
	"circuitweb/internal/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type firebaseIdentityProvider struct {
	client *auth.Client
}

// NewFirebaseIdentityProvider uses the service account file when given and
// application default credentials otherwise.
func NewFirebaseIdentityProvider(ctx context.Context, projectID, credentialsFile string) (IdentityProvider, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase auth client: %w", err)
	}
	return &firebaseIdentityProvider{client: client}, nil
}

func (f *firebaseIdentityProvider) VerifyIDToken(ctx context.Context, idToken string) (*models.TokenInfo, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return tokenInfoFromFirebase(token), nil
}

func (f *firebaseIdentityProvider) GetUser(ctx context.Context, uid string) (*models.ProviderUser, error) {
	record, err := f.client.GetUser(ctx, uid)
	if err != nil {
		return nil, mapFirebaseError(err, uid)
	}
	return providerUserFromRecord(record), nil
}

func (f *firebaseIdentityProvider) CreateUser(ctx context.Context, params *models.ProviderUserCreate) (*models.ProviderUser, error) {
	toCreate := (&auth.UserToCreate{}).
		Email(params.Email).
		Password(params.Password).
		EmailVerified(false)
	if params.DisplayName != nil {
		toCreate = toCreate.DisplayName(*params.DisplayName)
	}
	if params.PhotoURL != nil {
		toCreate = toCreate.PhotoURL(*params.PhotoURL)
	}

	record, err := f.client.CreateUser(ctx, toCreate)
	if err != nil {
		return nil, err
	}
	return providerUserFromRecord(record), nil
}

func (f *firebaseIdentityProvider) UpdateUser(ctx context.Context, uid string, params *models.ProviderUserUpdate) (*models.ProviderUser, error) {
	toUpdate := &auth.UserToUpdate{}
	if params.Email != nil {
		toUpdate = toUpdate.Email(*params.Email)
	}
	if params.DisplayName != nil {
		toUpdate = toUpdate.DisplayName(*params.DisplayName)
	}
	if params.PhotoURL != nil {
		toUpdate = toUpdate.PhotoURL(*params.PhotoURL)
	}
	if params.Password != nil {
		toUpdate = toUpdate.Password(*params.Password)
	}
	if params.PhoneNumber != nil {
		toUpdate = toUpdate.PhoneNumber(*params.PhoneNumber)
	}

	record, err := f.client.UpdateUser(ctx, uid, toUpdate)
	if err != nil {
		return nil, mapFirebaseError(err, uid)
	}
	return providerUserFromRecord(record), nil
}

func (f *firebaseIdentityProvider) DeleteUser(ctx context.Context, uid string) error {
	return mapFirebaseError(f.client.DeleteUser(ctx, uid), uid)
}

func (f *firebaseIdentityProvider) ListUsers(ctx context.Context) ([]*models.ProviderUser, error) {
	var users []*models.ProviderUser
	iter := f.client.Users(ctx, "")
	for {
		record, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error listing users: %w", err)
		}
		users = append(users, providerUserFromRecord(record.UserRecord))
	}
	return users, nil
}

func (f *firebaseIdentityProvider) SetCustomClaims(ctx context.Context, uid string, claims map[string]interface{}) error {
	return mapFirebaseError(f.client.SetCustomUserClaims(ctx, uid, claims), uid)
}

func mapFirebaseError(err error, uid string) error {
	if err == nil {
		return nil
	}
	if auth.IsUserNotFound(err) {
		return common.NotFound("provider user", uid)
	}
	return err
}

func tokenInfoFromFirebase(token *auth.Token) *models.TokenInfo {
	info := &models.TokenInfo{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		info.Email = email
	}
	if token.Expires > 0 {
		info.ExpiresAt = unixToTime(token.Expires)
	}
	return info
}

func providerUserFromRecord(record *auth.UserRecord) *models.ProviderUser {
	if record == nil {
		return nil
	}

	user := &models.ProviderUser{
		EmailVerified: record.EmailVerified,
		Disabled:      record.Disabled,
	}
	if record.UserInfo != nil {
		user.UID = record.UID
		user.Email = record.Email
		user.DisplayName = record.DisplayName
		user.PhotoURL = record.PhotoURL
		user.PhoneNumber = record.PhoneNumber
	}

	providerID := ""
	if len(record.ProviderUserInfo) > 0 && record.ProviderUserInfo[0] != nil {
		providerID = record.ProviderUserInfo[0].ProviderID
	}
	user.Provider = NormalizeProvider(providerID)

	if record.UserMetadata != nil {
		user.CreatedAt = millisToTime(record.UserMetadata.CreationTimestamp)
		if record.UserMetadata.LastLogInTimestamp > 0 {
			lastLogin := millisToTime(record.UserMetadata.LastLogInTimestamp)
			user.LastLoginAt = &lastLogin
		}
	}
	return user
}
