package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	gdriveCredFile  = "gdrive_credentials.json"
	gdriveTokenFile = "gdrive_token.json"
)

type gdriveProvider struct{}

func (p *gdriveProvider) Name() string {
	return "gdrive"
}

func (p *gdriveProvider) config() (*oauth2.Config, error) {
	b, err := readDirFile(gdriveCredFile)
	if err != nil {
		return nil, fmt.Errorf("gdrive_credentials.json not found in ~/.treesync: %w", err)
	}

	cfg, err := google.ConfigFromJSON(b, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	return cfg, nil
}

func (p *gdriveProvider) Authorize() error {
	cfg, err := p.config()
	if err != nil {
		return err
	}

	authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Println("Visit the URL for the auth dialog:")
	fmt.Println()
	fmt.Println(authURL)
	fmt.Println()
	fmt.Print("Enter the code here: ")

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return fmt.Errorf("failed to read code: %w", err)
	}

	token, err := cfg.Exchange(context.Background(), code)
	if err != nil {
		return fmt.Errorf("failed to exchange token: %w", err)
	}

	path, err := saveToken(gdriveTokenFile, token)
	if err != nil {
		return err
	}

	fmt.Printf("Token saved to %s\n", path)
	return nil
}

func (p *gdriveProvider) NewService(ctx context.Context) (*drive.Service, error) {
	cfg, err := p.config()
	if err != nil {
		return nil, err
	}

	token, err := loadToken(gdriveTokenFile, p.Name())
	if err != nil {
		return nil, err
	}

	tokenSource := cfg.TokenSource(ctx, token)

	newToken, err := tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	if newToken.AccessToken != token.AccessToken {
		_, _ = saveToken(gdriveTokenFile, newToken)
	}

	svc, err := drive.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create gdrive service: %w", err)
	}

	return svc, nil
}
