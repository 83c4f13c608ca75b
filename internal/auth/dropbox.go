package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"golang.org/x/oauth2"
)

const (
	dropboxCredFile  = "dropbox_credentials.json"
	dropboxTokenFile = "dropbox_token.json"
	callbackAddr     = "localhost:9999"
)

type dropboxCredentials struct {
	AppKey    string `json:"app_key"`
	AppSecret string `json:"app_secret"`
}

var dropboxEndpoint = oauth2.Endpoint{
	AuthURL:  "https://www.dropbox.com/oauth2/authorize",
	TokenURL: "https://api.dropboxapi.com/oauth2/token",
}

type dropboxProvider struct{}

func (p *dropboxProvider) Name() string {
	return "dropbox"
}

func (p *dropboxProvider) config() (*oauth2.Config, error) {
	b, err := readDirFile(dropboxCredFile)
	if err != nil {
		return nil, fmt.Errorf("dropbox_credentials.json not found in ~/.treesync: %w", err)
	}

	var creds dropboxCredentials
	if err := json.Unmarshal(b, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse dropbox credentials: %w", err)
	}

	return &oauth2.Config{
		ClientID:     creds.AppKey,
		ClientSecret: creds.AppSecret,
		Endpoint:     dropboxEndpoint,
		RedirectURL:  "http://" + callbackAddr + "/callback",
		Scopes: []string{
			"account_info.read",
			"files.metadata.read",
			"files.content.read",
			"files.content.write",
		},
	}, nil
}

func (p *dropboxProvider) Authorize() error {
	cfg, err := p.config()
	if err != nil {
		return err
	}

	authURL := cfg.AuthCodeURL("state-token",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("token_access_type", "offline"))

	fmt.Println("Visit the URL for the auth dialog:")
	fmt.Println()
	fmt.Println(authURL)
	fmt.Println()

	codeCh := make(chan string, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		select {
		case codeCh <- r.URL.Query().Get("code"):
		default:
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprintln(w, "<h2>Authentication complete! Now you can close this window and return to the terminal.</h2>")
	})

	srv := &http.Server{Addr: callbackAddr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()

	fmt.Println("Authentication will complete after you log on via browser...")

	select {
	case code := <-codeCh:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)

		token, err := cfg.Exchange(context.Background(), code)
		if err != nil {
			return fmt.Errorf("failed to exchange token: %w", err)
		}

		path, err := saveToken(dropboxTokenFile, token)
		if err != nil {
			return err
		}

		fmt.Printf("Dropbox token saved to %s\n", path)
		return nil

	case <-time.After(2 * time.Minute):
		_ = srv.Shutdown(context.Background())
		return fmt.Errorf("authorization timed out")
	}
}

// NewConfig refreshes the stored token when needed and returns an SDK config
// carrying the current access token.
func (p *dropboxProvider) NewConfig(ctx context.Context) (dropbox.Config, error) {
	cfg, err := p.config()
	if err != nil {
		return dropbox.Config{}, err
	}

	token, err := loadToken(dropboxTokenFile, p.Name())
	if err != nil {
		return dropbox.Config{}, err
	}

	newToken, err := cfg.TokenSource(ctx, token).Token()
	if err != nil {
		return dropbox.Config{}, fmt.Errorf("failed to refresh dropbox token: %w", err)
	}

	if newToken.AccessToken != token.AccessToken {
		_, _ = saveToken(dropboxTokenFile, newToken)
	}

	return dropbox.Config{Token: newToken.AccessToken}, nil
}
