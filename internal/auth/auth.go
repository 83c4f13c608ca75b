package auth

import (
	"context"
	"fmt"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"google.golang.org/api/drive/v3"
)

type Provider interface {
	Name() string
	Authorize() error
}

type GDriveProvider interface {
	Provider
	NewService(ctx context.Context) (*drive.Service, error)
}

type DropboxProvider interface {
	Provider
	NewConfig(ctx context.Context) (dropbox.Config, error)
}

var (
	GDrive  GDriveProvider  = &gdriveProvider{}
	Dropbox DropboxProvider = &dropboxProvider{}
)

func Lookup(name string) (Provider, error) {
	switch name {
	case GDrive.Name():
		return GDrive, nil
	case Dropbox.Name():
		return Dropbox, nil
	}

	return nil, fmt.Errorf("unknown provider %q (want gdrive or dropbox)", name)
}
