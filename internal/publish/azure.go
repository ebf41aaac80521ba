package publish

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"

	"csvpack/internal/config"
)

var _ Publisher = (*Azure)(nil)

// Azure publishes to an Azure Blob Storage container.
type Azure struct {
	client *azblob.Client
	target Target
}

// NewAzure creates an Azure publisher. With an account key requests use
// shared-key auth; without one the endpoint must carry a SAS token.
func NewAzure(target Target, cfg config.AzureConfig) (*Azure, error) {
	serviceURL := cfg.Endpoint
	if serviceURL == "" {
		if cfg.AccountName == "" {
			return nil, errors.New("azure publish needs publish.azure.account_name or publish.azure.endpoint")
		}
		serviceURL = fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.AccountName)
	}

	var (
		client *azblob.Client
		err    error
	)
	if cfg.AccountKey != "" {
		cred, cerr := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
		if cerr != nil {
			return nil, fmt.Errorf("create shared key credential: %w", cerr)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	} else {
		client, err = azblob.NewClientWithNoCredential(serviceURL, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("create Azure blob client: %w", err)
	}
	return &Azure{client: client, target: target}, nil
}

// Put uploads one blob.
func (p *Azure) Put(ctx context.Context, key string, data []byte, contentType string) error {
	name := p.target.Key(key)
	_, err := p.client.UploadBuffer(ctx, p.target.Bucket, name, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return fmt.Errorf("azure upload %q: %w", name, err)
	}
	return nil
}

// Location returns the az:// URL blobs land under.
func (p *Azure) Location() string {
	return "az://" + p.target.Bucket + "/" + p.target.Prefix
}
