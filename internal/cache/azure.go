package cache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// BlobCache keeps entries in an Azure blob container. Shared-key auth only.
type BlobCache struct {
	containerClient *azblob.Client
	container       string
}

var _ Cache = (*BlobCache)(nil)

func NewBlobCache(container string) (*BlobCache, error) {
	accountName, ok := os.LookupEnv("AZURE_STORAGE_ACCOUNT_NAME")
	if !ok {
		return nil, fmt.Errorf("AZURE_STORAGE_ACCOUNT_NAME could not be found")
	}

	accountKey, ok := os.LookupEnv("AZURE_STORAGE_PRIMARY_ACCOUNT_KEY")
	if !ok {
		return nil, fmt.Errorf("AZURE_STORAGE_PRIMARY_ACCOUNT_KEY could not be found")
	}

	cred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create shared key credential: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(fmt.Sprintf("https://%s.blob.core.windows.net/", accountName), cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return &BlobCache{
		containerClient: client,
		container:       container,
	}, nil
}

func (bc *BlobCache) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	stream, err := bc.containerClient.DownloadStream(ctx, bc.container, key, &azblob.DownloadStreamOptions{})
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		slog.ErrorContext(ctx, "failed to download blob", "key", key, "error", err)
		return nil, err
	}
	return stream.Body, nil
}

func (bc *BlobCache) Exists(ctx context.Context, key string) (bool, error) {
	_, err := bc.containerClient.ServiceClient().NewContainerClient(bc.container).NewBlobClient(key).GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (bc *BlobCache) Put(ctx context.Context, key, value string, opts PutOptions) error {
	// check-then-upload is racy but good enough for single-writer keys
	if opts.Condition == PutIfNoneMatch {
		exists, err := bc.Exists(ctx, key)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyExists
		}
	}
	_, err := bc.containerClient.UploadStream(ctx, bc.container, key, strings.NewReader(value), &azblob.UploadStreamOptions{})
	return err
}

func (bc *BlobCache) List(ctx context.Context, prefix string, _ string) ([]string, error) {
	var keys []string
	pager := bc.containerClient.NewListBlobsFlatPager(bc.container, &azblob.ListBlobsFlatOptions{
		Prefix: &prefix,
	})

	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get next page of blobs: %w", err)
		}
		for _, blob := range page.Segment.BlobItems {
			keys = append(keys, strings.TrimPrefix(*blob.Name, prefix))
		}
	}

	return keys, nil
}
