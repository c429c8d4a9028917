package tenant

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureBlobSource loads tenant documents from an Azure Blob Storage
// container, one blob per tenant under the configured prefix.
type AzureBlobSource struct {
	Client    *azblob.Client
	Container string
	Prefix    string
}

// NewAzureBlobSource constructs an AzureBlobSource backed by client.
func NewAzureBlobSource(client *azblob.Client, container, prefix string) *AzureBlobSource {
	return &AzureBlobSource{Client: client, Container: container, Prefix: prefix}
}

func (a *AzureBlobSource) blobName(id string) string {
	return strings.TrimSuffix(a.Prefix, "/") + "/" + id + ".json"
}

func (a *AzureBlobSource) Load(ctx context.Context, id string) ([]byte, error) {
	name := a.blobName(id)
	resp, err := a.Client.DownloadStream(ctx, a.Container, name, nil)
	if err != nil {
		return nil, fmt.Errorf("tenant azure blob source: download %s: %w", name, err)
	}
	buf := new(bytes.Buffer)
	reader := resp.Body
	defer reader.Close()
	if _, err := buf.ReadFrom(reader); err != nil {
		return nil, fmt.Errorf("tenant azure blob source: read %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (a *AzureBlobSource) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	pager := a.Client.NewListBlobsFlatPager(a.Container, &azblob.ListBlobsFlatOptions{
		Prefix: &a.Prefix,
	})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("tenant azure blob source: list blobs: %w", err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			name := strings.TrimPrefix(*item.Name, a.Prefix)
			name = strings.TrimPrefix(name, "/")
			if strings.HasSuffix(name, ".json") {
				ids = append(ids, strings.TrimSuffix(name, ".json"))
			}
		}
	}
	return ids, nil
}
