package tenant

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSSource loads tenant documents from a Google Cloud Storage bucket, one
// object per tenant under the configured prefix.
type GCSSource struct {
	Client *storage.Client
	Bucket string
	Prefix string
}

// NewGCSSource constructs a GCSSource backed by client.
func NewGCSSource(client *storage.Client, bucket, prefix string) *GCSSource {
	return &GCSSource{Client: client, Bucket: bucket, Prefix: prefix}
}

func (g *GCSSource) object(id string) string {
	return strings.TrimSuffix(g.Prefix, "/") + "/" + id + ".json"
}

func (g *GCSSource) Load(ctx context.Context, id string) ([]byte, error) {
	rc, err := g.Client.Bucket(g.Bucket).Object(g.object(id)).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("tenant gcs source: open %s: %w", g.object(id), err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("tenant gcs source: read %s: %w", g.object(id), err)
	}
	return data, nil
}

func (g *GCSSource) ListIDs(ctx context.Context) ([]string, error) {
	it := g.Client.Bucket(g.Bucket).Objects(ctx, &storage.Query{Prefix: g.Prefix})
	var ids []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("tenant gcs source: list objects: %w", err)
		}
		name := strings.TrimPrefix(attrs.Name, g.Prefix)
		name = strings.TrimPrefix(name, "/")
		if strings.HasSuffix(name, ".json") {
			ids = append(ids, strings.TrimSuffix(name, ".json"))
		}
	}
	return ids, nil
}
