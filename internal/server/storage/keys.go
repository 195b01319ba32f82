package storage

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/milestonegate/internal/common"
)

// KeyFromURL derives the object key inside bucket from a stored URL. It
// accepts the historical shapes found on older rows:
//
//	f1/m1/1700000000-a.pdf                                   (bare key)
//	deliverables/f1/m1/1700000000-a.pdf                      (object path)
//	http://127.0.0.1:9000/deliverables/f1/m1/...             (path-style URL)
//	https://x.co/storage/v1/object/public/deliverables/f1/.. (public URL)
//	https://deliverables.s3.us-east-1.amazonaws.com/f1/...   (virtual-hosted URL)
//
// New rows store the key directly and never need this.
func KeyFromURL(bucket, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty object url", common.ErrStorage)
	}

	if !strings.Contains(raw, "://") {
		key := strings.TrimPrefix(strings.TrimPrefix(raw, "/"), bucket+"/")
		return nonEmptyKey(key, raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: parse object url: %w", common.ErrStorage, err)
	}

	if strings.HasPrefix(u.Hostname(), bucket+".") {
		return nonEmptyKey(strings.TrimPrefix(u.Path, "/"), raw)
	}

	marker := "/" + bucket + "/"
	i := strings.Index(u.Path, marker)
	if i < 0 {
		return "", fmt.Errorf("%w: url does not reference bucket %s", common.ErrStorage, bucket)
	}
	return nonEmptyKey(u.Path[i+len(marker):], raw)
}

func nonEmptyKey(key, raw string) (string, error) {
	if key == "" || strings.HasSuffix(key, "/") {
		return "", fmt.Errorf("%w: no object key in %q", common.ErrStorage, raw)
	}
	return key, nil
}
