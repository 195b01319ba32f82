package watermark

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/blake2b"

	"github.com/dmitrijs2005/milestonegate/internal/common"
	"github.com/dmitrijs2005/milestonegate/internal/logging"
	"github.com/dmitrijs2005/milestonegate/internal/server/storage"
)

// PreviewPrefix is the key prefix of every derivative in the deliverables bucket.
const PreviewPrefix = "previews/"

// Stamper embeds text into one kind of media.
type Stamper interface {
	Stamp(ctx context.Context, data []byte, text string) (out []byte, contentType string, err error)
}

// Preview is a handle to a stored derivative. It never names the original.
type Preview struct {
	Bucket      string
	Key         string
	ContentType string
}

type Options struct {
	Bucket  string
	TTL     time.Duration
	Cache   Cache
	Logger  logging.Logger
	Counter *prometheus.CounterVec
}

type Renderer struct {
	store    storage.ObjectStore
	bucket   string
	ttl      time.Duration
	cache    Cache
	stampers map[MediaKind]Stamper
	log      logging.Logger
	counter  *prometheus.CounterVec
}

func NewRenderer(store storage.ObjectStore, o Options) *Renderer {
	r := &Renderer{
		store:  store,
		bucket: o.Bucket,
		ttl:    o.TTL,
		cache:  o.Cache,
		stampers: map[MediaKind]Stamper{
			KindImage: NewImageStamper(),
			KindPDF:   PDFStamper{},
		},
		log:     o.Logger,
		counter: o.Counter,
	}
	if r.cache == nil {
		r.cache = NoCache{}
	}
	if r.log == nil {
		r.log = logging.Nop{}
	}
	return r
}

// Render returns a derivative of originKey stamped with text, rendering it
// on first use. Every failure is reported as common.ErrPreviewUnavailable.
//
// When kind has no stamper the original is read first and classified by
// its content.
func (r *Renderer) Render(ctx context.Context, milestoneID, originKey, text string, kind MediaKind) (Preview, error) {
	var data []byte
	if _, ok := r.stampers[kind]; !ok {
		got, err := r.store.Get(ctx, r.bucket, originKey)
		if err != nil {
			r.count("failed")
			return Preview{}, fmt.Errorf("%w: read original: %w", common.ErrPreviewUnavailable, err)
		}
		data = got
		kind = KindOfContent(data)
	}

	stamper, ok := r.stampers[kind]
	if !ok {
		r.count("failed")
		return Preview{}, fmt.Errorf("%w: unsupported media kind %s", common.ErrPreviewUnavailable, kind)
	}

	digest := Digest(originKey, text, kind)
	if key, hit, err := r.cache.Get(ctx, digest); err != nil {
		r.log.Warn(ctx, "preview cache read failed", "milestone_id", milestoneID, "error", err)
	} else if hit {
		r.count("hit")
		return Preview{Bucket: r.bucket, Key: key, ContentType: contentTypeOf(key)}, nil
	}

	if data == nil {
		got, err := r.store.Get(ctx, r.bucket, originKey)
		if err != nil {
			r.count("failed")
			return Preview{}, fmt.Errorf("%w: read original: %w", common.ErrPreviewUnavailable, err)
		}
		data = got
	}

	out, contentType, err := stamper.Stamp(ctx, data, text)
	if err != nil {
		r.count("failed")
		return Preview{}, fmt.Errorf("%w: %w", common.ErrPreviewUnavailable, err)
	}

	key := PreviewKey(milestoneID, digest, contentType)
	if err := r.store.Put(ctx, r.bucket, key, out, contentType); err != nil {
		r.count("failed")
		return Preview{}, fmt.Errorf("%w: store derivative: %w", common.ErrPreviewUnavailable, err)
	}

	if err := r.cache.Set(ctx, digest, key, r.ttl); err != nil {
		r.log.Warn(ctx, "preview cache write failed", "milestone_id", milestoneID, "error", err)
	}
	r.count("rendered")
	r.log.Info(ctx, "preview rendered", "milestone_id", milestoneID, "key", key, "kind", string(kind))

	return Preview{Bucket: r.bucket, Key: key, ContentType: contentType}, nil
}

func (r *Renderer) count(outcome string) {
	if r.counter != nil {
		r.counter.WithLabelValues(outcome).Inc()
	}
}

// Digest identifies a derivative by its inputs. A new upload or new text
// yields a new digest, so stale previews are never served.
func Digest(originKey, text string, kind MediaKind) string {
	sum := blake2b.Sum256([]byte(originKey + "\x00" + text + "\x00" + string(kind)))
	return hex.EncodeToString(sum[:16])
}

// PreviewKey places derivatives under previews/<milestoneID>/.
func PreviewKey(milestoneID, digest, contentType string) string {
	ext := "bin"
	switch contentType {
	case "image/jpeg":
		ext = "jpg"
	case "application/pdf":
		ext = "pdf"
	}
	return fmt.Sprintf("%s%s/%s.%s", PreviewPrefix, milestoneID, digest, ext)
}

func contentTypeOf(key string) string {
	switch {
	case strings.HasSuffix(key, ".jpg"):
		return "image/jpeg"
	case strings.HasSuffix(key, ".pdf"):
		return "application/pdf"
	}
	return "application/octet-stream"
}
