package idgen

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// GenerationID - 생성 결과 ID (gen-<uuid>)
func GenerationID() string {
	return "gen-" + uuid.New().String()
}

// DemoID - 데모 fallback 응답 ID
func DemoID() string {
	return "demo-" + uuid.New().String()
}

// ImageID - 프로젝트 아이템 ID
func ImageID() string {
	return "img-" + uuid.New().String()
}

// ProjectID returns a time-sortable proj-<ulid>.
func ProjectID() string {
	entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	entropyMu.Unlock()
	return "proj-" + strings.ToLower(id.String())
}

// BlobPath builds "<prefix>/<unix-millis>-<random>.<ext>".
func BlobPath(prefix, ext string) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:10]
	return fmt.Sprintf("%s/%d-%s.%s", prefix, time.Now().UnixMilli(), suffix, strings.TrimPrefix(ext, "."))
}
