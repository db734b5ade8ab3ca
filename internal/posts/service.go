package posts

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
	"unicode"

	"github.com/flocknet/flocknet/backend/go-services/internal/trending"
	"github.com/flocknet/flocknet/backend/go-services/pkg/logger"
	"github.com/flocknet/flocknet/backend/go-services/pkg/metrics"
)

var ErrEmptyText = errors.New("post text must not be empty")

// Service creates and reads posts. On create it extracts hashtags from the
// text and appends one usage record per distinct tag, which feeds the
// trending aggregation.
type Service struct {
	repo     Repository
	recorder trending.Recorder
}

// NewService creates a post service. recorder may be nil when hashtag usage
// tracking is not wired (the post is still created).
func NewService(r Repository, rec trending.Recorder) *Service {
	return &Service{repo: r, recorder: rec}
}

func (s *Service) Create(ctx context.Context, authorSub, text, mediaKey string) (*Post, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	p := &Post{
		ID:        "post_" + hex.EncodeToString(b),
		AuthorSub: authorSub,
		Text:      text,
		MediaKey:  mediaKey,
		Hashtags:  ExtractHashtags(text),
	}
	if _, err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	if s.recorder != nil && len(p.Hashtags) > 0 {
		// usage records feed trending only; a failed append must not fail
		// the already-created post
		if err := s.recorder.Record(ctx, p.ID, p.Hashtags); err != nil {
			logger.Warnf("failed to record hashtag usage for %s: %v", p.ID, err)
		}
	}
	metrics.PostsCreated.Inc()
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Post, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Post, error) {
	return s.repo.List(ctx)
}

// ExtractHashtags returns the distinct hashtags in text, lowercased and
// sorted. A tag is '#' followed by letters, digits or underscores.
func ExtractHashtags(text string) []string {
	seen := map[string]struct{}{}
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '#' {
			continue
		}
		j := i + 1
		for j < len(runes) && isTagRune(runes[j]) {
			j++
		}
		if j > i+1 {
			seen[strings.ToLower(string(runes[i+1:j]))] = struct{}{}
		}
		i = j - 1
	}
	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

func isTagRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
